package services

import (
	"context"
	"fmt"
	"io"
	iofs "io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// LocalSource serves gallery folders from a directory on disk,
// one subdirectory per folder key.
type LocalSource struct {
	root string
}

// NewLocalSource creates a source rooted at dir
func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{root: dir}
}

// Root returns the directory the source reads from
func (s *LocalSource) Root() string {
	return s.root
}

// Names returns the regular file names inside folder
func (s *LocalSource) Names(_ context.Context, folder string) ([]string, error) {
	dir, err := ResolveInRoot(s.root, folder)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", folder, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Folders returns the first-level subdirectories of the root
func (s *LocalSource) Folders(_ context.Context) ([]string, error) {
	root := filepath.Clean(s.root)
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("stat media root: %w", err)
	}

	var (
		mu      sync.Mutex
		folders []string
	)

	conf := &fastwalk.Config{Follow: true}
	err := fastwalk.Walk(conf, root, func(fullPath string, d iofs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(root, fullPath)
		if relErr == nil && rel == "." {
			return nil
		}
		if relErr != nil || strings.ContainsRune(rel, filepath.Separator) {
			return fastwalk.SkipDir
		}

		mu.Lock()
		folders = append(folders, rel)
		mu.Unlock()

		// only direct children are gallery folders
		return fastwalk.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("walk media root: %w", err)
	}

	return folders, nil
}

// Open opens one file. The returned reader is an *os.File and therefore
// also an io.ReadSeeker.
func (s *LocalSource) Open(_ context.Context, folder, name string) (io.ReadCloser, ObjectInfo, error) {
	path, err := ResolveInRoot(s.root, folder, name)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("open %s/%s: %w", folder, name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("stat %s/%s: %w", folder, name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("open %s/%s: %w", folder, name, os.ErrNotExist)
	}

	return f, ObjectInfo{
		Name:        name,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(name))),
	}, nil
}
