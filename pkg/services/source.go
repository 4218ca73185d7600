package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// ErrOutsideRoot is returned when a folder key or file name would resolve
// outside the media root.
var ErrOutsideRoot = errors.New("path escapes media root")

// ObjectInfo describes a media file opened from a Source
type ObjectInfo struct {
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// Source is a read-only store of gallery folders. Folder keys and file names
// passed to a Source have already been checked with ValidateName.
type Source interface {
	// Names returns the file names directly inside folder.
	Names(ctx context.Context, folder string) ([]string, error)
	// Folders returns the keys of every folder under the root.
	Folders(ctx context.Context) ([]string, error)
	// Open returns the contents of one file. An empty folder addresses files
	// stored directly under the root.
	Open(ctx context.Context, folder, name string) (io.ReadCloser, ObjectInfo, error)
}

// ValidateName checks that s is a single path segment: not empty, not "." or
// "..", and free of separators and NUL bytes.
func ValidateName(s string) error {
	switch {
	case s == "", s == ".", s == "..":
		return fmt.Errorf("%w: %q", ErrOutsideRoot, s)
	case strings.ContainsRune(s, 0):
		return fmt.Errorf("%w: name contains NUL byte", ErrOutsideRoot)
	case strings.ContainsAny(s, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrOutsideRoot, s)
	}
	return nil
}

// ResolveInRoot joins elem onto root and verifies the result is still inside
// root. Both sides are made absolute and compared with filepath.Rel, so
// sibling directories sharing a prefix ("gallery2" next to "gallery") are
// rejected too.
func ResolveInRoot(root string, elem ...string) (string, error) {
	base, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("resolve media root: %w", err)
	}

	target := filepath.Clean(filepath.Join(append([]string{base}, elem...)...))
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutsideRoot, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, filepath.Join(elem...))
	}
	return target, nil
}
