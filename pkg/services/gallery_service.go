package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"dpformance-site/pkg/models"
)

// Allowed extensions, compared lower-cased
var (
	imageExtensions = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true, ".svg": true,
	}
	documentExtensions = map[string]bool{
		".pdf": true,
	}
)

// GalleryService lists gallery folders from a Source and turns file names
// into public paths.
type GalleryService struct {
	source Source
	prefix string
	logger zerolog.Logger
}

// NewGalleryService creates a service publishing files of source under publicPrefix
func NewGalleryService(source Source, publicPrefix string, logger zerolog.Logger) *GalleryService {
	return &GalleryService{
		source: source,
		prefix: strings.TrimSuffix("/"+strings.Trim(publicPrefix, "/"), "/"),
		logger: logger.With().Str("component", "gallery").Logger(),
	}
}

// Classify reports whether name is an image or a document. The second
// result is false for every other file.
func Classify(name string) (models.MediaKind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case imageExtensions[ext]:
		return models.Image, true
	case documentExtensions[ext]:
		return models.Document, true
	default:
		return 0, false
	}
}

// newCollator returns a collator that compares digit runs by value and
// ignores case, width and diacritics. Collators are not safe for concurrent
// use, so each sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.Numeric, collate.Loose)
}

// naturalLess orders s1 before s2 under c. Names the collator considers equal
// ("a.png" and "A.png") fall back to byte order so sorting is deterministic.
func naturalLess(c *collate.Collator, s1, s2 string) bool {
	if r := c.CompareString(s1, s2); r != 0 {
		return r < 0
	}
	return s1 < s2
}

// NaturalLess reports whether s1 sorts before s2 in gallery order:
// "file2" before "file10", case and accents ignored.
func NaturalLess(s1, s2 string) bool {
	return naturalLess(newCollator(), s1, s2)
}

func sortNatural(names []string) {
	c := newCollator()
	sort.Slice(names, func(i, j int) bool {
		return naturalLess(c, names[i], names[j])
	})
}

// List returns the images and PDFs of a folder as public paths. Every failure
// (bad key, missing folder, read error) produces an empty listing.
func (s *GalleryService) List(ctx context.Context, folder string) models.Listing {
	listing := models.EmptyListing()

	if err := ValidateName(folder); err != nil {
		s.logger.Warn().Err(err).Str("folder", folder).Msg("rejected folder key")
		return listing
	}

	names, err := s.source.Names(ctx, folder)
	if err != nil {
		s.logger.Debug().Err(err).Str("folder", folder).Msg("folder not readable")
		return listing
	}

	sortNatural(names)

	for _, name := range names {
		kind, ok := Classify(name)
		if !ok {
			continue
		}
		switch kind {
		case models.Image:
			listing.Images = append(listing.Images, s.PublicPath(folder, name))
		case models.Document:
			listing.PDFs = append(listing.PDFs, s.PublicPath(folder, name))
		}
	}

	return listing
}

// PublicPath returns the URL path under which a file of folder is served
func (s *GalleryService) PublicPath(folder, name string) string {
	return s.prefix + "/" + folder + "/" + name
}

// Prefix returns the public URL prefix of gallery files
func (s *GalleryService) Prefix() string {
	return s.prefix
}

// FolderKeys returns the valid folder keys under the media root, naturally
// sorted
func (s *GalleryService) FolderKeys(ctx context.Context) ([]string, error) {
	keys, err := s.source.Folders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	valid := keys[:0]
	for _, key := range keys {
		if ValidateName(key) == nil {
			valid = append(valid, key)
		}
	}
	sortNatural(valid)
	return valid, nil
}

// Folders summarizes every folder under the media root, naturally sorted
func (s *GalleryService) Folders(ctx context.Context) ([]models.FolderSummary, error) {
	keys, err := s.FolderKeys(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.FolderSummary, 0, len(keys))
	for _, key := range keys {
		listing := s.List(ctx, key)
		summaries = append(summaries, models.FolderSummary{
			Key:    key,
			Images: len(listing.Images),
			PDFs:   len(listing.PDFs),
		})
	}

	return summaries, nil
}

// Open returns the contents of a gallery file. Only images and PDFs are
// served; anything else is reported as outside the gallery.
func (s *GalleryService) Open(ctx context.Context, folder, name string) (io.ReadCloser, ObjectInfo, error) {
	if err := ValidateName(folder); err != nil {
		return nil, ObjectInfo{}, err
	}
	if err := ValidateName(name); err != nil {
		return nil, ObjectInfo{}, err
	}
	if _, ok := Classify(name); !ok {
		return nil, ObjectInfo{}, fmt.Errorf("%w: %s is not a gallery file", ErrOutsideRoot, name)
	}

	return s.source.Open(ctx, folder, name)
}

// OpenShared returns a gallery file stored directly under the media root,
// like the product screenshots and report. The same image/PDF rule applies.
func (s *GalleryService) OpenShared(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	if err := ValidateName(name); err != nil {
		return nil, ObjectInfo{}, err
	}
	if _, ok := Classify(name); !ok {
		return nil, ObjectInfo{}, fmt.Errorf("%w: %s is not a gallery file", ErrOutsideRoot, name)
	}

	return s.source.Open(ctx, "", name)
}
