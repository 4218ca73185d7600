package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// BucketSource serves gallery folders from a Cloud Storage bucket. Objects are
// laid out as <prefix><folder>/<file>.
type BucketSource struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// NewBucketSource connects to the named bucket using default credentials
func NewBucketSource(ctx context.Context, bucketName, prefix string) (*BucketSource, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &BucketSource{
		client: client,
		bucket: client.Bucket(bucketName),
		prefix: normalizePrefix(prefix),
	}, nil
}

// Close releases the storage client
func (s *BucketSource) Close() error {
	return s.client.Close()
}

// Names returns the object names directly under the folder prefix
func (s *BucketSource) Names(ctx context.Context, folder string) ([]string, error) {
	folderPrefix := s.prefix + folder + "/"
	it := s.bucket.Objects(ctx, &storage.Query{
		Prefix:    folderPrefix,
		Delimiter: "/",
	})

	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating objects: %w", err)
		}

		// synthetic entries for nested prefixes only carry Prefix
		if attrs.Name == "" {
			continue
		}

		name := strings.TrimPrefix(attrs.Name, folderPrefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}

	return names, nil
}

// Folders returns the first-level prefixes below the source prefix
func (s *BucketSource) Folders(ctx context.Context) ([]string, error) {
	it := s.bucket.Objects(ctx, &storage.Query{
		Prefix:    s.prefix,
		Delimiter: "/",
	})

	var folders []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating objects: %w", err)
		}
		if attrs.Prefix == "" {
			continue
		}

		key := strings.TrimSuffix(strings.TrimPrefix(attrs.Prefix, s.prefix), "/")
		if key != "" {
			folders = append(folders, key)
		}
	}

	return folders, nil
}

// Open streams one object from the bucket
func (s *BucketSource) Open(ctx context.Context, folder, name string) (io.ReadCloser, ObjectInfo, error) {
	objectName := s.prefix + name
	if folder != "" {
		objectName = s.prefix + folder + "/" + name
	}

	reader, err := s.bucket.Object(objectName).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ObjectInfo{}, fmt.Errorf("%s: %w", objectName, os.ErrNotExist)
	}
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("Object(%q).NewReader: %w", objectName, err)
	}

	return reader, ObjectInfo{
		Name:        name,
		Size:        reader.Attrs.Size,
		ModTime:     reader.Attrs.LastModified,
		ContentType: reader.Attrs.ContentType,
	}, nil
}

// normalizePrefix makes a non-empty prefix end in exactly one slash and
// strips any leading slash.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
