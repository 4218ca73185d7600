package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"dpformance-site/pkg/catalog"
	"dpformance-site/pkg/config"
	"dpformance-site/pkg/logging"
	"dpformance-site/pkg/services"
)

// app holds the services shared by the commands
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	gallery *services.GalleryService
	catalog *catalog.Catalog
	close   func() error
}

// newApp loads configuration and connects the media source
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := logging.New(cfg.Environment, cfg.LogLevel)

	source, closeSource, err := newSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Default()
	if err != nil {
		_ = closeSource()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		gallery: services.NewGalleryService(source, cfg.PublicPrefix, logger),
		catalog: cat,
		close:   closeSource,
	}, nil
}

// newSource picks the bucket when BUCKET_NAME is set and the local media
// root otherwise
func newSource(ctx context.Context, cfg *config.Config) (services.Source, func() error, error) {
	if cfg.UsesBucket() {
		bucket, err := services.NewBucketSource(ctx, cfg.BucketName, cfg.BucketPrefix)
		if err != nil {
			return nil, nil, err
		}
		return bucket, bucket.Close, nil
	}
	return services.NewLocalSource(cfg.MediaRoot), func() error { return nil }, nil
}

// loadApp is the entry point used by every command. Callers must defer
// a.close() so the bucket client is released on every return path.
func loadApp(ctx context.Context) (*app, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return a, nil
}
