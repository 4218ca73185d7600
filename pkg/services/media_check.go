package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"dpformance-site/pkg/models"
)

const (
	// colorDifferenceThreshold is the per-component difference (16-bit scale)
	// below which two sampled pixels count as the same color
	colorDifferenceThreshold = 256
	sampleGrid               = 10
)

// ErrBlankImage is returned for images that are a single solid color
var ErrBlankImage = errors.New("image appears to be a solid color")

// ErrUndecodable is returned for formats the checker cannot decode (webp, svg)
var ErrUndecodable = errors.New("format not decodable")

// ImageReport is the result of checking one gallery image
type ImageReport struct {
	Name   string
	Path   string
	Format string
	Width  int
	Height int
	Err    error
}

// CheckImage decodes r and rejects images whose sampled pixels are all the
// same color, which usually means a broken export.
func CheckImage(r io.Reader) (ImageReport, error) {
	img, format, err := image.Decode(r)
	if errors.Is(err, image.ErrFormat) {
		return ImageReport{}, ErrUndecodable
	}
	if err != nil {
		return ImageReport{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	report := ImageReport{Format: format, Width: bounds.Dx(), Height: bounds.Dy()}

	stepX := max(bounds.Dx()/sampleGrid, 1)
	stepY := max(bounds.Dy()/sampleGrid, 1)

	r1, g1, b1, a1 := img.At(bounds.Min.X, bounds.Min.Y).RGBA()
	differentPixels, totalSamples := 0, 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			totalSamples++
			r2, g2, b2, a2 := img.At(x, y).RGBA()
			if differs(r1, r2) || differs(g1, g2) || differs(b1, b2) || differs(a1, a2) {
				differentPixels++
			}
		}
	}

	if totalSamples > 1 && float64(differentPixels)/float64(totalSamples) < 0.01 {
		return report, fmt.Errorf("%w (only %d/%d sampled pixels differ)", ErrBlankImage, differentPixels, totalSamples)
	}
	return report, nil
}

func differs(a, b uint32) bool {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	return d > colorDifferenceThreshold
}

// Check opens every image of folder and reports its size or the problem
// found. PDFs are not checked.
func (s *GalleryService) Check(ctx context.Context, folder string) ([]ImageReport, error) {
	if err := ValidateName(folder); err != nil {
		return nil, err
	}

	names, err := s.source.Names(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}
	sortNatural(names)

	var reports []ImageReport
	for _, name := range names {
		if kind, ok := Classify(name); !ok || kind != models.Image {
			continue
		}
		reports = append(reports, s.checkOne(ctx, folder, name))
	}
	return reports, nil
}

func (s *GalleryService) checkOne(ctx context.Context, folder, name string) ImageReport {
	rc, _, err := s.source.Open(ctx, folder, name)
	if err != nil {
		return ImageReport{Name: name, Path: s.PublicPath(folder, name), Err: err}
	}
	defer rc.Close()

	report, err := CheckImage(rc)
	report.Name = name
	report.Path = s.PublicPath(folder, name)
	report.Err = err
	if err != nil && !errors.Is(err, ErrUndecodable) {
		s.logger.Warn().Err(err).Str("folder", folder).Str("file", name).Msg("image check failed")
	}
	return report
}
