package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"dpformance-site/pkg/catalog"
	"dpformance-site/pkg/services"
)

// exportFolder is one folder with its full listing
type exportFolder struct {
	Key    string   `json:"key" yaml:"key"`
	Images []string `json:"images" yaml:"images"`
	PDFs   []string `json:"pdfs" yaml:"pdfs"`
}

// exportWork is one catalog work and where its media comes from
type exportWork struct {
	Key    string `json:"key" yaml:"key"`
	Tab    string `json:"tab" yaml:"tab"`
	Org    string `json:"org,omitempty" yaml:"org,omitempty"`
	Source string `json:"source" yaml:"source"`
	Folder string `json:"folder,omitempty" yaml:"folder,omitempty"`
	Items  int    `json:"items" yaml:"items"`
}

type exportDocument struct {
	Folders []exportFolder `json:"folders" yaml:"folders"`
	Works   []exportWork   `json:"works" yaml:"works"`
}

// newExportCmd creates a new command for exporting gallery data
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [format]",
		Short: "Export gallery data",
		Long:  `Export every folder listing and the portfolio in the specified format. Supported formats: json, yaml.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			format := "json"
			if len(args) > 0 {
				format = args[0]
			}
			return exportData(cmd.Context(), cmd.OutOrStdout(), a.gallery, a.catalog, format)
		},
	}
}

// exportData writes every folder listing and the catalog in the given format
func exportData(ctx context.Context, w io.Writer, gallery *services.GalleryService, cat *catalog.Catalog, format string) error {
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unsupported export format %q (supported: json, yaml)", format)
	}

	doc, err := buildExport(ctx, gallery, cat)
	if err != nil {
		return err
	}

	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("error encoding yaml: %w", err)
		}
		return enc.Close()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling data: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// buildExport lists every folder once, concurrently, keeping the natural
// folder order
func buildExport(ctx context.Context, gallery *services.GalleryService, cat *catalog.Catalog) (exportDocument, error) {
	keys, err := gallery.FolderKeys(ctx)
	if err != nil {
		return exportDocument{}, err
	}

	folders := make([]exportFolder, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, key := range keys {
		g.Go(func() error {
			listing := gallery.List(gctx, key)
			folders[i] = exportFolder{Key: key, Images: listing.Images, PDFs: listing.PDFs}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return exportDocument{}, err
	}

	works := make([]exportWork, 0, len(cat.Works()))
	for _, work := range cat.Works() {
		works = append(works, exportWork{
			Key:    work.Key,
			Tab:    work.Tab,
			Org:    work.Org,
			Source: work.Source.Kind.String(),
			Folder: work.Source.Folder,
			Items:  len(work.Source.Items),
		})
	}

	return exportDocument{Folders: folders, Works: works}, nil
}
