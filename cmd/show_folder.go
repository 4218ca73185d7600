package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"dpformance-site/pkg/services"
)

// newShowFolderCmd creates a new command for showing one folder's listing
func newShowFolderCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "show-folder [key]",
		Short: "Show the media of a gallery folder",
		Long:  `Show the images and PDFs of a gallery folder in the order the gallery API returns them.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := showFolder(cmd.Context(), cmd.OutOrStdout(), a.gallery, args[0]); err != nil {
				return err
			}
			if check {
				return checkFolder(cmd.Context(), cmd.OutOrStdout(), a.gallery, args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Decode every image and report sizes and blank images")
	return cmd
}

// showFolder displays the listing of one folder
func showFolder(ctx context.Context, w io.Writer, gallery *services.GalleryService, key string) error {
	if err := services.ValidateName(key); err != nil {
		return fmt.Errorf("invalid folder key: %w", err)
	}

	listing := gallery.List(ctx, key)

	fmt.Fprintf(w, "Folder: %s\n", key)
	fmt.Fprintf(w, "Images: %d\n", len(listing.Images))
	fmt.Fprintln(w, "================")
	for i, path := range listing.Images {
		fmt.Fprintf(w, "%d. %s\n", i+1, path)
	}

	if len(listing.PDFs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "PDFs: %d\n", len(listing.PDFs))
		for _, path := range listing.PDFs {
			fmt.Fprintf(w, "  - %s\n", path)
		}
	}
	return nil
}

// checkFolder decodes the images of a folder and prints what it found
func checkFolder(ctx context.Context, w io.Writer, gallery *services.GalleryService, key string) error {
	reports, err := gallery.Check(ctx, key)
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Image check:")
	problems := 0
	for _, r := range reports {
		switch {
		case errors.Is(r.Err, services.ErrUndecodable):
			fmt.Fprintf(w, "  %s: skipped (%v)\n", r.Name, r.Err)
		case r.Err != nil:
			fmt.Fprintf(w, "  %s: ERROR %v\n", r.Name, r.Err)
			problems++
		default:
			fmt.Fprintf(w, "  %s: %s %dx%d\n", r.Name, r.Format, r.Width, r.Height)
		}
	}
	fmt.Fprintf(w, "%d images checked, %d problems\n", len(reports), problems)
	return nil
}
