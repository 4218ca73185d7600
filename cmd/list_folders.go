package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"dpformance-site/pkg/services"
)

// newListFoldersCmd creates a new command for listing gallery folders
func newListFoldersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-folders",
		Short: "List all gallery folders",
		Long:  `List every folder under the media root with the number of images and PDFs in each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			return listFolders(cmd.Context(), cmd.OutOrStdout(), a.gallery)
		},
	}
}

// listFolders displays all folders and their media counts
func listFolders(ctx context.Context, w io.Writer, gallery *services.GalleryService) error {
	folders, err := gallery.Folders(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Gallery Folders:")
	fmt.Fprintln(w, "================")

	images, pdfs := 0, 0
	for _, folder := range folders {
		fmt.Fprintf(w, "%s\n", folder.Key)
		fmt.Fprintf(w, "  Images: %d  PDFs: %d\n", folder.Images, folder.PDFs)
		images += folder.Images
		pdfs += folder.PDFs
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %d folders, %d images, %d PDFs\n", len(folders), images, pdfs)
	return nil
}
