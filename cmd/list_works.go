package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"dpformance-site/pkg/catalog"
	"dpformance-site/pkg/i18n"
)

// newListWorksCmd creates a new command for listing the portfolio
func newListWorksCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "list-works",
		Short: "List the portfolio works",
		Long:  `List every work of the portfolio by tab, with its title and media source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := i18n.Parse(lang)
			if err != nil {
				return fmt.Errorf("invalid language: %w", err)
			}

			cat, err := catalog.Default()
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			listWorks(cmd.OutOrStdout(), cat, i18n.Strings(l))
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", string(i18n.Default), "Language of the titles (en, tr)")
	return cmd
}

// listWorks displays the tabs and their works
func listWorks(w io.Writer, cat *catalog.Catalog, dict *i18n.Dictionary) {
	total := 0

	fmt.Fprintln(w, "Works:")
	fmt.Fprintln(w, "======")

	for _, tab := range cat.Tabs() {
		fmt.Fprintf(w, "Tab: %s\n", tab.Key)

		for _, work := range tab.Works {
			fmt.Fprintf(w, "  - %s\n", dict.T(work.TitleKey()))
			if work.Org != "" {
				fmt.Fprintf(w, "    Org: %s\n", work.Org)
			}
			switch work.Source.Kind {
			case catalog.FolderRef:
				fmt.Fprintf(w, "    Media: folder %s\n", work.Source.Folder)
			case catalog.Inline:
				fmt.Fprintf(w, "    Media: %d inline images\n", len(work.Source.Items))
			default:
				fmt.Fprintln(w, "    Media: none")
			}
			total++
		}

		fmt.Fprintln(w)
	}

	product := cat.Product()
	fmt.Fprintf(w, "Product gallery: %d images, report %s\n", len(product.Source.Items), product.PDF)
	fmt.Fprintf(w, "Total: %d works across %d tabs\n", total, len(cat.Tabs()))
}
