package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"dpformance-site/pkg/config"
)

// Configuration flags
var (
	portNumber string
	bucketName string
	mediaRoot  string
	logLevel   string
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dpformance-site",
		Short: "DPformance site serves the consultancy website and its gallery API",
		Long: `DPformance site is a command line application that serves the consultancy website,
the gallery listing API and the contact relay. Gallery media is read from a local directory
or from Google Cloud Storage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringVarP(&portNumber, "port", "p", "", "Set the PORT (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&bucketName, "bucket", "b", "", "Set the BUCKET_NAME (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&mediaRoot, "media-root", "m", "", "Set the MEDIA_ROOT (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set the LOG_LEVEL (overrides environment variable)")

	// Add commands to root
	rootCmd.AddCommand(newListFoldersCmd())
	rootCmd.AddCommand(newShowFolderCmd())
	rootCmd.AddCommand(newListWorksCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newSendContactCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags
func LoadConfig() (*config.Config, error) {
	// Set environment variables from flags if provided
	if portNumber != "" {
		os.Setenv("PORT", portNumber)
	}

	if bucketName != "" {
		os.Setenv("BUCKET_NAME", bucketName)
	}

	if mediaRoot != "" {
		os.Setenv("MEDIA_ROOT", mediaRoot)
	}

	if logLevel != "" {
		os.Setenv("LOG_LEVEL", logLevel)
	}

	// Load configuration from environment variables (potentially set above)
	return config.Load()
}
