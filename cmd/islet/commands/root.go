// Package commands implements the islet command line tool.
package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool

	logger = zap.NewNop()
)

// Execute runs the root command.
func Execute(ctx context.Context, version string) error {
	rootCmd := newRootCommand(version)
	defer func() { _ = logger.Sync() }()
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "islet",
		Short: "islet - server-side island renderer",
		Long: `islet renders the component islands declared in HTML pages on the
server. Mount points are div elements carrying data-islet attributes (or
entries in a data-islet-settings script); components come from a directory
of Go html/template files, WebAssembly modules, or both.

The serve command runs an HTTP server that renders pages per request; the
render command processes a page or a directory of pages in batch.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newListCommand())

	return rootCmd
}

func setupLogging() error {
	var (
		log *zap.Logger
		err error
	)
	if verbose {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	logger = log
	return nil
}
