// Package cmd provides codevector's CLI commands.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/codevector/internal/logging"
	"github.com/Aman-CERP/codevector/pkg/version"
)

var (
	configPath     string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd builds codevector's root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "codevector",
		Short:              "Semantic code search and indexing server",
		Long:               `codevector decomposes source repositories into code segments, embeds them, and serves semantic retrieval over a pluggable vector store.`,
		Version:            version.Version,
		PersistentPreRunE:  setupLogging,
		PersistentPostRunE: teardownLogging,
	}

	cmd.SetVersionTemplate("codevector version {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config.yaml (defaults + CODEVECTOR_* env vars apply regardless)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "force debug-level logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newLogsCmd())

	return cmd
}

func setupLogging(cobraCmd *cobra.Command, _ []string) error {
	logger, cleanup, err := logging.Setup(logging.FromLogConfig("info", "", debugMode))
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func teardownLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
