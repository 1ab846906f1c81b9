// Package commands implements the coach CLI.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/liftlab/coach-engine/internal/config"
	"github.com/liftlab/coach-engine/internal/observability"
	"github.com/liftlab/coach-engine/pkg/engine"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "Coach engine tooling - seed the catalog and ingest knowledge",
	Long: `The coach CLI manages the coach engine's knowledge store: seeding
knowledge entries from the workout catalog, ingesting local files, and
scraping articles into the store. Content can optionally be summarized
through a local LLM before storage.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// buildEngine constructs the engine for a CLI invocation.
func buildEngine() (*engine.Engine, *observability.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		ServiceName: "coach-cli",
	})

	eng, err := engine.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return eng, logger, nil
}
