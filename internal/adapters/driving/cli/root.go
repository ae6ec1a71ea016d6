// Package cli implements the digest command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/adapters/driven/config/file"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/logger"
)

// version is stamped at build time via Execute.
var version = "dev"

var verbose bool

// configStore is shared across commands; opened lazily by loadConfig.
var configStore driven.ConfigStore

var rootCmd = &cobra.Command{
	Use:   "digest",
	Short: "Summarise a day's newsletters into a briefing",
	Long: `Digest fetches one day's newsletters from a Gmail label, summarises
them with an LLM into a categorised briefing, publishes the result to a
Notion database, and archives each run locally.

Configuration lives in ~/.digest/config.toml. API keys are read from the
ANTHROPIC_API_KEY and NOTION_API_KEY environment variables.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Print pipeline progress to stderr")
}

// Execute runs the root command. v is the build version stamped by main;
// empty keeps the default.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// loadConfig opens the configuration store in the default directory,
// creating the file on first use.
func loadConfig() (driven.ConfigStore, error) {
	if configStore != nil {
		return configStore, nil
	}

	dir, err := file.DefaultConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config directory: %w", err)
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	configStore = store
	return store, nil
}
