package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"wealthos/governance/pkg/cli"
	"wealthos/governance/pkg/config"
	"wealthos/governance/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "govctl",
	Short: "govctl - data governance engine for WealthOS",
	Long: `govctl drives the WealthOS data governance engine.

It keeps derived financial metrics trustworthy by:
  - Recording lineage from source collections to each metric
  - Scoring data quality and deriving trust badges
  - Reconciling books of record within a tolerance
  - Evaluating governance rules and emitting exception signals
  - Running manual overrides through an approval workflow
  - Explaining "why this number" in en, ru or uk`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a status derived from the
// returned error.
func Execute() {
	registerCompletions()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json, csv")
}

// loadConfig resolves the process configuration once. A missing default
// config file falls back to built-in defaults plus environment overrides;
// an explicitly named file must exist.
func loadConfig() (*config.Config, error) {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg, nil
	}

	path := cfgFile
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
		path = ""
	}
	if err := config.Initialize(path); err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}
	return config.MustGetConfig(), nil
}

// setupLogging installs the configured logger as the slog default.
func setupLogging(cfg *config.Config) (*slog.Logger, error) {
	lc := logging.FromConfig(cfg.Telemetry.Logging, os.Stderr)
	if verbose {
		lc.Level = "debug"
	}
	logger, err := logging.New(lc)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())
	return logger.Slog(), nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
