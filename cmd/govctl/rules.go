package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wealthos/governance/pkg/cli"
	"wealthos/governance/pkg/config"
	"wealthos/governance/pkg/governance/export"
	"wealthos/governance/pkg/governance/rules"
	"wealthos/governance/pkg/governance/rules/source"
	"wealthos/governance/pkg/governance/runner"
	"wealthos/governance/pkg/governance/signals"
	"wealthos/governance/pkg/telemetry/metrics"
)

var rulesFlags struct {
	path      string
	emit      bool
	triggered bool
	export    string
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and evaluate governance rules",
	Long: `Inspect and evaluate governance rules loaded from YAML files.

Subcommands:
  list      - Load rule files and list the rules they define
  evaluate  - Evaluate the rules against stored metrics and snapshots`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rule definitions",
	Long: `Load the rule files (rules.path in config, or --path) and list every rule.
A file that fails to parse is reported as an error.`,
	RunE: runRulesList,
}

var rulesEvaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate rules once",
	Long: `Evaluate every rule against the stored metrics, the latest quality
scores and the latest reconciliations.

By default nothing leaves the process. With --emit, triggered rules that
request an exception are handed to the configured signal sink.

Examples:
  # Show only violations
  govctl rules evaluate --triggered

  # Emit exception signals and save results as CSV
  govctl rules evaluate --emit --export results.csv`,
	RunE: runRulesEvaluate,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesEvaluateCmd)

	rulesCmd.PersistentFlags().StringVar(&rulesFlags.path, "path", "", "rule file or directory (default from config)")
	rulesEvaluateCmd.Flags().BoolVar(&rulesFlags.emit, "emit", false, "emit exception signals to the configured sink")
	rulesEvaluateCmd.Flags().BoolVar(&rulesFlags.triggered, "triggered", false, "print only triggered rules")
	rulesEvaluateCmd.Flags().StringVar(&rulesFlags.export, "export", "", "also write results to a .json or .csv file")
}

func rulesPath(cfg *config.Config) string {
	if rulesFlags.path != "" {
		return rulesFlags.path
	}
	return cfg.Rules.Path
}

func runRulesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loaded, err := source.Load(rulesPath(cfg))
	if err != nil {
		return cli.NewCommandError("rules list", err)
	}
	return printResult(cmd, ruleTable(loaded))
}

func runRulesEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loaded, err := source.Load(rulesPath(cfg))
	if err != nil {
		return cli.NewCommandError("rules evaluate", err)
	}
	ctx := commandContext(cmd)

	opts := engineOptions{Rules: runner.StaticRules(loaded)}
	var recorder *signals.Recorder
	if rulesFlags.emit {
		logger, err := setupLogging(cfg)
		if err != nil {
			return err
		}
		sink, err := openSink(ctx, &cfg.Signals, logger)
		if err != nil {
			return cli.NewCommandError("rules evaluate", err)
		}
		defer closeSink(sink)
		recorder = newRecorder(&cfg.Signals, sink, metrics.NewCollector(&config.MetricsConfig{}, nil))
		opts.Recorder = recorder
	}

	eng, err := openEngine(opts)
	if err != nil {
		if recorder != nil {
			recorder.Close()
		}
		return err
	}
	defer eng.Close()

	eval, err := eng.runner.EvaluateRules(ctx)
	if recorder != nil {
		// Drain pending deliveries before the sink closes.
		recorder.Close()
	}
	if err != nil {
		return cli.NewCommandError("rules evaluate", err)
	}

	if rulesFlags.export != "" {
		if err := exportResults(cmd, rulesFlags.export, eval.Results); err != nil {
			return cli.NewCommandError("rules evaluate", err)
		}
	}

	results := eval.Results
	if rulesFlags.triggered {
		results = nil
		for _, r := range eval.Results {
			if r.Triggered {
				results = append(results, r)
			}
		}
	}
	if err := printResult(cmd, resultTable(results)); err != nil {
		return err
	}
	cmd.PrintErrf("%d rules evaluated, %d triggered, %d signals emitted, %d deduplicated, %d failed\n",
		len(eval.Results), eval.Triggered, eval.Emitted, eval.Deduplicated, eval.Failed)
	return nil
}

// exportResults writes results to path in the format named by its
// extension.
func exportResults(cmd *cobra.Command, path string, results []rules.Result) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	exporter, err := export.New(format)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := exporter.RuleResults(commandContext(cmd), results, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
