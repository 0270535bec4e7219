package main

import (
	"github.com/spf13/cobra"

	"wealthos/governance/pkg/cli"
	"wealthos/governance/pkg/governance"
)

var whyFlags struct {
	locale string
}

var whyCmd = &cobra.Command{
	Use:   "why <kpi-id>",
	Short: `Explain "why this number"`,
	Long: `Explain where a metric value comes from: formula, lineage inputs and
steps, assumptions, the latest quality score, trust badge, confidence and
applied overrides.

Examples:
  govctl why net_worth
  govctl why net_worth --locale ru -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runWhy,
}

func init() {
	rootCmd.AddCommand(whyCmd)
	whyCmd.Flags().StringVar(&whyFlags.locale, "locale", "", "explanation locale: en, ru, uk (default from config)")
}

func runWhy(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()

	var locale governance.Locale
	if whyFlags.locale != "" {
		locale = governance.ParseLocale(whyFlags.locale)
	}
	why, err := eng.runner.Why(commandContext(cmd), args[0], locale)
	if err != nil {
		return cli.NewCommandError("why", err)
	}
	return printResult(cmd, whyView{why})
}
