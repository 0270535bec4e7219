package main

import (
	"time"

	"github.com/spf13/cobra"

	"wealthos/governance/pkg/cli"
	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/recon"
	"wealthos/governance/pkg/governance/runner"
)

var reconFlags struct {
	reconType  string
	left       string
	right      string
	currency   string
	assetClass string
	account    string
	entity     string
	portfolio  string
	tolerance  float64
	asOf       string
	locale     string
}

var reconCmd = &cobra.Command{
	Use:   "recon",
	Short: "Reconcile books of record",
	Long: `Reconcile two raw collections of the catalog.

Reconciliation types:
  ibor_abor            positions, market value (rows: instrument_id, currency, market_value)
  positions_custodian  positions, quantity per instrument
  cash_bank            cash entries (rows: account_id, currency, amount)
  gl_subledger         ledger balances per account (rows: account, currency, amount)`,
}

var reconComputeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute and store a reconciliation",
	Long: `Compare two collections, print the delta and status, and append the
reconciliation to the snapshot log. When the result is a break, likely
causes are printed to stderr.

Examples:
  govctl recon compute --type cash_bank --left cashLedger --right bankStatements --currency USD
  govctl recon compute --type ibor_abor --left ibor --right abor --tolerance 0.5`,
	RunE: runReconCompute,
}

func init() {
	rootCmd.AddCommand(reconCmd)
	reconCmd.AddCommand(reconComputeCmd)

	f := reconComputeCmd.Flags()
	f.StringVar(&reconFlags.reconType, "type", "", "reconciliation type (required)")
	f.StringVar(&reconFlags.left, "left", "", "left collection (required)")
	f.StringVar(&reconFlags.right, "right", "", "right collection (required)")
	f.StringVar(&reconFlags.currency, "currency", "", "only rows in this currency")
	f.StringVar(&reconFlags.assetClass, "asset-class", "", "only positions of this asset class")
	f.StringVar(&reconFlags.account, "account", "", "only cash entries of this account")
	f.StringVar(&reconFlags.entity, "entity", "", "entity id stored in the scope")
	f.StringVar(&reconFlags.portfolio, "portfolio", "", "portfolio id stored in the scope")
	f.Float64Var(&reconFlags.tolerance, "tolerance", 0, "tolerance in percent (default from config)")
	f.StringVar(&reconFlags.asOf, "as-of", "", "as-of time (RFC3339, default now)")
	f.StringVar(&reconFlags.locale, "locale", "", "locale of the break causes (en, ru, uk)")
}

func runReconCompute(cmd *cobra.Command, args []string) error {
	req := runner.ReconRequest{
		Type:            governance.ReconType(reconFlags.reconType),
		LeftCollection:  reconFlags.left,
		RightCollection: reconFlags.right,
		Filter: recon.Filter{
			Currency:   reconFlags.currency,
			AssetClass: reconFlags.assetClass,
			AccountID:  reconFlags.account,
		},
		EntityID:    reconFlags.entity,
		PortfolioID: reconFlags.portfolio,
	}
	if cmd.Flags().Changed("tolerance") {
		req.TolerancePercent = recon.Tolerance(reconFlags.tolerance)
	}
	if reconFlags.asOf != "" {
		asOf, err := time.Parse(time.RFC3339, reconFlags.asOf)
		if err != nil {
			return cli.NewConfigError("as-of", err.Error())
		}
		req.AsOf = asOf
	}

	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()

	rec, err := eng.runner.Reconcile(commandContext(cmd), req)
	if err != nil {
		return cli.NewCommandError("recon compute", err)
	}
	if err := printResult(cmd, reconTable{rec}); err != nil {
		return err
	}

	if rec.StatusKey == governance.ReconBreak && outputFormat == string(cli.FormatText) {
		locale := governance.ParseLocale(reconFlags.locale)
		if reconFlags.locale == "" {
			locale = governance.ParseLocale(eng.cfg.Locale)
		}
		cmd.PrintErrln("Possible causes:")
		for _, cause := range recon.SuggestBreakCauses(rec.ReconTypeKey, locale) {
			cmd.PrintErrln("  - " + cause)
		}
	}
	return nil
}
