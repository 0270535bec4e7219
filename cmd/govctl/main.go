// govctl runs and inspects the WealthOS data governance engine.
//
// It scores metric quality from lineage inputs, reconciles books of record,
// evaluates governance rules, drives the override approval workflow and
// explains where a number comes from.
//
// Usage:
//
//	# Run the scheduler and admin server
//	govctl run --config config.yaml
//
//	# Score every metric once and exit
//	govctl run --once
//
//	# Explain a metric in Ukrainian
//	govctl why net_worth --locale uk
//
//	# Reconcile cash ledger against the bank feed
//	govctl recon compute --type cash_bank --left cashLedger --right bankStatements
//
//	# Export this month's quality snapshots as CSV
//	govctl snapshots export --kind quality --since 2026-06-01T00:00:00Z --format csv
package main

func main() {
	Execute()
}
