// Package recon compares two independently sourced values for the same
// quantity and classifies their agreement against a percentage tolerance.
//
// The comparison is
//
//	delta   = left - right
//	base    = max(|left|, |right|, 1)
//	percent = 100 * |delta| / base
//	status  = ok if percent <= tolerance, else break
//
// Breakdown items are scored with the same formula and reported alongside
// the top-level status; the two are never combined.
//
// The *Input helpers aggregate raw positions, cash lines or ledger balances
// into the two scalar values (with exact decimal summation) and, where the
// data is per instrument or per account, a breakdown.
//
// # Basic Usage
//
//	in := recon.PositionsCustodianInput(internal, custodian, recon.Filter{})
//	in.TolerancePercent = recon.Tolerance(0.5)
//	snapshot := recon.BuildReconciliation(in)
package recon
