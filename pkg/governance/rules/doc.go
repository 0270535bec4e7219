// Package rules evaluates configurable governance rules against metrics,
// quality scores and reconciliations.
//
// Four rule types exist:
//
//	quality_threshold  a scoped quality score total is below config.threshold
//	stale_threshold    a scoped metric as-of date is older than config.days
//	recon_threshold    a break whose delta percent exceeds config.deltaPercent
//	emit_exception     any scoped quality issue or any reconciliation break
//
// A triggered rule signals the exception queue only when
// config.autoEmitException is set. Disabled rules never trigger. Zero config
// values fall back to the package defaults.
//
// # Scope Precedence
//
// applies_to is resolved as all_kpis, then domains, then no filter at all.
// collections and kpi_ids are never consulted; when they are populated the
// result carries a warning instead of a guessed union semantic.
//
// Evaluation is deterministic for a given rule and Context. Results are
// stamped with Context.CurrentDate; leave it zero and they carry no time,
// with staleness measured against the wall clock.
//
// # Basic Usage
//
//	results := rules.EvaluateAll(ruleSet, rules.Context{
//	    Metrics:         kpis,
//	    QualityScores:   latestScores,
//	    Reconciliations: latestRecons,
//	    CurrentDate:     time.Now(),
//	})
//	for _, r := range rules.RequiringExceptions(results) {
//	    // hand r to the exception queue
//	}
package rules
