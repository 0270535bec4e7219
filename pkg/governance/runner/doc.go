// Package runner is the calling layer around the governance engines.
//
// The engines in the sibling packages are pure: they never read or write a
// store. A Runner fetches their inputs from the Catalog and SnapshotStore,
// calls them and persists what they return. It also owns the side effects
// the engines only describe:
//
//   - quality scores are appended to the snapshot log and the metric's
//     trust badge is recomputed
//   - reconciliations read raw rows from two catalog collections
//   - triggered rules become ExceptionSignals handed to a signals.Recorder
//   - applied overrides write the adjusted value back to the metric
//
// Every operation is traced, measured and logged with the run ID lifted
// from the context.
//
// # Usage
//
//	r, err := runner.New(runner.Deps{
//		Catalog:   catalog,
//		Snapshots: snapshots,
//		Rules:     registry,
//		Recorder:  recorder,
//		Metrics:   collector,
//		Tracer:    tracer,
//	}, runner.ConfigFrom(cfg))
//
//	report, err := r.RunOnce(ctx)
//
// A Scheduler calls RunOnce on a cron expression.
package runner
