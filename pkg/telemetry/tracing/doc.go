// Package tracing provides OpenTelemetry tracing for governance runs.
//
// Spans are exported over OTLP gRPC. Sampling is parent-based with an
// always, never or ratio root strategy. When tracing is disabled the
// Tracer is a noop and a nil *Tracer is also safe to use.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "governance.score")
//	tracing.SetQualityAttributes(span, "kpi", kpiID, score.ScoreTotal, n)
//	tracing.End(span, err)
package tracing
