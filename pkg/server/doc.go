// Package server exposes the governance engine over a small read-only HTTP
// surface for operators and dashboards.
//
// # Routes
//
//	GET /metrics                   Prometheus exposition (path configurable)
//	GET /health/live               liveness probe
//	GET /health/ready              readiness probe, 503 unless ready
//	GET /version                   build information
//	GET /api/v1/kpis/{id}/why      "why this number" explanation
//	GET /api/v1/rules              loaded rule definitions
//	GET /api/v1/rules/results      last rule evaluation (?triggered=true)
//
// Nothing here mutates governance state. Overrides, scoring and
// reconciliation stay with the runner and the govctl CLI.
//
// # Basic Usage
//
//	srv := server.NewServer(&cfg.Server, server.Deps{
//		Governance: r,
//		Rules:      registry,
//		Health:     checker,
//		Metrics:    collector,
//		Tracer:     tracer,
//	})
//	if err := srv.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// Start blocks until ctx is cancelled, then shuts down within
// ShutdownTimeout. Signal handling belongs to the caller.
//
// # Middleware
//
// Requests pass through panic recovery, chi's request ID middleware, the
// tracing middleware (X-Trace-ID response header) and a structured access
// log. Errors are returned as {"error": {"type": ..., "message": ...}}.
package server
