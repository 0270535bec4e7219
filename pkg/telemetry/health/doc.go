// Package health serves liveness and readiness probes for the governance
// engine.
//
// Readiness runs the registered component checks (catalog, snapshot log,
// loaded rules, signal sink, scheduler freshness) concurrently, each under
// its own timeout. A failed critical check reports "unhealthy"; a failed
// non-critical check reports "degraded". Both answer 503.
package health
