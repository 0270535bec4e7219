// Package telemetry groups the governance engine's observability packages:
//
//   - logging: slog with governance context fields and redaction of client
//     identifiers
//   - metrics: Prometheus metrics for scoring, reconciliation, rules,
//     signals and runs
//   - tracing: OpenTelemetry spans exported over OTLP gRPC
//   - health: liveness and readiness probes
package telemetry
