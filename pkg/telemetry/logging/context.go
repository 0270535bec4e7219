package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	// RunIDKey is the context key for governance run IDs.
	RunIDKey contextKey = "run_id"

	// TenantIDKey is the context key for tenant identifiers.
	TenantIDKey contextKey = "tenant_id"

	// KpiIDKey is the context key for metric identifiers.
	KpiIDKey contextKey = "kpi_id"

	// RuleIDKey is the context key for rule identifiers.
	RuleIDKey contextKey = "rule_id"

	// ActorIDKey is the context key for the acting user.
	ActorIDKey contextKey = "actor_id"
)

var contextKeys = []contextKey{TenantIDKey, RunIDKey, KpiIDKey, RuleIDKey, ActorIDKey}

// WithRunID adds a governance run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	return stringValue(ctx, RunIDKey)
}

// WithTenantID adds a tenant identifier to the context.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// GetTenantID retrieves the tenant identifier from the context.
func GetTenantID(ctx context.Context) string {
	return stringValue(ctx, TenantIDKey)
}

// WithKpiID adds a metric identifier to the context.
func WithKpiID(ctx context.Context, kpiID string) context.Context {
	return context.WithValue(ctx, KpiIDKey, kpiID)
}

// GetKpiID retrieves the metric identifier from the context.
func GetKpiID(ctx context.Context) string {
	return stringValue(ctx, KpiIDKey)
}

// WithRuleID adds a rule identifier to the context.
func WithRuleID(ctx context.Context, ruleID string) context.Context {
	return context.WithValue(ctx, RuleIDKey, ruleID)
}

// WithActorID adds the acting user to the context.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorIDKey, actorID)
}

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// contextAttrs extracts the governance fields and the active span's
// trace and span IDs.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v := stringValue(ctx, key); v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return attrs
}
