package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrRunID        = "governance.run_id"
	AttrKpiID        = "governance.kpi.id"
	AttrDomain       = "governance.domain"
	AttrQualityScope = "governance.quality.scope"
	AttrQualityID    = "governance.quality.scope_id"
	AttrQualityScore = "governance.quality.score_total"
	AttrReconType    = "governance.recon.type"
	AttrReconStatus  = "governance.recon.status"
	AttrReconDelta   = "governance.recon.delta_percent"
	AttrRuleCount    = "governance.rules.count"
	AttrRuleTriggers = "governance.rules.triggered"
	AttrOverrideID   = "governance.override.id"
	AttrOverrideTo   = "governance.override.status"
	AttrRecordCount  = "governance.records"
)

// SetKpiAttributes tags a span with a metric.
func SetKpiAttributes(span trace.Span, kpiID, domain string) {
	span.SetAttributes(
		attribute.String(AttrKpiID, kpiID),
		attribute.String(AttrDomain, domain),
	)
}

// SetQualityAttributes tags a span with a quality score.
func SetQualityAttributes(span trace.Span, scope, scopeID string, total, records int) {
	span.SetAttributes(
		attribute.String(AttrQualityScope, scope),
		attribute.String(AttrQualityID, scopeID),
		attribute.Int(AttrQualityScore, total),
		attribute.Int(AttrRecordCount, records),
	)
}

// SetReconAttributes tags a span with a reconciliation outcome.
func SetReconAttributes(span trace.Span, reconType, status string, deltaPercent float64) {
	span.SetAttributes(
		attribute.String(AttrReconType, reconType),
		attribute.String(AttrReconStatus, status),
		attribute.Float64(AttrReconDelta, deltaPercent),
	)
}

// SetRuleAttributes tags a span with a rule evaluation pass.
func SetRuleAttributes(span trace.Span, rules, triggered int) {
	span.SetAttributes(
		attribute.Int(AttrRuleCount, rules),
		attribute.Int(AttrRuleTriggers, triggered),
	)
}

// SetOverrideAttributes tags a span with an override transition.
func SetOverrideAttributes(span trace.Span, overrideID, status string) {
	span.SetAttributes(
		attribute.String(AttrOverrideID, overrideID),
		attribute.String(AttrOverrideTo, status),
	)
}
