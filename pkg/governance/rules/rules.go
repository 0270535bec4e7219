package rules

import (
	"fmt"
	"time"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/quality"
)

// Defaults applied when a rule config leaves a field at its zero value.
const (
	DefaultThreshold    = quality.ThresholdLow
	DefaultStaleDays    = quality.DefaultStaleDays
	DefaultDeltaPercent = 1.0
	DefaultSeverity     = governance.SeverityMedium
)

// Context is the snapshot a rule is evaluated against.
type Context struct {
	Metrics         []governance.Kpi
	QualityScores   []governance.QualityScore
	Reconciliations []governance.Reconciliation
	// CurrentDate anchors staleness and stamps results. When zero, results
	// carry no timestamp and staleness is measured against the wall clock.
	CurrentDate time.Time
}

// Result is the verdict of one rule.
type Result struct {
	RuleID              string              `json:"rule_id"`
	RuleName            string              `json:"rule_name"`
	Type                governance.RuleType `json:"type"`
	Triggered           bool                `json:"triggered"`
	Message             string              `json:"message"`
	AffectedIDs         []string            `json:"affected_ids,omitempty"`
	ShouldEmitException bool                `json:"should_emit_exception"`
	Severity            governance.Severity `json:"severity"`
	ExceptionCategory   string              `json:"exception_category,omitempty"`
	Warnings            []string            `json:"warnings,omitempty"`
	EvaluatedAt         time.Time           `json:"evaluated_at,omitzero"`
}

// Evaluate runs a single rule. A disabled rule is never triggered. The
// rule itself is not modified.
func Evaluate(rule governance.Rule, ctx Context) Result {
	res := Result{
		RuleID:            rule.ID,
		RuleName:          rule.Name,
		Type:              rule.RuleTypeKey,
		Severity:          severity(rule.Config),
		ExceptionCategory: rule.Config.ExceptionCategory,
		EvaluatedAt:       ctx.CurrentDate,
	}

	if !rule.Enabled {
		res.Message = "rule is disabled"
		return res
	}

	switch rule.RuleTypeKey {
	case governance.RuleQualityThreshold:
		evalQuality(&res, rule, ctx)
	case governance.RuleStaleThreshold:
		evalStale(&res, rule, ctx)
	case governance.RuleReconThreshold:
		evalRecon(&res, rule, ctx)
	case governance.RuleEmitException:
		evalEmit(&res, rule, ctx)
	default:
		res.Message = fmt.Sprintf("unknown rule type %q", rule.RuleTypeKey)
		return res
	}

	res.Warnings = ignoredSelectors(rule)
	res.ShouldEmitException = res.Triggered && rule.Config.AutoEmitException
	return res
}

func evalQuality(res *Result, rule governance.Rule, ctx Context) {
	threshold := qualityThreshold(rule.Config)
	for _, s := range FilterQualityScores(rule.AppliesTo, ctx.QualityScores) {
		if float64(s.ScoreTotal) < threshold {
			res.AffectedIDs = append(res.AffectedIDs, s.ID)
		}
	}
	res.Triggered = len(res.AffectedIDs) > 0
	if res.Triggered {
		res.Message = fmt.Sprintf("%d quality score(s) below threshold %g", len(res.AffectedIDs), threshold)
	} else {
		res.Message = fmt.Sprintf("all quality scores at or above threshold %g", threshold)
	}
}

func evalStale(res *Result, rule governance.Rule, ctx Context) {
	now := ctx.CurrentDate
	if now.IsZero() {
		now = time.Now()
	}
	days := rule.Config.Days
	if days == 0 {
		days = DefaultStaleDays
	}
	for _, m := range FilterMetrics(rule.AppliesTo, ctx.Metrics) {
		if quality.AgeDays(m.AsOf, now) > days {
			res.AffectedIDs = append(res.AffectedIDs, m.ID)
		}
	}
	res.Triggered = len(res.AffectedIDs) > 0
	if res.Triggered {
		res.Message = fmt.Sprintf("%d metric(s) older than %d days", len(res.AffectedIDs), days)
	} else {
		res.Message = fmt.Sprintf("all metrics updated within %d days", days)
	}
}

// evalRecon flags breaks whose delta percent exceeds the rule's own
// threshold, independent of the tolerance that classified the break.
func evalRecon(res *Result, rule governance.Rule, ctx Context) {
	limit := rule.Config.DeltaPercent
	if limit == 0 {
		limit = DefaultDeltaPercent
	}
	for _, r := range ctx.Reconciliations {
		if r.StatusKey == governance.ReconBreak && r.DeltaValue.Percent > limit {
			res.AffectedIDs = append(res.AffectedIDs, r.ID)
		}
	}
	res.Triggered = len(res.AffectedIDs) > 0
	if res.Triggered {
		res.Message = fmt.Sprintf("%d reconciliation break(s) above %g%%", len(res.AffectedIDs), limit)
	} else {
		res.Message = fmt.Sprintf("no reconciliation breaks above %g%%", limit)
	}
}

func evalEmit(res *Result, rule governance.Rule, ctx Context) {
	threshold := qualityThreshold(rule.Config)
	qualityIssues := 0
	for _, s := range FilterQualityScores(rule.AppliesTo, ctx.QualityScores) {
		if float64(s.ScoreTotal) < threshold {
			res.AffectedIDs = append(res.AffectedIDs, s.ID)
			qualityIssues++
		}
	}
	breaks := 0
	for _, r := range ctx.Reconciliations {
		if r.StatusKey == governance.ReconBreak {
			res.AffectedIDs = append(res.AffectedIDs, r.ID)
			breaks++
		}
	}
	res.Triggered = qualityIssues > 0 || breaks > 0
	if res.Triggered {
		res.Message = fmt.Sprintf("%d quality issue(s) and %d reconciliation break(s) detected", qualityIssues, breaks)
	} else {
		res.Message = "no quality issues or reconciliation breaks detected"
	}
}

// EvaluateAll evaluates every enabled rule independently, in input order.
func EvaluateAll(rules []governance.Rule, ctx Context) []Result {
	if ctx.CurrentDate.IsZero() {
		ctx.CurrentDate = time.Now()
	}
	results := make([]Result, 0, len(rules))
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		results = append(results, Evaluate(rule, ctx))
	}
	return results
}

// RequiringExceptions returns the results that should be handed to the
// exception queue.
func RequiringExceptions(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.ShouldEmitException {
			out = append(out, r)
		}
	}
	return out
}

func qualityThreshold(cfg governance.RuleConfig) float64 {
	if cfg.Threshold == 0 {
		return DefaultThreshold
	}
	return cfg.Threshold
}

func severity(cfg governance.RuleConfig) governance.Severity {
	if cfg.Severity == "" {
		return DefaultSeverity
	}
	return cfg.Severity
}
