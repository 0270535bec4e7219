package explain

import (
	"strings"
	"time"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/lineage"
	"wealthos/governance/pkg/governance/override"
	"wealthos/governance/pkg/governance/quality"
)

// Options tunes Build. The zero value is valid.
type Options struct {
	Locale governance.Locale
	// Overrides are the overrides targeting the metric. Only applied ones
	// are reported.
	Overrides []governance.Override
}

// QualitySummary is the part of a quality score shown with a number.
type QualitySummary struct {
	ScoreID      string                  `json:"score_id"`
	Total        int                     `json:"total"`
	Level        governance.QualityLevel `json:"level"`
	LevelLabel   string                  `json:"level_label"`
	Completeness int                     `json:"completeness"`
	Freshness    int                     `json:"freshness"`
	Consistency  int                     `json:"consistency"`
	Coverage     int                     `json:"coverage"`
	ComputedAt   time.Time               `json:"computed_at"`
}

// AppliedOverride summarizes an override already reflected in the value.
type AppliedOverride struct {
	ID        string                  `json:"id"`
	Type      governance.OverrideType `json:"type"`
	Reason    string                  `json:"reason"`
	AppliedAt *time.Time              `json:"applied_at,omitempty"`
}

// WhyThisNumber is the read-only composite shown when a user asks where a
// number comes from.
type WhyThisNumber struct {
	KpiID           string                        `json:"kpi_id"`
	Name            string                        `json:"name"`
	Domain          governance.Domain             `json:"domain"`
	Value           *governance.MetricValue       `json:"value,omitempty"`
	AsOf            time.Time                     `json:"as_of"`
	FormulaText     string                        `json:"formula_text"`
	Inputs          []governance.LineageInput     `json:"inputs"`
	Transforms      []governance.LineageTransform `json:"transforms"`
	LineageSummary  string                        `json:"lineage_summary,omitempty"`
	Assumptions     []string                      `json:"assumptions"`
	Quality         *QualitySummary               `json:"quality,omitempty"`
	TrustBadge      governance.TrustBadge         `json:"trust_badge"`
	Confidence      governance.Confidence         `json:"confidence"`
	ConfidenceLabel string                        `json:"confidence_label"`
	Overrides       []AppliedOverride             `json:"overrides,omitempty"`
}

// Build assembles the explanation for kpi. lineage and score may be nil.
// Inputs and transforms are copied so the result does not alias l.
func Build(kpi governance.Kpi, l *governance.Lineage, score *governance.QualityScore, opts Options) WhyThisNumber {
	locale := opts.Locale
	if !locale.Valid() {
		locale = governance.LocaleEN
	}

	w := WhyThisNumber{
		KpiID:       kpi.ID,
		Name:        kpi.Name,
		Domain:      kpi.Domain,
		AsOf:        kpi.AsOf,
		FormulaText: kpi.FormulaText,
		Inputs:      []governance.LineageInput{},
		Transforms:  []governance.LineageTransform{},
		Assumptions: SplitAssumptions(kpi.AssumptionsText),
		TrustBadge:  kpi.TrustBadge,
	}

	if kpi.LastValue != nil {
		v := *kpi.LastValue
		w.Value = &v
	}

	if l != nil {
		for _, in := range l.Inputs {
			in.Fields = append([]string(nil), in.Fields...)
			w.Inputs = append(w.Inputs, in)
		}
		w.Transforms = append(w.Transforms, l.Transforms...)
		w.LineageSummary = lineage.Summary(l, locale)
	}

	if score != nil {
		level := quality.LevelFor(score.ScoreTotal)
		w.Quality = &QualitySummary{
			ScoreID:      score.ID,
			Total:        score.ScoreTotal,
			Level:        level,
			LevelLabel:   level.Label(locale),
			Completeness: score.CompletenessScore,
			Freshness:    score.FreshnessScore,
			Consistency:  score.ConsistencyScore,
			Coverage:     score.CoverageScore,
			ComputedAt:   score.ComputedAt,
		}
	}

	for _, o := range override.FilterApplied(opts.Overrides, kpi.ID) {
		w.Overrides = append(w.Overrides, AppliedOverride{
			ID:        o.ID,
			Type:      o.OverrideTypeKey,
			Reason:    o.Reason,
			AppliedAt: o.AppliedAt,
		})
	}

	w.Confidence = DeriveConfidence(score, kpi.TrustBadge)
	w.ConfidenceLabel = w.Confidence.Label(locale)
	return w
}

// DeriveConfidence grades an explanation: a stale badge or a score below
// the medium threshold is low, a score at or above the high threshold is
// high, anything else (including no score) is medium.
func DeriveConfidence(score *governance.QualityScore, badge governance.TrustBadge) governance.Confidence {
	if badge == governance.TrustStale {
		return governance.ConfidenceLow
	}
	if score == nil {
		return governance.ConfidenceMedium
	}
	switch {
	case score.ScoreTotal >= quality.ThresholdHigh:
		return governance.ConfidenceHigh
	case score.ScoreTotal < quality.ThresholdMedium:
		return governance.ConfidenceLow
	default:
		return governance.ConfidenceMedium
	}
}

// SplitAssumptions breaks free text into one assumption per non-blank line.
func SplitAssumptions(text string) []string {
	out := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}
