package quality

import (
	"fmt"
	"math"
	"time"

	"wealthos/governance/pkg/governance"
)

// Score thresholds used across the system.
const (
	ThresholdHigh   = 80
	ThresholdMedium = 60
	ThresholdLow    = 40
)

// Dimension weights. They sum to 1.
const (
	WeightCompleteness = 0.30
	WeightFreshness    = 0.25
	WeightConsistency  = 0.25
	WeightCoverage     = 0.20
)

// Input is a batch of records to score.
type Input struct {
	Records        []Record
	RequiredFields []string
	AsOf           time.Time
	// SourceCount is the number of independent sources behind the batch.
	// Values below 1 are treated as 1.
	SourceCount   int
	ConflictCount int
	// Now anchors freshness. Zero means time.Now().
	Now time.Time
	// Batches, when set, replace Records and RequiredFields: completeness
	// is pooled over every batch, each checked against its own fields.
	Batches []Batch
}

// Batch is a group of records sharing required fields, typically one
// source collection of a metric's lineage.
type Batch struct {
	Name           string
	Records        []Record
	RequiredFields []string
}

// Result holds the four sub-scores, the weighted total and details.
type Result struct {
	Completeness int                       `json:"completeness"`
	Freshness    int                       `json:"freshness"`
	Consistency  int                       `json:"consistency"`
	Coverage     int                       `json:"coverage"`
	Total        int                       `json:"total"`
	Level        governance.QualityLevel   `json:"level"`
	Details      governance.QualityDetails `json:"details"`
}

// Compute scores a batch of records. It never fails: an empty batch scores
// 100 on completeness and 95 on consistency.
func Compute(in Input) Result {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	sources := in.SourceCount
	if sources < 1 {
		sources = 1
	}

	var completeness, recordCount int
	var missing []string
	if len(in.Batches) > 0 {
		completeness, missing = CompletenessAcross(in.Batches)
		for _, b := range in.Batches {
			recordCount += len(b.Records)
		}
	} else {
		completeness, missing = Completeness(in.Records, in.RequiredFields)
		recordCount = len(in.Records)
	}
	freshness := Freshness(in.AsOf, now)
	consistency := Consistency(in.ConflictCount, recordCount)
	coverage := Coverage(sources)
	total := Total(completeness, freshness, consistency, coverage)

	details := governance.QualityDetails{
		MissingFields:     missing,
		StaleRecordsCount: int(math.Round(float64(recordCount) * float64(100-freshness) / 100)),
	}
	if in.ConflictCount > 0 {
		details.ConflictingSources = []string{
			fmt.Sprintf("%d conflicting value(s) across %d source(s)", in.ConflictCount, sources),
		}
	}
	if sources < 2 {
		details.CoverageGaps = []string{"single source, no cross-validation available"}
	}

	return Result{
		Completeness: completeness,
		Freshness:    freshness,
		Consistency:  consistency,
		Coverage:     coverage,
		Total:        total,
		Level:        LevelFor(total),
		Details:      details,
	}
}

// Completeness returns round(100 x (1 - missing/(records x fields))) and the
// distinct required fields with at least one missing value, in required
// order. No records or no required fields scores 100.
func Completeness(records []Record, required []string) (int, []string) {
	if len(records) == 0 || len(required) == 0 {
		return 100, nil
	}

	missingCount := 0
	missed := make(map[string]bool)
	for _, rec := range records {
		for _, field := range required {
			v, ok := rec.Field(field)
			if isMissing(v, ok) {
				missingCount++
				missed[field] = true
			}
		}
	}

	var fields []string
	for _, field := range required {
		if missed[field] {
			fields = append(fields, field)
			delete(missed, field)
		}
	}

	total := float64(len(records) * len(required))
	return clamp(int(math.Round(100 * (1 - float64(missingCount)/total)))), fields
}

// CompletenessAcross pools missing cells over batches, each batch checked
// against its own required fields. Missing fields are reported as
// "batch.field" in batch then field order. Empty input scores 100.
func CompletenessAcross(batches []Batch) (int, []string) {
	missingCount, cells := 0, 0
	var fields []string
	for _, b := range batches {
		if len(b.Records) == 0 || len(b.RequiredFields) == 0 {
			continue
		}
		missed := make(map[string]bool)
		for _, rec := range b.Records {
			for _, field := range b.RequiredFields {
				v, ok := rec.Field(field)
				if isMissing(v, ok) {
					missingCount++
					missed[field] = true
				}
			}
		}
		cells += len(b.Records) * len(b.RequiredFields)
		for _, field := range b.RequiredFields {
			if missed[field] {
				fields = append(fields, b.Name+"."+field)
				delete(missed, field)
			}
		}
	}
	if cells == 0 {
		return 100, nil
	}
	return clamp(int(math.Round(100 * (1 - float64(missingCount)/float64(cells))))), fields
}

// Freshness maps the age of asOf in whole days onto fixed bands.
func Freshness(asOf, now time.Time) int {
	age := AgeDays(asOf, now)
	switch {
	case age <= 0:
		return 100
	case age <= 1:
		return 95
	case age <= 3:
		return 85
	case age <= 7:
		return 70
	case age <= 14:
		return 50
	case age <= 30:
		return 30
	default:
		return 10
	}
}

// Consistency maps the conflict ratio onto fixed bands.
func Consistency(conflicts, records int) int {
	ratio := 0.0
	if records > 0 && conflicts > 0 {
		ratio = float64(conflicts) / float64(records)
	}
	switch {
	case ratio >= 0.20:
		return 20
	case ratio >= 0.10:
		return 50
	case ratio >= 0.05:
		return 70
	case ratio >= 0.01:
		return 85
	default:
		return 95
	}
}

// Coverage maps the number of independent sources onto fixed bands.
func Coverage(sources int) int {
	switch {
	case sources >= 4:
		return 100
	case sources >= 3:
		return 85
	case sources >= 2:
		return 70
	default:
		return 50
	}
}

// Total is the weighted combination of the four sub-scores.
func Total(completeness, freshness, consistency, coverage int) int {
	v := float64(completeness)*WeightCompleteness +
		float64(freshness)*WeightFreshness +
		float64(consistency)*WeightConsistency +
		float64(coverage)*WeightCoverage
	return clamp(int(math.Round(v)))
}

// LevelFor classifies a total score.
func LevelFor(total int) governance.QualityLevel {
	switch {
	case total >= ThresholdHigh:
		return governance.QualityHigh
	case total >= ThresholdMedium:
		return governance.QualityMedium
	default:
		return governance.QualityLow
	}
}

// ShouldEmitException reports whether a score falls below threshold.
func ShouldEmitException(score int, threshold float64) bool {
	return float64(score) < threshold
}

// AgeDays returns the whole days elapsed from asOf to now, rounded down.
// Future dates yield a negative age.
func AgeDays(asOf, now time.Time) int {
	return int(math.Floor(now.Sub(asOf).Hours() / 24))
}

// BuildScore wraps a computation as a quality snapshot ready to be appended
// to the snapshot log.
func BuildScore(scope governance.QualityScope, scopeID string, domain governance.Domain, in Input) governance.QualityScore {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
		in.Now = now
	}
	r := Compute(in)
	details := r.Details
	return governance.QualityScore{
		ScopeKey:          scope,
		ScopeID:           scopeID,
		DomainKey:         domain,
		CompletenessScore: r.Completeness,
		FreshnessScore:    r.Freshness,
		ConsistencyScore:  r.Consistency,
		CoverageScore:     r.Coverage,
		ScoreTotal:        r.Total,
		AsOf:              in.AsOf,
		ComputedAt:        now,
		Details:           &details,
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
