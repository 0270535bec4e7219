package quality

import (
	"math"
	"strings"
	"testing"
	"time"

	"wealthos/governance/pkg/governance"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return fixedNow.AddDate(0, 0, -n)
}

// TestCompleteness_MissingValues tests that nil and empty values count as missing.
func TestCompleteness_MissingValues(t *testing.T) {
	records := []Record{
		MapRecord{"a": 1, "b": nil},
		MapRecord{"a": 2, "b": 2},
	}
	score, missing := Completeness(records, []string{"a", "b"})
	if score != 75 {
		t.Errorf("Completeness() = %d, want 75", score)
	}
	if len(missing) != 1 || missing[0] != "b" {
		t.Errorf("missing = %v, want [b]", missing)
	}
}

func TestCompleteness_AbsentAndEmptyString(t *testing.T) {
	records := []Record{
		MapRecord{"a": ""},
		MapRecord{"b": 0},
	}
	score, missing := Completeness(records, []string{"a", "b"})
	if score != 25 {
		t.Errorf("Completeness() = %d, want 25", score)
	}
	if strings.Join(missing, ",") != "a,b" {
		t.Errorf("missing = %v, want [a b]", missing)
	}
}

func TestCompleteness_EmptyInput(t *testing.T) {
	if score, _ := Completeness(nil, []string{"a"}); score != 100 {
		t.Errorf("no records: got %d, want 100", score)
	}
	if score, _ := Completeness([]Record{MapRecord{}}, nil); score != 100 {
		t.Errorf("no fields: got %d, want 100", score)
	}
}

// TestCompleteness_Monotonic tests that filling fields never lowers the score.
func TestCompleteness_Monotonic(t *testing.T) {
	fields := []string{"a", "b", "c", "d"}
	rec := MapRecord{}
	records := []Record{rec, MapRecord{"a": 1}}

	prev := -1
	for _, f := range fields {
		rec[f] = "x"
		score, _ := Completeness(records, fields)
		if score < prev {
			t.Fatalf("score decreased from %d to %d after filling %s", prev, score, f)
		}
		prev = score
	}
}

func TestFreshness_Bands(t *testing.T) {
	tests := []struct {
		age  int
		want int
	}{
		{-2, 100}, {0, 100}, {1, 95}, {2, 85}, {3, 85}, {4, 70}, {7, 70},
		{8, 50}, {10, 50}, {14, 50}, {15, 30}, {30, 30}, {31, 10}, {400, 10},
	}
	for _, tt := range tests {
		if got := Freshness(daysAgo(tt.age), fixedNow); got != tt.want {
			t.Errorf("Freshness(age=%d) = %d, want %d", tt.age, got, tt.want)
		}
	}
}

func TestFreshness_PartialDayRoundsDown(t *testing.T) {
	asOf := fixedNow.Add(-47 * time.Hour)
	if got := Freshness(asOf, fixedNow); got != 95 {
		t.Errorf("Freshness(47h) = %d, want 95", got)
	}
}

func TestConsistency_Bands(t *testing.T) {
	tests := []struct {
		conflicts, records, want int
	}{
		{20, 100, 20},
		{10, 100, 50},
		{5, 100, 70},
		{1, 100, 85},
		{0, 100, 95},
		{5, 0, 95},
		{50, 100, 20},
	}
	for _, tt := range tests {
		if got := Consistency(tt.conflicts, tt.records); got != tt.want {
			t.Errorf("Consistency(%d, %d) = %d, want %d", tt.conflicts, tt.records, got, tt.want)
		}
	}
}

func TestCoverage_Bands(t *testing.T) {
	want := map[int]int{0: 50, 1: 50, 2: 70, 3: 85, 4: 100, 9: 100}
	for sources, score := range want {
		if got := Coverage(sources); got != score {
			t.Errorf("Coverage(%d) = %d, want %d", sources, got, score)
		}
	}
}

// TestTotal_Formula tests the weighted combination and its bounds.
func TestTotal_Formula(t *testing.T) {
	values := []int{0, 10, 20, 50, 70, 85, 95, 100}
	for _, c := range values {
		for _, f := range values {
			for _, cs := range values {
				for _, cv := range values {
					got := Total(c, f, cs, cv)
					want := int(math.Round(float64(c)*0.30 + float64(f)*0.25 + float64(cs)*0.25 + float64(cv)*0.20))
					if got != want {
						t.Fatalf("Total(%d,%d,%d,%d) = %d, want %d", c, f, cs, cv, got, want)
					}
					if got < 0 || got > 100 {
						t.Fatalf("Total out of range: %d", got)
					}
				}
			}
		}
	}
}

func TestCompute(t *testing.T) {
	res := Compute(Input{
		Records: []Record{
			MapRecord{"a": 1, "b": nil},
			MapRecord{"a": 2, "b": 2},
		},
		RequiredFields: []string{"a", "b"},
		AsOf:           daysAgo(10),
		Now:            fixedNow,
	})

	if res.Completeness != 75 || res.Freshness != 50 || res.Consistency != 95 || res.Coverage != 50 {
		t.Fatalf("sub-scores = %+v", res)
	}
	if res.Total != 69 {
		t.Errorf("Total = %d, want 69", res.Total)
	}
	if res.Level != governance.QualityMedium {
		t.Errorf("Level = %s, want medium", res.Level)
	}
	if res.Details.StaleRecordsCount != 1 {
		t.Errorf("StaleRecordsCount = %d, want 1", res.Details.StaleRecordsCount)
	}
	if len(res.Details.CoverageGaps) != 1 {
		t.Errorf("CoverageGaps = %v, want single-source note", res.Details.CoverageGaps)
	}
	if len(res.Details.ConflictingSources) != 0 {
		t.Errorf("ConflictingSources = %v, want none", res.Details.ConflictingSources)
	}
}

func TestCompute_Conflicts(t *testing.T) {
	res := Compute(Input{
		Records:       []Record{MapRecord{}, MapRecord{}},
		AsOf:          fixedNow,
		SourceCount:   3,
		ConflictCount: 1,
		Now:           fixedNow,
	})
	if res.Consistency != 20 {
		t.Errorf("Consistency = %d, want 20", res.Consistency)
	}
	if len(res.Details.ConflictingSources) != 1 {
		t.Errorf("ConflictingSources = %v, want one note", res.Details.ConflictingSources)
	}
	if len(res.Details.CoverageGaps) != 0 {
		t.Errorf("CoverageGaps = %v, want none", res.Details.CoverageGaps)
	}
}

func TestLevelFor(t *testing.T) {
	tests := map[int]governance.QualityLevel{
		100: governance.QualityHigh,
		80:  governance.QualityHigh,
		79:  governance.QualityMedium,
		60:  governance.QualityMedium,
		59:  governance.QualityLow,
		0:   governance.QualityLow,
	}
	for total, want := range tests {
		if got := LevelFor(total); got != want {
			t.Errorf("LevelFor(%d) = %s, want %s", total, got, want)
		}
	}
}

func TestShouldEmitException(t *testing.T) {
	if !ShouldEmitException(55, 60) {
		t.Error("ShouldEmitException(55, 60) = false, want true")
	}
	if ShouldEmitException(60, 60) {
		t.Error("ShouldEmitException(60, 60) = true, want false")
	}
}

func TestBuildScore(t *testing.T) {
	s := BuildScore(governance.ScopeKpi, "kpi-1", governance.DomainNetWorth, Input{
		Records: []Record{MapRecord{"a": 1}},
		AsOf:    daysAgo(1),
		Now:     fixedNow,
	})
	if s.ScopeKey != governance.ScopeKpi || s.ScopeID != "kpi-1" {
		t.Errorf("scope = %s/%s", s.ScopeKey, s.ScopeID)
	}
	if s.ScoreTotal != Total(s.CompletenessScore, s.FreshnessScore, s.ConsistencyScore, s.CoverageScore) {
		t.Errorf("ScoreTotal %d does not match sub-scores", s.ScoreTotal)
	}
	if !s.ComputedAt.Equal(fixedNow) {
		t.Errorf("ComputedAt = %v, want %v", s.ComputedAt, fixedNow)
	}
	if s.ID != "" {
		t.Error("BuildScore() assigned an id")
	}
}

func TestDeriveTrustBadge(t *testing.T) {
	high := &governance.QualityScore{ScoreTotal: 90}
	low := &governance.QualityScore{ScoreTotal: 50}

	tests := []struct {
		name  string
		score *governance.QualityScore
		age   int
		want  governance.TrustBadge
	}{
		{"fresh high", high, 1, governance.TrustVerified},
		{"fresh low", low, 1, governance.TrustEstimated},
		{"no score", nil, 0, governance.TrustEstimated},
		{"boundary not stale", high, 7, governance.TrustVerified},
		{"stale beats score", high, 8, governance.TrustStale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTrustBadge(tt.score, daysAgo(tt.age), fixedNow, 0); got != tt.want {
				t.Errorf("DeriveTrustBadge() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGenerateSuggestions(t *testing.T) {
	res := Result{Completeness: 60, Freshness: 10, Consistency: 95, Coverage: 50}
	got := GenerateSuggestions(res)

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(got), got)
	}
	order := []Dimension{DimFreshness, DimCoverage, DimCompleteness}
	for i, dim := range order {
		if got[i].Dimension != dim {
			t.Errorf("got[%d].Dimension = %s, want %s", i, got[i].Dimension, dim)
		}
	}
	if got[0].Priority != PriorityHigh {
		t.Errorf("got[0].Priority = %s, want high", got[0].Priority)
	}
}

func TestGenerateSuggestions_Capped(t *testing.T) {
	got := GenerateSuggestions(Result{})
	if len(got) != MaxSuggestions {
		t.Errorf("len = %d, want %d", len(got), MaxSuggestions)
	}
}

// TestCompletenessAcross tests pooling of batches with different fields.
func TestCompletenessAcross(t *testing.T) {
	batches := []Batch{
		{
			Name:           "positions",
			Records:        []Record{MapRecord{"qty": 1, "price": nil}, MapRecord{"qty": 2, "price": 3.0}},
			RequiredFields: []string{"qty", "price"},
		},
		{
			Name:           "fx",
			Records:        []Record{MapRecord{"rate": 1.1}, MapRecord{"rate": ""}},
			RequiredFields: []string{"rate"},
		},
		{Name: "empty"},
	}

	score, missing := CompletenessAcross(batches)
	// 2 missing of 6 cells.
	if score != 67 {
		t.Errorf("score = %d, want 67", score)
	}
	if strings.Join(missing, ",") != "positions.price,fx.rate" {
		t.Errorf("missing = %v", missing)
	}

	if score, missing := CompletenessAcross(nil); score != 100 || missing != nil {
		t.Errorf("empty = %d %v", score, missing)
	}
}

// TestCompute_Batches tests that batches replace records for every dimension.
func TestCompute_Batches(t *testing.T) {
	r := Compute(Input{
		Batches: []Batch{
			{Name: "a", Records: []Record{MapRecord{"x": 1}}, RequiredFields: []string{"x"}},
			{Name: "b", Records: []Record{MapRecord{"y": nil}}, RequiredFields: []string{"y"}},
		},
		AsOf:        fixedNow,
		SourceCount: 2,
		Now:         fixedNow,
	})
	if r.Completeness != 50 {
		t.Errorf("completeness = %d, want 50", r.Completeness)
	}
	if len(r.Details.MissingFields) != 1 || r.Details.MissingFields[0] != "b.y" {
		t.Errorf("missing = %v", r.Details.MissingFields)
	}
}
