package quality

import "sort"

// MaxSuggestions caps the number of remediation hints.
const MaxSuggestions = 4

// Dimension names a sub-score.
type Dimension string

const (
	DimCompleteness Dimension = "completeness"
	DimFreshness    Dimension = "freshness"
	DimConsistency  Dimension = "consistency"
	DimCoverage     Dimension = "coverage"
)

// Priority ranks a suggestion.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Suggestion is a remediation hint for a weak sub-score.
type Suggestion struct {
	Dimension Dimension `json:"dimension"`
	Score     int       `json:"score"`
	Priority  Priority  `json:"priority"`
	Message   string    `json:"message"`
}

var suggestionText = map[Dimension]string{
	DimCompleteness: "Fill in missing required fields at the source system",
	DimFreshness:    "Refresh the data feed; the latest load is out of date",
	DimConsistency:  "Resolve conflicting values between sources",
	DimCoverage:     "Add an independent source to cross-validate values",
}

// GenerateSuggestions returns up to MaxSuggestions hints, weakest sub-score
// first. Sub-scores at or above ThresholdHigh produce no hint.
func GenerateSuggestions(r Result) []Suggestion {
	dims := []struct {
		dim   Dimension
		score int
	}{
		{DimCompleteness, r.Completeness},
		{DimFreshness, r.Freshness},
		{DimConsistency, r.Consistency},
		{DimCoverage, r.Coverage},
	}
	sort.SliceStable(dims, func(i, j int) bool {
		return dims[i].score < dims[j].score
	})

	var out []Suggestion
	for _, d := range dims {
		if d.score >= ThresholdHigh {
			continue
		}
		out = append(out, Suggestion{
			Dimension: d.dim,
			Score:     d.score,
			Priority:  priorityFor(d.score),
			Message:   suggestionText[d.dim],
		})
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

func priorityFor(score int) Priority {
	switch {
	case score < ThresholdLow:
		return PriorityHigh
	case score < ThresholdMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
