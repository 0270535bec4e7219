package lineage

import (
	"fmt"
	"sort"
	"strings"

	"wealthos/governance/pkg/governance"
)

// Define builds a new lineage record for the metric kpiID. Transforms are
// sorted by step number. It fails with *governance.ValidationError when
// inputs is empty. The returned record has no identity; the store assigns it.
func Define(kpiID string, inputs []governance.LineageInput, transforms []governance.LineageTransform, outputs []governance.LineageOutput) (*governance.Lineage, error) {
	if len(inputs) == 0 {
		return nil, governance.NewValidationError("lineage", "at least one input is required")
	}

	sorted := make([]governance.LineageTransform, len(transforms))
	copy(sorted, transforms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StepNo < sorted[j].StepNo
	})

	in := make([]governance.LineageInput, len(inputs))
	for i, input := range inputs {
		in[i] = input
		in[i].Fields = append([]string(nil), input.Fields...)
	}

	return &governance.Lineage{
		KpiID:      kpiID,
		Inputs:     in,
		Transforms: sorted,
		Outputs:    append([]governance.LineageOutput(nil), outputs...),
	}, nil
}

// Result is the outcome of Validate.
type Result struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// Validate checks a stored lineage. Step numbers must run 1..n in stored
// order; only the first gap is reported. Blank descriptions are reported as
// a single aggregated count.
func Validate(l *governance.Lineage) Result {
	issues := []string{}

	if len(l.Inputs) == 0 {
		issues = append(issues, "lineage must have at least one input")
	}
	if len(l.Transforms) == 0 {
		issues = append(issues, "lineage must have at least one transform")
	}

	for i, t := range l.Transforms {
		if t.StepNo != i+1 {
			issues = append(issues, fmt.Sprintf("transform at position %d has step %d, expected %d", i+1, t.StepNo, i+1))
			break
		}
	}

	blank := 0
	for _, t := range l.Transforms {
		if strings.TrimSpace(t.Description) == "" {
			blank++
		}
	}
	if blank > 0 {
		issues = append(issues, fmt.Sprintf("%d transform(s) missing description", blank))
	}

	return Result{Valid: len(issues) == 0, Issues: issues}
}

// SourceCollections returns the distinct input collections in input order.
func SourceCollections(l *governance.Lineage) []string {
	seen := make(map[string]bool, len(l.Inputs))
	out := make([]string, 0, len(l.Inputs))
	for _, in := range l.Inputs {
		if !seen[in.Collection] {
			seen[in.Collection] = true
			out = append(out, in.Collection)
		}
	}
	return out
}

// SourceFields returns the distinct "collection.field" pairs read by the
// lineage, in input order.
func SourceFields(l *governance.Lineage) []string {
	seen := make(map[string]bool)
	var out []string
	for _, in := range l.Inputs {
		for _, f := range in.Fields {
			key := in.Collection + "." + f
			if !seen[key] {
				seen[key] = true
				out = append(out, key)
			}
		}
	}
	return out
}

// HighRiskTransforms returns the transforms marked high risk.
func HighRiskTransforms(l *governance.Lineage) []governance.LineageTransform {
	var out []governance.LineageTransform
	for _, t := range l.Transforms {
		if t.RiskLevel == governance.RiskHigh {
			out = append(out, t)
		}
	}
	return out
}

// TransformStepCount returns the number of transform steps.
func TransformStepCount(l *governance.Lineage) int {
	return len(l.Transforms)
}
