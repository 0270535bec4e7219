package recon

import (
	"math"
	"time"

	"wealthos/governance/pkg/governance"
)

// DefaultTolerancePercent is used when Input.TolerancePercent is nil.
const DefaultTolerancePercent = 0.01

// Input is a pair of values to reconcile, optionally with a per-category
// breakdown.
type Input struct {
	Type  governance.ReconType
	Scope governance.ReconScope
	AsOf  time.Time
	Left  governance.ReconSource
	Right governance.ReconSource
	// TolerancePercent is the largest delta percent still treated as a
	// match. Nil means DefaultTolerancePercent; an explicit 0 demands exact
	// agreement.
	TolerancePercent *float64
	Breakdown        []BreakdownInput
	// Now stamps ComputedAt. Zero means time.Now().
	Now time.Time
}

// BreakdownInput is one category of a breakdown before comparison.
type BreakdownInput struct {
	Category string
	Left     float64
	Right    float64
}

// Result is the outcome of Compute. The top-level Status and the breakdown
// statuses are reported side by side and never combined.
type Result struct {
	Delta        float64                    `json:"delta"`
	DeltaPercent float64                    `json:"delta_percent"`
	BaseValue    float64                    `json:"base_value"`
	Tolerance    float64                    `json:"tolerance"`
	Status       governance.ReconStatus     `json:"status"`
	Breakdown    []governance.BreakdownItem `json:"breakdown,omitempty"`
	BreakCount   int                        `json:"break_count"`
	MatchCount   int                        `json:"match_count"`
}

// Tolerance returns a pointer to v for use in Input.TolerancePercent.
func Tolerance(v float64) *float64 {
	return &v
}

// Comparison is the outcome of comparing two scalar values.
type Comparison struct {
	Delta        float64
	DeltaPercent float64
	BaseValue    float64
	Status       governance.ReconStatus
}

// Compare diffs left against right. The base value is floored at 1 so two
// zero sides compare as an exact match.
func Compare(left, right, tolerance float64) Comparison {
	delta := left - right
	base := math.Max(math.Max(math.Abs(left), math.Abs(right)), 1)
	pct := 100 * math.Abs(delta) / base

	status := governance.ReconBreak
	if pct <= tolerance {
		status = governance.ReconOK
	}
	return Comparison{Delta: delta, DeltaPercent: pct, BaseValue: base, Status: status}
}

// Compute reconciles in.Left against in.Right and scores every breakdown
// item independently with the same tolerance.
func Compute(in Input) Result {
	tol := DefaultTolerancePercent
	if in.TolerancePercent != nil {
		tol = *in.TolerancePercent
	}

	c := Compare(in.Left.Value, in.Right.Value, tol)
	res := Result{
		Delta:        c.Delta,
		DeltaPercent: c.DeltaPercent,
		BaseValue:    c.BaseValue,
		Tolerance:    tol,
		Status:       c.Status,
	}

	if len(in.Breakdown) > 0 {
		res.Breakdown = make([]governance.BreakdownItem, len(in.Breakdown))
		for i, item := range in.Breakdown {
			ic := Compare(item.Left, item.Right, tol)
			res.Breakdown[i] = governance.BreakdownItem{
				Category:   item.Category,
				LeftValue:  item.Left,
				RightValue: item.Right,
				Delta:      ic.Delta,
				Status:     ic.Status,
			}
			if ic.Status == governance.ReconOK {
				res.MatchCount++
			} else {
				res.BreakCount++
			}
		}
	}

	return res
}

// BuildReconciliation computes in and wraps the result as a reconciliation
// snapshot ready to be appended to the snapshot log.
func BuildReconciliation(in Input) governance.Reconciliation {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	res := Compute(in)

	currency := in.Left.Currency
	if currency == "" {
		currency = in.Right.Currency
	}

	return governance.Reconciliation{
		ReconTypeKey: in.Type,
		Scope:        in.Scope,
		AsOf:         in.AsOf,
		Left:         in.Left,
		Right:        in.Right,
		DeltaValue: governance.ReconDelta{
			Amount:   res.Delta,
			Percent:  res.DeltaPercent,
			Currency: currency,
		},
		StatusKey:  res.Status,
		Breakdown:  res.Breakdown,
		ComputedAt: now,
	}
}
