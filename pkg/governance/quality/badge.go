package quality

import (
	"time"

	"wealthos/governance/pkg/governance"
)

// DefaultStaleDays is the age after which a metric is considered stale.
const DefaultStaleDays = 7

// DeriveTrustBadge computes the trust badge of a metric from its latest
// quality score (nil when none exists) and the age of its as-of date.
// Staleness wins over the score. staleDays <= 0 uses DefaultStaleDays.
func DeriveTrustBadge(score *governance.QualityScore, asOf, now time.Time, staleDays int) governance.TrustBadge {
	if staleDays <= 0 {
		staleDays = DefaultStaleDays
	}
	if AgeDays(asOf, now) > staleDays {
		return governance.TrustStale
	}
	if score != nil && score.ScoreTotal >= ThresholdHigh {
		return governance.TrustVerified
	}
	return governance.TrustEstimated
}
