// Package quality computes a 0-100 trust score for a batch of source records
// along four independent dimensions:
//
//	completeness  share of required fields that are present and non-empty
//	freshness     banded age of the batch as-of date
//	consistency   banded ratio of conflicting values to records
//	coverage      banded number of independent sources
//
// The total is round(0.30 completeness + 0.25 freshness + 0.25 consistency +
// 0.20 coverage). Records are read through the Record interface so any
// payload shape can be scored without reflection.
//
// # Basic Usage
//
//	res := quality.Compute(quality.Input{
//	    Records:        quality.MapRecords(rows),
//	    RequiredFields: []string{"quantity", "price"},
//	    AsOf:           asOf,
//	    SourceCount:    2,
//	})
//	if quality.ShouldEmitException(res.Total, quality.ThresholdMedium) {
//	    // hand off to the exception queue
//	}
//
// DeriveTrustBadge turns the latest score and metric age into the badge
// shown next to a metric.
package quality
