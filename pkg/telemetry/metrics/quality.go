package metrics

import (
	"time"

	"wealthos/governance/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// QualityMetrics tracks quality scoring.
//
// Metrics:
//   - <ns>_<sub>_quality_score: latest score_total by scope and scope_id
//   - <ns>_<sub>_quality_scoring_duration_seconds: time to compute a score
//   - <ns>_<sub>_trust_badges_total: trust badge assignments by badge
type QualityMetrics struct {
	score           *prometheus.GaugeVec
	scoringDuration *prometheus.HistogramVec
	badgesTotal     *prometheus.CounterVec
}

// NewQualityMetrics creates and registers quality metrics.
func NewQualityMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *QualityMetrics {
	qm := &QualityMetrics{
		score: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "quality_score",
				Help:      "Latest quality score_total (0-100)",
			},
			[]string{"scope", "scope_id"},
		),

		scoringDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "quality_scoring_duration_seconds",
				Help:      "Duration of quality score computation in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"scope"},
		),

		badgesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "trust_badges_total",
				Help:      "Total number of trust badge assignments",
			},
			[]string{"badge"},
		),
	}

	registry.MustRegister(qm.score, qm.scoringDuration, qm.badgesTotal)
	return qm
}

// RecordScore sets the latest score and observes the scoring duration.
func (qm *QualityMetrics) RecordScore(scope, scopeID string, total int, duration time.Duration) {
	qm.score.WithLabelValues(scope, scopeID).Set(float64(total))
	qm.scoringDuration.WithLabelValues(scope).Observe(duration.Seconds())
}

// RecordBadge counts a badge assignment.
func (qm *QualityMetrics) RecordBadge(badge string) {
	qm.badgesTotal.WithLabelValues(badge).Inc()
}
