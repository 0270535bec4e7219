package metrics

import (
	"strconv"
	"time"

	"wealthos/governance/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RuleMetrics tracks governance rule evaluation.
//
// Metrics:
//   - <ns>_<sub>_rule_evaluations_total: evaluations by rule and outcome
//   - <ns>_<sub>_rule_triggers_total: triggered rules by rule and severity
//   - <ns>_<sub>_rule_batch_duration_seconds: duration of a full pass
//   - <ns>_<sub>_rules_loaded: number of loaded rules
type RuleMetrics struct {
	evaluationsTotal *prometheus.CounterVec
	triggersTotal    *prometheus.CounterVec
	batchDuration    prometheus.Histogram
	loaded           prometheus.Gauge
}

// NewRuleMetrics creates and registers rule metrics.
func NewRuleMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RuleMetrics {
	rm := &RuleMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_evaluations_total",
				Help:      "Total number of rule evaluations",
			},
			[]string{"rule_id", "triggered"},
		),

		triggersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_triggers_total",
				Help:      "Total number of triggered rules",
			},
			[]string{"rule_id", "severity"},
		),

		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_batch_duration_seconds",
				Help:      "Duration of a full rule evaluation pass in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
			},
		),

		loaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_loaded",
				Help:      "Number of loaded governance rules",
			},
		),
	}

	registry.MustRegister(rm.evaluationsTotal, rm.triggersTotal, rm.batchDuration, rm.loaded)
	return rm
}

// RecordEvaluation records one rule result.
func (rm *RuleMetrics) RecordEvaluation(ruleID string, triggered bool, severity string) {
	rm.evaluationsTotal.WithLabelValues(ruleID, strconv.FormatBool(triggered)).Inc()
	if triggered {
		rm.triggersTotal.WithLabelValues(ruleID, severity).Inc()
	}
}

// RecordBatch observes a full evaluation pass.
func (rm *RuleMetrics) RecordBatch(rules int, duration time.Duration) {
	rm.batchDuration.Observe(duration.Seconds())
	rm.loaded.Set(float64(rules))
}

// UpdateLoaded sets the loaded rule count.
func (rm *RuleMetrics) UpdateLoaded(n int) {
	rm.loaded.Set(float64(n))
}
