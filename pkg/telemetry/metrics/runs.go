package metrics

import (
	"time"

	"wealthos/governance/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics tracks governance operations and override transitions.
type RunMetrics struct {
	duration       *prometheus.HistogramVec
	errorsTotal    *prometheus.CounterVec
	lastSuccess    *prometheus.GaugeVec
	overridesTotal *prometheus.CounterVec
}

// NewRunMetrics creates and registers run metrics.
func NewRunMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "operation_duration_seconds",
				Help:      "Duration of governance operations in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"operation"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "operation_errors_total",
				Help:      "Total number of failed governance operations",
			},
			[]string{"operation"},
		),
		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "operation_last_success_timestamp_seconds",
				Help:      "Unix time of the last successful operation",
			},
			[]string{"operation"},
		),
		overridesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "override_transitions_total",
				Help:      "Total number of override state transitions",
			},
			[]string{"action", "to"},
		),
	}

	registry.MustRegister(rm.duration, rm.errorsTotal, rm.lastSuccess, rm.overridesTotal)
	return rm
}

// Record observes an operation.
func (rm *RunMetrics) Record(operation string, duration time.Duration, err error) {
	rm.duration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		rm.errorsTotal.WithLabelValues(operation).Inc()
		return
	}
	rm.lastSuccess.WithLabelValues(operation).SetToCurrentTime()
}

// RecordOverride counts a transition.
func (rm *RunMetrics) RecordOverride(action, to string) {
	rm.overridesTotal.WithLabelValues(action, to).Inc()
}
