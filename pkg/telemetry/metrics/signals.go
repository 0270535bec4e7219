package metrics

import (
	"wealthos/governance/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SignalMetrics tracks exception signal delivery.
type SignalMetrics struct {
	sentTotal         *prometheus.CounterVec
	failedTotal       *prometheus.CounterVec
	deduplicatedTotal prometheus.Counter
}

// NewSignalMetrics creates and registers signal metrics.
func NewSignalMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SignalMetrics {
	sm := &SignalMetrics{
		sentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "signals_sent_total",
				Help:      "Total number of exception signals delivered",
			},
			[]string{"sink"},
		),
		failedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "signals_failed_total",
				Help:      "Total number of failed exception signal deliveries",
			},
			[]string{"sink"},
		),
		deduplicatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "signals_deduplicated_total",
				Help:      "Total number of exception signals dropped as duplicates",
			},
		),
	}

	registry.MustRegister(sm.sentTotal, sm.failedTotal, sm.deduplicatedTotal)
	return sm
}

// RecordSent counts a delivery.
func (sm *SignalMetrics) RecordSent(sink string) {
	sm.sentTotal.WithLabelValues(sink).Inc()
}

// RecordFailed counts a failed delivery.
func (sm *SignalMetrics) RecordFailed(sink string) {
	sm.failedTotal.WithLabelValues(sink).Inc()
}

// RecordDeduplicated counts a dropped duplicate.
func (sm *SignalMetrics) RecordDeduplicated() {
	sm.deduplicatedTotal.Inc()
}
