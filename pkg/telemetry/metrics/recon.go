package metrics

import (
	"wealthos/governance/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconMetrics tracks reconciliations.
//
// Metrics:
//   - <ns>_<sub>_reconciliations_total: reconciliations by type and status
//   - <ns>_<sub>_reconciliation_delta_percent: latest absolute delta percent
//   - <ns>_<sub>_reconciliation_breakdown_breaks: breaking breakdown lines in
//     the latest reconciliation
type ReconMetrics struct {
	total        *prometheus.CounterVec
	deltaPercent *prometheus.GaugeVec
	breaks       *prometheus.GaugeVec
}

// NewReconMetrics creates and registers reconciliation metrics.
func NewReconMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ReconMetrics {
	rm := &ReconMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reconciliations_total",
				Help:      "Total number of reconciliations computed",
			},
			[]string{"recon_type", "status"},
		),

		deltaPercent: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reconciliation_delta_percent",
				Help:      "Absolute delta percent of the latest reconciliation",
			},
			[]string{"recon_type", "scope"},
		),

		breaks: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reconciliation_breakdown_breaks",
				Help:      "Breaking breakdown lines in the latest reconciliation",
			},
			[]string{"recon_type", "scope"},
		),
	}

	registry.MustRegister(rm.total, rm.deltaPercent, rm.breaks)
	return rm
}

// Record records one reconciliation.
func (rm *ReconMetrics) Record(reconType, scope, status string, deltaPercent float64, breaks int) {
	if deltaPercent < 0 {
		deltaPercent = -deltaPercent
	}
	rm.total.WithLabelValues(reconType, status).Inc()
	rm.deltaPercent.WithLabelValues(reconType, scope).Set(deltaPercent)
	rm.breaks.WithLabelValues(reconType, scope).Set(float64(breaks))
}
