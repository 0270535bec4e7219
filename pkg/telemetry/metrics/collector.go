package metrics

import (
	"fmt"
	"sync"
	"time"

	"wealthos/governance/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric the governance engine exports.
// All Record methods are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	quality *QualityMetrics
	recon   *ReconMetrics
	rules   *RuleMetrics
	signals *SignalMetrics
	runs    *RunMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector registered on registry. A nil registry
// gets a fresh one.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000),
	}

	c.quality = NewQualityMetrics(cfg, registry)
	c.recon = NewReconMetrics(cfg, registry)
	c.rules = NewRuleMetrics(cfg, registry)
	c.signals = NewSignalMetrics(cfg, registry)
	c.runs = NewRunMetrics(cfg, registry)

	return c
}

// RecordQualityScore records a computed quality score.
//
// scope is the quality scope key ("kpi", "collection", ...), scopeID the
// scoped object. Once the cardinality limit is reached new scope IDs are
// aggregated under "other".
func (c *Collector) RecordQualityScore(scope, scopeID string, total int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	if !c.cardinalityLimiter.Allow(fmt.Sprintf("quality:%s:%s", scope, scopeID)) {
		scopeID = "other"
	}
	c.quality.RecordScore(scope, scopeID, total, duration)
}

// RecordTrustBadge counts a trust badge assignment.
func (c *Collector) RecordTrustBadge(badge string) {
	if !c.config.Enabled {
		return
	}
	c.quality.RecordBadge(badge)
}

// RecordReconciliation records a reconciliation outcome.
//
// scope is the reconciliation scope key as produced by
// governance.ReconScope.Key().
func (c *Collector) RecordReconciliation(reconType, scope, status string, deltaPercent float64, breaks int) {
	if !c.config.Enabled {
		return
	}
	if !c.cardinalityLimiter.Allow(fmt.Sprintf("recon:%s:%s", reconType, scope)) {
		scope = "other"
	}
	c.recon.Record(reconType, scope, status, deltaPercent, breaks)
}

// RecordRuleEvaluation records a single rule result.
func (c *Collector) RecordRuleEvaluation(ruleID string, triggered bool, severity string) {
	if !c.config.Enabled {
		return
	}
	c.rules.RecordEvaluation(ruleID, triggered, severity)
}

// RecordRuleBatch records the duration of a full rule evaluation pass.
func (c *Collector) RecordRuleBatch(rules int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.rules.RecordBatch(rules, duration)
}

// UpdateLoadedRules sets the number of currently loaded rules.
func (c *Collector) UpdateLoadedRules(n int) {
	if !c.config.Enabled {
		return
	}
	c.rules.UpdateLoaded(n)
}

// RecordSignalSent counts a delivered exception signal.
func (c *Collector) RecordSignalSent(sink string) {
	if !c.config.Enabled {
		return
	}
	c.signals.RecordSent(sink)
}

// RecordSignalFailed counts a failed exception signal delivery.
func (c *Collector) RecordSignalFailed(sink string) {
	if !c.config.Enabled {
		return
	}
	c.signals.RecordFailed(sink)
}

// RecordSignalDeduplicated counts a signal dropped as a duplicate.
func (c *Collector) RecordSignalDeduplicated() {
	if !c.config.Enabled {
		return
	}
	c.signals.RecordDeduplicated()
}

// RecordRun records a governance operation ("score", "reconcile",
// "evaluate", "prune", "run") and whether it failed.
func (c *Collector) RecordRun(operation string, duration time.Duration, err error) {
	if !c.config.Enabled {
		return
	}
	c.runs.Record(operation, duration, err)
}

// RecordOverrideTransition counts an override state transition.
func (c *Collector) RecordOverrideTransition(action, to string) {
	if !c.config.Enabled {
		return
	}
	c.runs.RecordOverride(action, to)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of unique label combinations.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting up to maxCardinality
// label sets.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet is already known or still fits under the
// limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
