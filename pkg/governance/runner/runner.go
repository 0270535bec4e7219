package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"wealthos/governance/pkg/config"
	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/quality"
	"wealthos/governance/pkg/governance/recon"
	"wealthos/governance/pkg/governance/signals"
	"wealthos/governance/pkg/telemetry/logging"
	"wealthos/governance/pkg/telemetry/metrics"
	"wealthos/governance/pkg/telemetry/tracing"
)

// RuleSource supplies the rules evaluated by a run. *source.Registry
// satisfies it.
type RuleSource interface {
	Rules() []governance.Rule
}

// StaticRules is a fixed rule set.
type StaticRules []governance.Rule

// Rules implements RuleSource.
func (s StaticRules) Rules() []governance.Rule {
	return append([]governance.Rule(nil), s...)
}

// Config tunes a Runner.
type Config struct {
	// StaleDays is passed to quality.DeriveTrustBadge.
	// Default: 7
	StaleDays int

	// TolerancePercent is used by Reconcile when a request carries none.
	// Nil means recon.DefaultTolerancePercent.
	TolerancePercent *float64

	// Locale is the default locale of explanations.
	// Default: "en"
	Locale governance.Locale

	// Concurrency bounds how many metrics ScoreAll scores at once.
	// Default: 4
	Concurrency int

	// Now is the clock. Default: time.Now
	Now func() time.Time
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() *Config {
	return &Config{
		StaleDays:   quality.DefaultStaleDays,
		Locale:      governance.LocaleEN,
		Concurrency: 4,
		Now:         time.Now,
	}
}

// ConfigFrom maps the engine configuration onto a runner configuration.
func ConfigFrom(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if cfg.Quality.StaleDays > 0 {
		c.StaleDays = cfg.Quality.StaleDays
	}
	if cfg.Quality.Concurrency > 0 {
		c.Concurrency = cfg.Quality.Concurrency
	}
	if cfg.Reconciliation.TolerancePercent != nil {
		c.TolerancePercent = recon.Tolerance(*cfg.Reconciliation.TolerancePercent)
	}
	c.Locale = governance.ParseLocale(cfg.Locale)
	return c
}

// Deps are the collaborators of a Runner. Catalog and Snapshots are
// required; the rest fall back to inert implementations.
type Deps struct {
	Catalog   governance.Catalog
	Snapshots governance.SnapshotStore
	Rules     RuleSource
	// Recorder receives exception signals. Nil disables the handoff.
	Recorder *signals.Recorder
	Metrics  *metrics.Collector
	Tracer   *tracing.Tracer
	Logger   *slog.Logger
}

// Runner drives the governance engines against the stores.
type Runner struct {
	catalog   governance.Catalog
	snapshots governance.SnapshotStore
	rules     RuleSource
	recorder  *signals.Recorder
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	logger    *slog.Logger
	config    *Config

	mu          sync.RWMutex
	lastRun     time.Time
	lastResults *Evaluation
}

// New creates a runner.
func New(deps Deps, cfg *Config) (*Runner, error) {
	if deps.Catalog == nil {
		return nil, errors.New("runner: catalog is required")
	}
	if deps.Snapshots == nil {
		return nil, errors.New("runner: snapshot store is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if !cfg.Locale.Valid() {
		cfg.Locale = governance.LocaleEN
	}

	r := &Runner{
		catalog:   deps.Catalog,
		snapshots: deps.Snapshots,
		rules:     deps.Rules,
		recorder:  deps.Recorder,
		metrics:   deps.Metrics,
		tracer:    deps.Tracer,
		logger:    deps.Logger,
		config:    cfg,
	}
	if r.rules == nil {
		r.rules = StaticRules(nil)
	}
	if r.metrics == nil {
		r.metrics = metrics.NewCollector(&config.MetricsConfig{}, nil)
	}
	if r.tracer == nil {
		r.tracer = tracing.Noop()
	}
	if r.logger == nil {
		r.logger = slog.Default().With("component", "governance.runner")
	}
	return r, nil
}

// RunReport summarizes one full governance pass.
type RunReport struct {
	RunID         string        `json:"run_id"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	Scored        int           `json:"scored"`
	Skipped       int           `json:"skipped"`
	BadgesChanged int           `json:"badges_changed"`
	Evaluation    *Evaluation   `json:"evaluation,omitempty"`
}

// RunOnce scores every active metric, refreshes trust badges and evaluates
// the rules against the fresh snapshots.
func (r *Runner) RunOnce(ctx context.Context) (*RunReport, error) {
	report := &RunReport{RunID: uuid.NewString(), StartedAt: r.config.Now()}
	ctx = logging.WithRunID(ctx, report.RunID)
	ctx, span := r.tracer.Start(ctx, "governance.run",
		trace.WithAttributes(attribute.String(tracing.AttrRunID, report.RunID)))

	err := r.runOnce(ctx, report)
	report.Duration = time.Since(report.StartedAt)

	tracing.End(span, err)
	r.metrics.RecordRun("run", report.Duration, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "governance run failed", "error", err)
		return report, err
	}

	r.mu.Lock()
	r.lastRun = report.StartedAt
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "governance run completed",
		"scored", report.Scored,
		"skipped", report.Skipped,
		"badges_changed", report.BadgesChanged,
		"triggered", report.Evaluation.Triggered,
		"duration", report.Duration,
	)
	return report, nil
}

func (r *Runner) runOnce(ctx context.Context, report *RunReport) error {
	scores, skipped, err := r.scoreAll(ctx)
	if err != nil {
		return fmt.Errorf("score metrics: %w", err)
	}
	report.Scored = len(scores)
	report.Skipped = skipped

	changed, err := r.RefreshTrustBadges(ctx)
	if err != nil {
		return fmt.Errorf("refresh trust badges: %w", err)
	}
	report.BadgesChanged = changed

	eval, err := r.EvaluateRules(ctx)
	if err != nil {
		return fmt.Errorf("evaluate rules: %w", err)
	}
	report.Evaluation = eval
	return nil
}

// LastRun returns the start time of the last successful RunOnce, or the
// zero time.
func (r *Runner) LastRun() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastRun
}

// LastEvaluation returns the result of the most recent EvaluateRules call,
// or nil.
func (r *Runner) LastEvaluation() *Evaluation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastResults
}

func (r *Runner) now() time.Time {
	return r.config.Now()
}

// isNotFound reports whether err is a NotFoundError, which lookups of
// optional records treat as absence.
func isNotFound(err error) bool {
	return errors.Is(err, governance.ErrNotFound)
}
