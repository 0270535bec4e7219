package runner

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/explain"
	"wealthos/governance/pkg/governance/override"
	"wealthos/governance/pkg/governance/storage"
	"wealthos/governance/pkg/telemetry/logging"
	"wealthos/governance/pkg/telemetry/tracing"
)

// CreateOverride validates req and stores a draft override.
func (r *Runner) CreateOverride(ctx context.Context, req override.Request) (*governance.Override, error) {
	o, err := override.Create(req)
	if err != nil {
		return nil, err
	}
	if err := storage.Save(ctx, r.catalog, governance.CollectionOverrides, &o); err != nil {
		return nil, err
	}
	r.logger.InfoContext(logging.WithActorID(ctx, req.RequestedBy), "override created",
		"override_id", o.ID,
		"target_type", o.TargetType,
		"target_id", o.TargetID,
		"type", o.OverrideTypeKey,
	)
	return &o, nil
}

// Transition moves a stored override by action. reason is only used by
// reject. Applying goes through ApplyOverride so the target is updated.
func (r *Runner) Transition(ctx context.Context, overrideID string, action governance.OverrideAction, actor, reason string) (*governance.Override, error) {
	if action == governance.ActionApply {
		return r.ApplyOverride(ctx, overrideID, actor)
	}

	ctx = logging.WithActorID(ctx, actor)
	ctx, span := r.tracer.Start(ctx, "governance.override."+string(action))
	o, err := r.transition(ctx, overrideID, action, actor, reason)
	tracing.End(span, err)
	return o, err
}

func (r *Runner) transition(ctx context.Context, overrideID string, action governance.OverrideAction, actor, reason string) (*governance.Override, error) {
	o, err := storage.Load[governance.Override](ctx, r.catalog, governance.CollectionOverrides, overrideID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	var next governance.Override
	switch action {
	case governance.ActionSubmit:
		next, err = override.Submit(*o, actor, now)
	case governance.ActionApprove:
		next, err = override.Approve(*o, actor, now)
	case governance.ActionReject:
		next, err = override.Reject(*o, actor, reason, now)
	default:
		return nil, governance.NewValidationError("override", fmt.Sprintf("unknown action %q", action))
	}
	if err != nil {
		return nil, err
	}

	if err := storage.Save(ctx, r.catalog, governance.CollectionOverrides, &next); err != nil {
		return nil, err
	}
	r.recordTransition(ctx, &next, action)
	return &next, nil
}

// ApplyOverride applies an approved override. When it targets a metric
// with a value, the adjusted value is written back to the metric after the
// override is marked applied. A failed write returns the override to
// approved.
func (r *Runner) ApplyOverride(ctx context.Context, overrideID, actor string) (*governance.Override, error) {
	ctx = logging.WithActorID(ctx, actor)
	ctx, span := r.tracer.Start(ctx, "governance.override.apply")
	start := time.Now()

	o, err := r.applyOverride(ctx, overrideID, actor)

	tracing.End(span, err)
	r.metrics.RecordRun("apply_override", time.Since(start), err)
	return o, err
}

func (r *Runner) applyOverride(ctx context.Context, overrideID, actor string) (*governance.Override, error) {
	o, err := storage.Load[governance.Override](ctx, r.catalog, governance.CollectionOverrides, overrideID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	applied, err := override.Apply(*o, actor, now)
	if err != nil {
		return nil, err
	}

	// The status is written first so a repeated apply is refused by the
	// state machine instead of adjusting the metric twice.
	if err := storage.Save(ctx, r.catalog, governance.CollectionOverrides, &applied); err != nil {
		return nil, err
	}

	if applied.TargetType == governance.TargetKpi {
		if err := r.adjustKpi(ctx, applied, now); err != nil {
			if rerr := storage.Save(ctx, r.catalog, governance.CollectionOverrides, o); rerr != nil {
				r.logger.ErrorContext(ctx, "failed to restore override after adjustment error",
					"override_id", o.ID,
					"error", rerr,
				)
			}
			return nil, err
		}
	}
	r.recordTransition(ctx, &applied, governance.ActionApply)
	return &applied, nil
}

func (r *Runner) adjustKpi(ctx context.Context, o governance.Override, now time.Time) error {
	kpi, err := storage.Load[governance.Kpi](ctx, r.catalog, governance.CollectionKpis, o.TargetID)
	if err != nil {
		return err
	}
	if kpi.LastValue == nil {
		r.logger.WarnContext(ctx, "override target has no value, nothing to adjust",
			"override_id", o.ID,
			"kpi_id", kpi.ID,
		)
		return nil
	}

	before := kpi.LastValue.Value
	value := *kpi.LastValue
	value.Value = override.CalculateAdjustedValue(before, o)
	value.ComputedAt = &now
	kpi.LastValue = &value

	if err := storage.Save(ctx, r.catalog, governance.CollectionKpis, kpi); err != nil {
		return fmt.Errorf("write adjusted value: %w", err)
	}
	r.logger.InfoContext(ctx, "metric value adjusted",
		"override_id", o.ID,
		"kpi_id", kpi.ID,
		"from", before,
		"to", value.Value,
	)
	return nil
}

func (r *Runner) recordTransition(ctx context.Context, o *governance.Override, action governance.OverrideAction) {
	r.metrics.RecordOverrideTransition(string(action), string(o.StatusKey))
	tracing.SetOverrideAttributes(trace.SpanFromContext(ctx), o.ID, string(o.StatusKey))
	r.logger.InfoContext(ctx, "override transitioned",
		"override_id", o.ID,
		"action", action,
		"status", o.StatusKey,
	)
}

// Why builds the "why this number" explanation of a metric. locale ""
// uses the runner default.
func (r *Runner) Why(ctx context.Context, kpiID string, locale governance.Locale) (*explain.WhyThisNumber, error) {
	ctx = logging.WithKpiID(ctx, kpiID)
	ctx, span := r.tracer.Start(ctx, "governance.why")

	w, err := r.why(ctx, kpiID, locale)

	tracing.End(span, err)
	return w, err
}

func (r *Runner) why(ctx context.Context, kpiID string, locale governance.Locale) (*explain.WhyThisNumber, error) {
	kpi, err := storage.Load[governance.Kpi](ctx, r.catalog, governance.CollectionKpis, kpiID)
	if err != nil {
		return nil, err
	}

	l, err := r.lineageFor(ctx, kpi)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	score, err := r.scoreFor(ctx, kpi)
	if err != nil {
		return nil, err
	}

	all, err := storage.LoadAll[governance.Override](ctx, r.catalog, governance.CollectionOverrides)
	if err != nil {
		return nil, err
	}
	var overrides []governance.Override
	for _, o := range all {
		if o.TargetType == governance.TargetKpi && o.TargetID == kpi.ID {
			overrides = append(overrides, *o)
		}
	}

	if locale == "" {
		locale = r.config.Locale
	}
	w := explain.Build(*kpi, l, score, explain.Options{Locale: locale, Overrides: overrides})
	return &w, nil
}

// scoreFor returns the score the metric points at, falling back to the
// latest score of its scope. Nil means the metric was never scored.
func (r *Runner) scoreFor(ctx context.Context, kpi *governance.Kpi) (*governance.QualityScore, error) {
	if kpi.LastQualityScoreID != "" {
		s, err := r.snapshots.GetQualityScore(ctx, kpi.LastQualityScoreID)
		if err == nil {
			return s, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	s, err := r.snapshots.LatestQualityScore(ctx, governance.ScopeKpi, kpi.ID)
	if isNotFound(err) {
		return nil, nil
	}
	return s, err
}
