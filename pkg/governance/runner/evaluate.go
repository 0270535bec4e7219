package runner

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/rules"
	"wealthos/governance/pkg/governance/signals"
	"wealthos/governance/pkg/governance/storage"
	"wealthos/governance/pkg/telemetry/tracing"
)

// Evaluation is the outcome of one rule pass.
type Evaluation struct {
	EvaluatedAt time.Time      `json:"evaluated_at"`
	Results     []rules.Result `json:"results"`
	Triggered   int            `json:"triggered"`
	// Emitted counts signals accepted by the recorder. Duplicates of
	// signals already emitted are counted in Deduplicated instead.
	Emitted      int `json:"emitted"`
	Deduplicated int `json:"deduplicated"`
	Failed       int `json:"failed"`
}

// EvaluateRules evaluates every enabled rule against the metrics and the
// latest snapshot of every scope, then hands the results that require an
// exception to the recorder. Signal failures are logged and counted, never
// returned.
func (r *Runner) EvaluateRules(ctx context.Context) (*Evaluation, error) {
	ctx, span := r.tracer.Start(ctx, "governance.evaluate_rules")
	start := time.Now()

	eval, err := r.evaluateRules(ctx)

	tracing.End(span, err)
	r.metrics.RecordRun("evaluate", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.lastResults = eval
	r.mu.Unlock()
	return eval, nil
}

func (r *Runner) evaluateRules(ctx context.Context) (*Evaluation, error) {
	ruleSet := r.rules.Rules()
	ruleCtx, err := r.ruleContext(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := rules.EvaluateAll(ruleSet, ruleCtx)
	r.metrics.RecordRuleBatch(len(results), time.Since(start))

	eval := &Evaluation{EvaluatedAt: ruleCtx.CurrentDate, Results: results}
	for _, res := range results {
		r.metrics.RecordRuleEvaluation(res.RuleID, res.Triggered, string(res.Severity))
		if res.Triggered {
			eval.Triggered++
		}
		for _, w := range res.Warnings {
			r.logger.WarnContext(ctx, "rule scope field ignored", "rule_id", res.RuleID, "warning", w)
		}
	}
	tracing.SetRuleAttributes(trace.SpanFromContext(ctx), len(results), eval.Triggered)

	r.emit(ctx, eval, rules.RequiringExceptions(results))

	r.logger.InfoContext(ctx, "rules evaluated",
		"rules", len(results),
		"triggered", eval.Triggered,
		"emitted", eval.Emitted,
		"deduplicated", eval.Deduplicated,
	)
	return eval, nil
}

// ruleContext fetches what the rules are evaluated against.
func (r *Runner) ruleContext(ctx context.Context) (rules.Context, error) {
	kpis, err := storage.LoadAll[governance.Kpi](ctx, r.catalog, governance.CollectionKpis)
	if err != nil {
		return rules.Context{}, fmt.Errorf("load metrics: %w", err)
	}
	scores, err := r.snapshots.QueryQualityScores(ctx, &governance.SnapshotQuery{LatestOnly: true})
	if err != nil {
		return rules.Context{}, fmt.Errorf("load quality scores: %w", err)
	}
	recons, err := r.snapshots.QueryReconciliations(ctx, &governance.SnapshotQuery{LatestOnly: true})
	if err != nil {
		return rules.Context{}, fmt.Errorf("load reconciliations: %w", err)
	}

	rc := rules.Context{
		Metrics:         make([]governance.Kpi, len(kpis)),
		QualityScores:   make([]governance.QualityScore, len(scores)),
		Reconciliations: make([]governance.Reconciliation, len(recons)),
		CurrentDate:     r.now(),
	}
	for i, k := range kpis {
		rc.Metrics[i] = *k
	}
	for i, s := range scores {
		rc.QualityScores[i] = *s
	}
	for i, rec := range recons {
		rc.Reconciliations[i] = *rec
	}
	return rc, nil
}

func (r *Runner) emit(ctx context.Context, eval *Evaluation, pending []rules.Result) {
	if r.recorder == nil || len(pending) == 0 {
		return
	}

	carrier := map[string]string{}
	tracing.InjectToMap(ctx, carrier)

	for _, res := range pending {
		sig := signals.FromResult(res, eval.EvaluatedAt)
		if len(carrier) > 0 {
			sig.TraceContext = carrier
		}

		sent, err := r.recorder.Emit(ctx, sig)
		switch {
		case err != nil:
			eval.Failed++
			r.logger.ErrorContext(ctx, "failed to emit exception signal",
				"rule_id", res.RuleID,
				"signal_id", sig.ID,
				"error", err,
			)
		case !sent:
			eval.Deduplicated++
			r.metrics.RecordSignalDeduplicated()
		default:
			eval.Emitted++
		}
	}
}
