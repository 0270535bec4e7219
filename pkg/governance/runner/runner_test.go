package runner

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/override"
	"wealthos/governance/pkg/governance/recon"
	"wealthos/governance/pkg/governance/signals"
	"wealthos/governance/pkg/governance/storage"
)

var now = time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

type fixture struct {
	catalog   *storage.MemoryCatalog
	snapshots *storage.MemorySnapshotStore
	sink      *signals.MemorySink
	recorder  *signals.Recorder
	runner    *Runner
}

func newFixture(t *testing.T, ruleSet ...governance.Rule) *fixture {
	t.Helper()

	f := &fixture{
		catalog:   storage.NewMemoryCatalog(),
		snapshots: storage.NewMemorySnapshotStore(),
		sink:      signals.NewMemorySink(),
	}
	f.recorder = signals.NewRecorder(f.sink, nil)
	t.Cleanup(func() { f.recorder.Close() })

	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return now }
	cfg.TolerancePercent = recon.Tolerance(0.5)

	r, err := New(Deps{
		Catalog:   f.catalog,
		Snapshots: f.snapshots,
		Rules:     StaticRules(ruleSet),
		Recorder:  f.recorder,
	}, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.runner = r
	return f
}

func (f *fixture) putRow(t *testing.T, collection, id, data string) {
	t.Helper()
	if _, err := f.catalog.Put(context.Background(), collection, id, json.RawMessage(data)); err != nil {
		t.Fatalf("Put(%s/%s) error = %v", collection, id, err)
	}
}

func (f *fixture) addKpi(t *testing.T, id string, asOf time.Time, value *float64, inputs ...governance.LineageInput) {
	t.Helper()
	ctx := context.Background()

	kpi := &governance.Kpi{
		Name:        "Net worth",
		Domain:      governance.DomainNetWorth,
		FormulaText: "sum(balance) + sum(market_value)",
		AsOf:        asOf,
		Status:      governance.KpiActive,
	}
	kpi.ID = id
	if value != nil {
		kpi.LastValue = &governance.MetricValue{Value: *value, Currency: "USD"}
	}

	if len(inputs) > 0 {
		l := &governance.Lineage{
			KpiID:  id,
			Inputs: inputs,
			Transforms: []governance.LineageTransform{
				{StepNo: 1, Title: "Sum", Description: "Sum all balances"},
			},
		}
		l.ID = "lin-" + id
		if err := storage.Save(ctx, f.catalog, governance.CollectionLineage, l); err != nil {
			t.Fatalf("Save(lineage) error = %v", err)
		}
		kpi.LineageID = l.ID
	}
	if err := storage.Save(ctx, f.catalog, governance.CollectionKpis, kpi); err != nil {
		t.Fatalf("Save(kpi) error = %v", err)
	}
}

func (f *fixture) kpi(t *testing.T, id string) *governance.Kpi {
	t.Helper()
	k, err := storage.Load[governance.Kpi](context.Background(), f.catalog, governance.CollectionKpis, id)
	if err != nil {
		t.Fatalf("Load(kpi %s) error = %v", id, err)
	}
	return k
}

// seedNetWorth stores a metric over two collections with one missing cell
// out of five.
func seedNetWorth(t *testing.T, f *fixture) {
	t.Helper()
	f.putRow(t, "accounts", "a1", `{"balance": 100, "currency": "USD"}`)
	f.putRow(t, "accounts", "a2", `{"balance": 200, "currency": null}`)
	f.putRow(t, "holdings", "h1", `{"market_value": 5}`)
	value := 1000.0
	f.addKpi(t, "nw", now, &value,
		governance.LineageInput{Collection: "accounts", Fields: []string{"balance", "currency"}},
		governance.LineageInput{Collection: "holdings", Fields: []string{"market_value"}},
	)
}

// seedStale stores a 20 day old metric whose only input is empty.
func seedStale(t *testing.T, f *fixture) {
	t.Helper()
	f.putRow(t, "legacy", "l1", `{"x": null}`)
	f.addKpi(t, "old", now.AddDate(0, 0, -20), nil,
		governance.LineageInput{Collection: "legacy", Fields: []string{"x"}},
	)
}

func TestNew_RequiresStores(t *testing.T) {
	if _, err := New(Deps{Snapshots: storage.NewMemorySnapshotStore()}, nil); err == nil {
		t.Error("New() without catalog: expected error")
	}
	if _, err := New(Deps{Catalog: storage.NewMemoryCatalog()}, nil); err == nil {
		t.Error("New() without snapshot store: expected error")
	}
}

func TestScoreKpi(t *testing.T) {
	f := newFixture(t)
	seedNetWorth(t, f)

	score, err := f.runner.ScoreKpi(context.Background(), "nw")
	if err != nil {
		t.Fatalf("ScoreKpi() error = %v", err)
	}

	// completeness 80, freshness 100, consistency 95, coverage 70
	if score.CompletenessScore != 80 || score.FreshnessScore != 100 ||
		score.ConsistencyScore != 95 || score.CoverageScore != 70 {
		t.Errorf("sub-scores = %d/%d/%d/%d, want 80/100/95/70",
			score.CompletenessScore, score.FreshnessScore, score.ConsistencyScore, score.CoverageScore)
	}
	if score.ScoreTotal != 87 {
		t.Errorf("ScoreTotal = %d, want 87", score.ScoreTotal)
	}
	if score.ID == "" {
		t.Error("score was not appended")
	}
	if len(score.Details.MissingFields) != 1 || score.Details.MissingFields[0] != "accounts.currency" {
		t.Errorf("MissingFields = %v, want [accounts.currency]", score.Details.MissingFields)
	}

	kpi := f.kpi(t, "nw")
	if kpi.LastQualityScoreID != score.ID {
		t.Errorf("LastQualityScoreID = %q, want %q", kpi.LastQualityScoreID, score.ID)
	}
	if kpi.TrustBadge != governance.TrustVerified {
		t.Errorf("TrustBadge = %q, want verified", kpi.TrustBadge)
	}

	latest, err := f.snapshots.LatestQualityScore(context.Background(), governance.ScopeKpi, "nw")
	if err != nil {
		t.Fatalf("LatestQualityScore() error = %v", err)
	}
	if latest.ID != score.ID {
		t.Errorf("latest score = %q, want %q", latest.ID, score.ID)
	}
}

func TestScoreKpi_StaleMetric(t *testing.T) {
	f := newFixture(t)
	seedStale(t, f)

	score, err := f.runner.ScoreKpi(context.Background(), "old")
	if err != nil {
		t.Fatalf("ScoreKpi() error = %v", err)
	}
	// 0*0.30 + 30*0.25 + 95*0.25 + 50*0.20 = 41.25
	if score.ScoreTotal != 41 {
		t.Errorf("ScoreTotal = %d, want 41", score.ScoreTotal)
	}
	if got := f.kpi(t, "old").TrustBadge; got != governance.TrustStale {
		t.Errorf("TrustBadge = %q, want stale", got)
	}
}

func TestScoreKpi_Errors(t *testing.T) {
	f := newFixture(t)
	f.addKpi(t, "bare", now, nil)

	_, err := f.runner.ScoreKpi(context.Background(), "missing")
	if !errors.Is(err, governance.ErrNotFound) {
		t.Errorf("unknown metric: error = %v, want ErrNotFound", err)
	}

	_, err = f.runner.ScoreKpi(context.Background(), "bare")
	if !isMissingLineage(err) {
		t.Errorf("metric without lineage: error = %v, want missing lineage", err)
	}
}

func TestScoreAll_SkipsMetricsWithoutLineage(t *testing.T) {
	f := newFixture(t)
	seedNetWorth(t, f)
	seedStale(t, f)
	f.addKpi(t, "bare", now, nil)

	scores, err := f.runner.ScoreAll(context.Background())
	if err != nil {
		t.Fatalf("ScoreAll() error = %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("len(scores) = %d, want 2", len(scores))
	}
	n, err := f.snapshots.CountQualityScores(context.Background(), &governance.SnapshotQuery{})
	if err != nil {
		t.Fatalf("CountQualityScores() error = %v", err)
	}
	if n != 2 {
		t.Errorf("appended %d scores, want 2", n)
	}
}

func TestRefreshTrustBadges(t *testing.T) {
	f := newFixture(t)
	seedNetWorth(t, f)

	// Never scored: fresh metric without a score is estimated.
	changed, err := f.runner.RefreshTrustBadges(context.Background())
	if err != nil {
		t.Fatalf("RefreshTrustBadges() error = %v", err)
	}
	if changed != 1 {
		t.Errorf("changed = %d, want 1", changed)
	}
	if got := f.kpi(t, "nw").TrustBadge; got != governance.TrustEstimated {
		t.Errorf("TrustBadge = %q, want estimated", got)
	}

	if _, err := f.runner.ScoreKpi(context.Background(), "nw"); err != nil {
		t.Fatalf("ScoreKpi() error = %v", err)
	}
	changed, err = f.runner.RefreshTrustBadges(context.Background())
	if err != nil {
		t.Fatalf("RefreshTrustBadges() error = %v", err)
	}
	if changed != 0 {
		t.Errorf("changed after scoring = %d, want 0", changed)
	}
}

func TestReconcile(t *testing.T) {
	f := newFixture(t)
	f.putRow(t, "cash_ledger", "c1", `{"account_id": "A1", "currency": "USD", "amount": 60}`)
	f.putRow(t, "cash_ledger", "c2", `{"account_id": "A1", "currency": "USD", "amount": 40}`)
	f.putRow(t, "cash_ledger", "c3", `{"account_id": "A1", "currency": "EUR", "amount": 999}`)
	f.putRow(t, "bank_statement", "b1", `{"account_id": "A1", "currency": "USD", "amount": 101}`)

	req := ReconRequest{
		Type:            governance.ReconCashBank,
		LeftCollection:  "cash_ledger",
		RightCollection: "bank_statement",
		Filter:          recon.Filter{Currency: "USD"},
		EntityID:        "ent-1",
	}

	rec, err := f.runner.Reconcile(context.Background(), req)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if rec.Left.Value != 100 || rec.Right.Value != 101 {
		t.Errorf("values = %v/%v, want 100/101", rec.Left.Value, rec.Right.Value)
	}
	// |100-101| / 101 = 0.99% > 0.5%
	if rec.StatusKey != governance.ReconBreak {
		t.Errorf("status = %q, want break", rec.StatusKey)
	}
	if rec.Scope.EntityID != "ent-1" || rec.Scope.Currency != "USD" {
		t.Errorf("scope = %+v", rec.Scope)
	}

	loose := 2.0
	req.TolerancePercent = &loose
	rec, err = f.runner.Reconcile(context.Background(), req)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if rec.StatusKey != governance.ReconOK {
		t.Errorf("status with 2%% tolerance = %q, want ok", rec.StatusKey)
	}

	latest, err := f.snapshots.LatestReconciliation(context.Background(), governance.ReconCashBank, rec.Scope)
	if err != nil {
		t.Fatalf("LatestReconciliation() error = %v", err)
	}
	if latest.ID != rec.ID {
		t.Errorf("latest = %q, want %q", latest.ID, rec.ID)
	}
}

func TestReconcile_EmptyCollections(t *testing.T) {
	f := newFixture(t)
	rec, err := f.runner.Reconcile(context.Background(), ReconRequest{
		Type:            governance.ReconGLSubledger,
		LeftCollection:  "gl",
		RightCollection: "subledger",
	})
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if rec.DeltaValue.Amount != 0 || rec.StatusKey != governance.ReconOK {
		t.Errorf("empty reconciliation = %+v / %q, want zero delta and ok", rec.DeltaValue, rec.StatusKey)
	}
}

func TestReconcile_InvalidRequest(t *testing.T) {
	f := newFixture(t)
	_, err := f.runner.Reconcile(context.Background(), ReconRequest{Type: "nope"})

	var verr *governance.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(verr.Issues) != 3 {
		t.Errorf("issues = %v, want 3", verr.Issues)
	}
}

func TestEvaluateRules_EmitsOncePerFingerprint(t *testing.T) {
	rule := governance.Rule{
		Name:        "Low quality",
		RuleTypeKey: governance.RuleQualityThreshold,
		AppliesTo:   governance.RuleScope{AllKpis: true},
		Config: governance.RuleConfig{
			Threshold:         60,
			Severity:          governance.SeverityHigh,
			AutoEmitException: true,
			ExceptionCategory: "data_quality",
		},
		Enabled: true,
	}
	rule.ID = "rule-quality"

	f := newFixture(t, rule)
	seedNetWorth(t, f)
	seedStale(t, f)
	if _, err := f.runner.ScoreAll(context.Background()); err != nil {
		t.Fatalf("ScoreAll() error = %v", err)
	}

	eval, err := f.runner.EvaluateRules(context.Background())
	if err != nil {
		t.Fatalf("EvaluateRules() error = %v", err)
	}
	if eval.Triggered != 1 || eval.Emitted != 1 {
		t.Errorf("triggered/emitted = %d/%d, want 1/1", eval.Triggered, eval.Emitted)
	}
	if got := f.runner.LastEvaluation(); got != eval {
		t.Error("LastEvaluation() does not return the last evaluation")
	}

	eval, err = f.runner.EvaluateRules(context.Background())
	if err != nil {
		t.Fatalf("EvaluateRules() error = %v", err)
	}
	if eval.Emitted != 0 || eval.Deduplicated != 1 {
		t.Errorf("second pass emitted/deduplicated = %d/%d, want 0/1", eval.Emitted, eval.Deduplicated)
	}

	f.recorder.Close()
	sent := f.sink.Signals()
	if len(sent) != 1 {
		t.Fatalf("sink received %d signals, want 1", len(sent))
	}
	if sent[0].Category != "data_quality" || sent[0].Severity != governance.SeverityHigh {
		t.Errorf("signal = %+v", sent[0])
	}
}

func TestRunOnce(t *testing.T) {
	f := newFixture(t)
	seedNetWorth(t, f)
	f.addKpi(t, "bare", now, nil)

	report, err := f.runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if report.RunID == "" {
		t.Error("RunID is empty")
	}
	if report.Scored != 1 || report.Skipped != 1 {
		t.Errorf("scored/skipped = %d/%d, want 1/1", report.Scored, report.Skipped)
	}
	if report.Evaluation == nil {
		t.Fatal("Evaluation is nil")
	}
	if !f.runner.LastRun().Equal(now) {
		t.Errorf("LastRun() = %v, want %v", f.runner.LastRun(), now)
	}
}

func TestOverrideWorkflow(t *testing.T) {
	f := newFixture(t)
	seedNetWorth(t, f)
	ctx := context.Background()

	amount := 50.0
	o, err := f.runner.CreateOverride(ctx, override.Request{
		TargetType:  governance.TargetKpi,
		TargetID:    "nw",
		Type:        governance.OverrideAdjustment,
		Value:       governance.OverrideValue{AdjustmentAmount: &amount, Currency: "USD"},
		Reason:      "Missing custodian dividend",
		RequestedBy: "alice",
	})
	if err != nil {
		t.Fatalf("CreateOverride() error = %v", err)
	}
	if o.StatusKey != governance.OverrideDraft {
		t.Fatalf("status = %q, want draft", o.StatusKey)
	}

	var terr *governance.InvalidTransitionError
	if _, err := f.runner.ApplyOverride(ctx, o.ID, "bob"); !errors.As(err, &terr) {
		t.Errorf("apply draft: error = %v, want InvalidTransitionError", err)
	}

	if _, err := f.runner.Transition(ctx, o.ID, governance.ActionSubmit, "alice", ""); err != nil {
		t.Fatalf("submit error = %v", err)
	}

	var verr *governance.ValidationError
	if _, err := f.runner.Transition(ctx, o.ID, governance.ActionApprove, "alice", ""); !errors.As(err, &verr) {
		t.Errorf("self-approval: error = %v, want ValidationError", err)
	}

	if _, err := f.runner.Transition(ctx, o.ID, governance.ActionApprove, "bob", ""); err != nil {
		t.Fatalf("approve error = %v", err)
	}
	applied, err := f.runner.Transition(ctx, o.ID, governance.ActionApply, "bob", "")
	if err != nil {
		t.Fatalf("apply error = %v", err)
	}
	if applied.StatusKey != governance.OverrideApplied || applied.AppliedAt == nil {
		t.Errorf("applied override = %q, AppliedAt = %v", applied.StatusKey, applied.AppliedAt)
	}
	if len(applied.History) != 3 {
		t.Errorf("history length = %d, want 3", len(applied.History))
	}

	kpi := f.kpi(t, "nw")
	if kpi.LastValue == nil || kpi.LastValue.Value != 1050 {
		t.Errorf("adjusted value = %+v, want 1050", kpi.LastValue)
	}

	w, err := f.runner.Why(ctx, "nw", "")
	if err != nil {
		t.Fatalf("Why() error = %v", err)
	}
	if len(w.Overrides) != 1 || w.Overrides[0].ID != o.ID {
		t.Errorf("explained overrides = %+v", w.Overrides)
	}
}

// kpiWriteFailCatalog fails metric writes while fail is set.
type kpiWriteFailCatalog struct {
	*storage.MemoryCatalog
	fail bool
}

func (c *kpiWriteFailCatalog) Put(ctx context.Context, collection, id string, data json.RawMessage) (*governance.Document, error) {
	if c.fail && collection == governance.CollectionKpis {
		return nil, errors.New("disk full")
	}
	return c.MemoryCatalog.Put(ctx, collection, id, data)
}

func TestApplyOverride_AdjustsOnce(t *testing.T) {
	f := newFixture(t)
	seedNetWorth(t, f)
	ctx := context.Background()

	catalog := &kpiWriteFailCatalog{MemoryCatalog: f.catalog}
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return now }
	r, err := New(Deps{
		Catalog:   catalog,
		Snapshots: f.snapshots,
		Rules:     StaticRules(nil),
		Recorder:  f.recorder,
	}, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	amount := 50.0
	o, err := r.CreateOverride(ctx, override.Request{
		TargetType:  governance.TargetKpi,
		TargetID:    "nw",
		Type:        governance.OverrideAdjustment,
		Value:       governance.OverrideValue{AdjustmentAmount: &amount, Currency: "USD"},
		Reason:      "Missing custodian dividend",
		RequestedBy: "alice",
	})
	if err != nil {
		t.Fatalf("CreateOverride() error = %v", err)
	}
	if _, err := r.Transition(ctx, o.ID, governance.ActionSubmit, "alice", ""); err != nil {
		t.Fatalf("submit error = %v", err)
	}
	if _, err := r.Transition(ctx, o.ID, governance.ActionApprove, "bob", ""); err != nil {
		t.Fatalf("approve error = %v", err)
	}

	catalog.fail = true
	if _, err := r.ApplyOverride(ctx, o.ID, "bob"); err == nil {
		t.Fatal("apply with failing metric write: error = nil")
	}
	stored, err := storage.Load[governance.Override](ctx, catalog, governance.CollectionOverrides, o.ID)
	if err != nil {
		t.Fatalf("Load(override) error = %v", err)
	}
	if stored.StatusKey != governance.OverrideApproved {
		t.Errorf("status after failed apply = %q, want approved", stored.StatusKey)
	}
	if got := f.kpi(t, "nw").LastValue.Value; got != 1000 {
		t.Errorf("value after failed apply = %v, want 1000", got)
	}

	catalog.fail = false
	if _, err := r.ApplyOverride(ctx, o.ID, "bob"); err != nil {
		t.Fatalf("apply error = %v", err)
	}
	var terr *governance.InvalidTransitionError
	if _, err := r.ApplyOverride(ctx, o.ID, "bob"); !errors.As(err, &terr) {
		t.Errorf("second apply: error = %v, want InvalidTransitionError", err)
	}
	if got := f.kpi(t, "nw").LastValue.Value; got != 1050 {
		t.Errorf("value after repeated apply = %v, want 1050", got)
	}
}

func TestWhy(t *testing.T) {
	f := newFixture(t)
	seedNetWorth(t, f)
	ctx := context.Background()

	w, err := f.runner.Why(ctx, "nw", governance.LocaleEN)
	if err != nil {
		t.Fatalf("Why() error = %v", err)
	}
	if w.Quality != nil {
		t.Error("unscored metric should have no quality summary")
	}
	if w.Confidence != governance.ConfidenceMedium {
		t.Errorf("confidence without score = %q, want medium", w.Confidence)
	}

	score, err := f.runner.ScoreKpi(ctx, "nw")
	if err != nil {
		t.Fatalf("ScoreKpi() error = %v", err)
	}
	w, err = f.runner.Why(ctx, "nw", "")
	if err != nil {
		t.Fatalf("Why() error = %v", err)
	}
	if w.Quality == nil || w.Quality.ScoreID != score.ID {
		t.Fatalf("quality summary = %+v, want score %s", w.Quality, score.ID)
	}
	if w.Confidence != governance.ConfidenceHigh {
		t.Errorf("confidence = %q, want high", w.Confidence)
	}
	if len(w.Inputs) != 2 || len(w.Transforms) != 1 {
		t.Errorf("inputs/transforms = %d/%d, want 2/1", len(w.Inputs), len(w.Transforms))
	}

	if _, err := f.runner.Why(ctx, "missing", ""); !errors.Is(err, governance.ErrNotFound) {
		t.Errorf("unknown metric: error = %v, want ErrNotFound", err)
	}
}

func TestScheduler(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	idle := NewScheduler(f.runner, "")
	if err := idle.Start(ctx); err != nil {
		t.Fatalf("Start() with empty schedule error = %v", err)
	}
	if idle.IsRunning() || idle.NextRun() != nil {
		t.Error("scheduler without schedule should stay idle")
	}

	if err := NewScheduler(f.runner, "not a cron").Start(ctx); err == nil {
		t.Error("Start() with invalid schedule: expected error")
	}

	s := NewScheduler(f.runner, "*/5 * * * *")
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}
	if s.NextRun() == nil {
		t.Error("NextRun() = nil after Start")
	}
	if err := s.Start(ctx); err == nil {
		t.Error("second Start(): expected error")
	}
	s.Stop()
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestDefineLineage(t *testing.T) {
	f := newFixture(t)
	f.addKpi(t, "cash", now, nil)
	ctx := context.Background()

	if _, err := f.runner.Lineage(ctx, "cash"); !errors.Is(err, governance.ErrNotFound) {
		t.Fatalf("Lineage() before define error = %v, want not found", err)
	}

	l, err := f.runner.DefineLineage(ctx, "cash",
		[]governance.LineageInput{{Collection: "accounts", Fields: []string{"balance"}}},
		[]governance.LineageTransform{
			{StepNo: 2, Title: "Convert", Description: "FX to USD"},
			{StepNo: 1, Title: "Sum", Description: "Sum balances"},
		},
		nil,
	)
	if err != nil {
		t.Fatalf("DefineLineage() error = %v", err)
	}
	if l.ID == "" || l.Transforms[0].StepNo != 1 {
		t.Errorf("lineage = %+v, want stored with sorted steps", l)
	}
	if got := f.kpi(t, "cash").LineageID; got != l.ID {
		t.Errorf("kpi.LineageID = %q, want %q", got, l.ID)
	}

	got, err := f.runner.Lineage(ctx, "cash")
	if err != nil {
		t.Fatalf("Lineage() error = %v", err)
	}
	if got.ID != l.ID {
		t.Errorf("Lineage().ID = %q, want %q", got.ID, l.ID)
	}

	if _, err := f.runner.DefineLineage(ctx, "cash", nil, nil, nil); err == nil {
		t.Error("DefineLineage() without inputs: expected validation error")
	}
	if _, err := f.runner.DefineLineage(ctx, "missing", []governance.LineageInput{{Collection: "x"}}, nil, nil); !errors.Is(err, governance.ErrNotFound) {
		t.Errorf("DefineLineage() for unknown metric error = %v, want not found", err)
	}
}
