package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"wealthos/governance/pkg/config"
	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/explain"
	"wealthos/governance/pkg/governance/rules"
	"wealthos/governance/pkg/governance/runner"
	"wealthos/governance/pkg/telemetry/health"
	"wealthos/governance/pkg/telemetry/metrics"
)

type fakeGovernance struct {
	lastLocale governance.Locale
	eval       *runner.Evaluation
}

func (f *fakeGovernance) Why(ctx context.Context, kpiID string, locale governance.Locale) (*explain.WhyThisNumber, error) {
	f.lastLocale = locale
	switch kpiID {
	case "nw":
		return &explain.WhyThisNumber{KpiID: "nw", Name: "Net worth", Confidence: governance.ConfidenceHigh}, nil
	case "panic":
		panic("boom")
	}
	return nil, governance.NewNotFoundError(governance.CollectionKpis, kpiID)
}

func (f *fakeGovernance) LastEvaluation() *runner.Evaluation {
	return f.eval
}

func newTestServer(t *testing.T, gov *fakeGovernance) http.Handler {
	t.Helper()

	checker := health.New(time.Second)
	checker.Register("always", true, func(ctx context.Context) error { return nil })

	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true}, prometheus.NewRegistry())
	collector.UpdateLoadedRules(2)

	srv := NewServer(&config.ServerConfig{WriteTimeout: 5 * time.Second}, Deps{
		Governance: gov,
		Rules: runner.StaticRules{
			{Name: "Low quality", RuleTypeKey: governance.RuleQualityThreshold, Enabled: true},
		},
		Health:  checker,
		Metrics: collector,
		Version: Version{Version: "1.2.3"},
	})
	return srv.Handler()
}

func get(t *testing.T, h http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWhyEndpoint(t *testing.T) {
	gov := &fakeGovernance{}
	h := newTestServer(t, gov)

	rec := get(t, h, "/api/v1/kpis/nw/why?locale=ru-RU")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body)
	}
	var why explain.WhyThisNumber
	if err := json.NewDecoder(rec.Body).Decode(&why); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if why.KpiID != "nw" || why.Confidence != governance.ConfidenceHigh {
		t.Errorf("why = %+v", why)
	}
	if gov.lastLocale != governance.LocaleRU {
		t.Errorf("locale = %q, want ru", gov.lastLocale)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id header")
	}

	get(t, h, "/api/v1/kpis/nw/why", "Accept-Language", "uk-UA,uk;q=0.9")
	if gov.lastLocale != governance.LocaleUK {
		t.Errorf("Accept-Language locale = %q, want uk", gov.lastLocale)
	}

	get(t, h, "/api/v1/kpis/nw/why")
	if gov.lastLocale != "" {
		t.Errorf("default locale = %q, want empty", gov.lastLocale)
	}
}

func TestWhyEndpoint_Errors(t *testing.T) {
	h := newTestServer(t, &fakeGovernance{})

	rec := get(t, h, "/api/v1/kpis/unknown/why")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown metric status = %d, want 404", rec.Code)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Type != "not_found" {
		t.Errorf("error type = %q, want not_found", body.Error.Type)
	}

	rec = get(t, h, "/api/v1/kpis/panic/why")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("panicking handler status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("panic value leaked into the response")
	}
}

func TestRuleResultsEndpoint(t *testing.T) {
	gov := &fakeGovernance{}
	h := newTestServer(t, gov)

	rec := get(t, h, "/api/v1/rules/results")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var empty ruleResults
	if err := json.NewDecoder(rec.Body).Decode(&empty); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if empty.EvaluatedAt != nil || len(empty.Results) != 0 {
		t.Errorf("before evaluation = %+v, want empty", empty)
	}

	gov.eval = &runner.Evaluation{
		EvaluatedAt: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Results: []rules.Result{
			{RuleID: "r1", Triggered: true},
			{RuleID: "r2", Triggered: false},
		},
		Triggered: 1,
		Emitted:   1,
	}

	rec = get(t, h, "/api/v1/rules/results?triggered=true")
	var got ruleResults
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.EvaluatedAt == nil || *got.EvaluatedAt != "2026-06-30T00:00:00Z" {
		t.Errorf("evaluated_at = %v", got.EvaluatedAt)
	}
	if len(got.Results) != 1 || got.Results[0].RuleID != "r1" {
		t.Errorf("triggered results = %+v, want [r1]", got.Results)
	}
}

func TestRulesEndpoint(t *testing.T) {
	h := newTestServer(t, &fakeGovernance{})

	rec := get(t, h, "/api/v1/rules")
	var body struct {
		Count int               `json:"count"`
		Rules []governance.Rule `json:"rules"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || body.Rules[0].Name != "Low quality" {
		t.Errorf("rules = %+v", body)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	h := newTestServer(t, &fakeGovernance{})

	tests := []struct {
		path     string
		wantCode int
		contains string
	}{
		{"/health/live", http.StatusOK, `"ok"`},
		{"/health/ready", http.StatusOK, `"ready"`},
		{"/version", http.StatusOK, `"1.2.3"`},
		{"/metrics", http.StatusOK, "wealthos_governance_rules_loaded 2"},
		{"/nope", http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, h, tt.path)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.contains)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, &fakeGovernance{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rules", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestServerLifecycle(t *testing.T) {
	srv := NewServer(&config.ServerConfig{
		ListenAddress:   "127.0.0.1:0",
		ShutdownTimeout: 2 * time.Second,
	}, Deps{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !srv.IsRunning() {
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/version")
	if err != nil {
		t.Fatalf("GET /version: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}
