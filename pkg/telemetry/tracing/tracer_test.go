package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"wealthos/governance/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordingTracer() (*Tracer, *tracetest.SpanRecorder) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return NewWithProvider(tp), sr
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tracer.Enabled() {
		t.Error("expected disabled tracer")
	}

	ctx, span := tracer.Start(context.Background(), "op")
	span.End()
	if TraceID(ctx) != "" {
		t.Error("noop tracer produced a trace ID")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(nil, "test"); err == nil {
		t.Error("expected error for nil config")
	}

	cfg := &config.TracingConfig{Enabled: true, Sampler: "sometimes", Exporter: "otlp"}
	if _, err := New(cfg, "test"); err == nil {
		t.Error("expected sampler error")
	}

	cfg = &config.TracingConfig{Enabled: true, Sampler: "always", Exporter: "zipkin"}
	if _, err := New(cfg, "test"); err == nil {
		t.Error("expected exporter error")
	}
}

func TestNilTracer(t *testing.T) {
	var tracer *Tracer
	_, span := tracer.Start(context.Background(), "op")
	span.End()
	if tracer.Enabled() {
		t.Error("nil tracer reported enabled")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{SamplerAlways, 0, false},
		{SamplerNever, 0, false},
		{SamplerRatio, 0.5, false},
		{SamplerRatio, 1.5, true},
		{"sometimes", 0, true},
	}

	for _, tt := range tests {
		_, err := createSampler(tt.strategy, tt.ratio)
		if (err != nil) != tt.wantErr {
			t.Errorf("createSampler(%q, %v) error = %v, wantErr %v", tt.strategy, tt.ratio, err, tt.wantErr)
		}
	}
}

func TestEnd(t *testing.T) {
	tracer, sr := recordingTracer()

	_, span := tracer.Start(context.Background(), "ok")
	End(span, nil)
	_, span = tracer.Start(context.Background(), "failed")
	End(span, errors.New("boom"))

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("expected Ok status, got %v", spans[0].Status())
	}
	if spans[1].Status().Code != codes.Error || len(spans[1].Events()) == 0 {
		t.Errorf("expected recorded error, got %v", spans[1].Status())
	}
}

func TestAttributes(t *testing.T) {
	tracer, sr := recordingTracer()

	_, span := tracer.Start(context.Background(), "score")
	SetKpiAttributes(span, "aum", "netWorth")
	SetQualityAttributes(span, "kpi", "aum", 88, 12)
	SetReconAttributes(span, "cash_bank", "ok", 0.001)
	SetRuleAttributes(span, 5, 1)
	SetOverrideAttributes(span, "o1", "applied")
	span.End()

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range sr.Ended()[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrKpiID].AsString() != "aum" {
		t.Errorf("kpi id = %v", attrs[AttrKpiID])
	}
	if attrs[AttrQualityScore].AsInt64() != 88 {
		t.Errorf("score = %v", attrs[AttrQualityScore])
	}
	if attrs[AttrRuleTriggers].AsInt64() != 1 {
		t.Errorf("triggered = %v", attrs[AttrRuleTriggers])
	}
	if attrs[AttrOverrideTo].AsString() != "applied" {
		t.Errorf("override status = %v", attrs[AttrOverrideTo])
	}
}

func TestHTTPMiddleware(t *testing.T) {
	tracer, sr := recordingTracer()

	var seen string
	h := HTTPMiddleware(tracer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TraceID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil))

	if seen == "" {
		t.Fatal("handler saw no trace ID")
	}
	if rec.Header().Get("X-Trace-ID") != seen {
		t.Errorf("X-Trace-ID = %q, want %q", rec.Header().Get("X-Trace-ID"), seen)
	}
	if len(sr.Ended()) != 1 || sr.Ended()[0].Name() != "GET /api/v1/rules" {
		t.Errorf("unexpected spans %v", sr.Ended())
	}
}

func TestInjectToMap(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tracer, _ := recordingTracer()
	ctx, span := tracer.Start(context.Background(), "op")
	defer span.End()

	carrier := map[string]string{}
	InjectToMap(ctx, carrier)
	if carrier["traceparent"] == "" {
		t.Errorf("expected traceparent, got %v", carrier)
	}
}
