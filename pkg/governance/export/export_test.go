package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/rules"
)

func sampleScores() []*governance.QualityScore {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []*governance.QualityScore{
		{
			Envelope:   governance.Envelope{ID: "qs-1"},
			ScopeKey:   governance.ScopeKpi,
			ScopeID:    "kpi-1",
			ScoreTotal: 64,
			AsOf:       at,
			ComputedAt: at,
			Details:    &governance.QualityDetails{MissingFields: []string{"value", "currency"}, StaleRecordsCount: 2},
		},
	}
}

func TestJSONExporter_QualityScores(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(false).QualityScores(context.Background(), sampleScores(), &buf); err != nil {
		t.Fatalf("QualityScores() error = %v", err)
	}

	var decoded []governance.QualityScore
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ScoreTotal != 64 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestJSONExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(false).Reconciliations(context.Background(), nil, &buf); err != nil {
		t.Fatalf("Reconciliations() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty export = %q, want []", got)
	}
}

func TestCSVExporter_QualityScores(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(true).QualityScores(context.Background(), sampleScores(), &buf); err != nil {
		t.Fatalf("QualityScores() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(records))
	}
	if records[0][0] != "id" || records[1][0] != "qs-1" {
		t.Errorf("unexpected rows: %v", records)
	}
	if records[1][11] != "value;currency" || records[1][12] != "2" {
		t.Errorf("details not flattened: %v", records[1])
	}
}

func TestCSVExporter_RuleResults(t *testing.T) {
	results := []rules.Result{{
		RuleID:      "r1",
		RuleName:    "Low quality",
		Type:        governance.RuleQualityThreshold,
		Triggered:   true,
		Severity:    governance.SeverityHigh,
		AffectedIDs: []string{"a", "b"},
		Message:     "2 records below threshold",
	}}

	var buf bytes.Buffer
	if err := NewCSVExporter(false).RuleResults(context.Background(), results, &buf); err != nil {
		t.Fatalf("RuleResults() error = %v", err)
	}
	records, _ := csv.NewReader(&buf).ReadAll()
	if len(records) != 1 || records[0][3] != "true" || records[0][7] != "a;b" {
		t.Errorf("rows = %v", records)
	}
}

func TestNew(t *testing.T) {
	if _, err := New("json"); err != nil {
		t.Errorf("New(json) error = %v", err)
	}
	if _, err := New("csv"); err != nil {
		t.Errorf("New(csv) error = %v", err)
	}
	_, err := New("xml")
	var exportErr *governance.ExportError
	if !errors.As(err, &exportErr) {
		t.Errorf("New(xml) error = %v, want *ExportError", err)
	}
}
