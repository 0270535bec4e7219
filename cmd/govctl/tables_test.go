package main

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/explain"
	"wealthos/governance/pkg/governance/lineage"
)

func TestReconTableCountsBreaks(t *testing.T) {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.FixedZone("EEST", 3*3600))
	rows := reconTable{{
		Envelope:     governance.Envelope{ID: "r1"},
		ReconTypeKey: governance.ReconCashBank,
		StatusKey:    governance.ReconBreak,
		Left:         governance.ReconSource{Value: 1000.5},
		Right:        governance.ReconSource{Value: 990},
		DeltaValue:   governance.ReconDelta{Amount: 10.5, Percent: 1.05},
		Breakdown: []governance.BreakdownItem{
			{Category: "USD", Status: governance.ReconBreak},
			{Category: "EUR", Status: governance.ReconOK},
			{Category: "UAH", Status: governance.ReconBreak},
		},
		AsOf: asOf,
	}}.Rows()

	want := []string{"r1", "cash_bank", "break", "1000.5", "990", "10.5", "1.05", "2", "2026-06-29T21:00:00Z"}
	if !reflect.DeepEqual(rows[0], want) {
		t.Errorf("row = %v, want %v", rows[0], want)
	}
}

func TestRuleTableDefaultsSeverity(t *testing.T) {
	rows := ruleTable{{
		Envelope:    governance.Envelope{ID: "rule-1"},
		Name:        "Stale prices",
		RuleTypeKey: governance.RuleQualityThreshold,
		Enabled:     true,
	}}.Rows()

	if got := rows[0][4]; got != string(governance.SeverityMedium) {
		t.Errorf("severity = %q, want %q", got, governance.SeverityMedium)
	}
}

func TestGraphTableEdges(t *testing.T) {
	g := graphTable{
		Nodes: []lineage.Node{
			{ID: "in-0", Kind: lineage.NodeInput, Label: "accounts"},
			{ID: "tx-1", Kind: lineage.NodeTransform, Label: "Sum balances"},
			{ID: "out-0", Kind: lineage.NodeOutput, Label: "net_worth"},
		},
		Edges: []lineage.Edge{
			{From: "in-0", To: "tx-1"},
			{From: "tx-1", To: "out-0"},
		},
	}

	want := [][]string{
		{"accounts", "input", "Sum balances", "transform"},
		{"Sum balances", "transform", "net_worth", "output"},
	}
	if got := g.Rows(); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
}

func TestWhyViewString(t *testing.T) {
	v := whyView{&explain.WhyThisNumber{
		KpiID:           "net_worth",
		Name:            "Net worth",
		Value:           &governance.MetricValue{Value: 125000, Currency: "USD"},
		FormulaText:     "assets - liabilities",
		TrustBadge:      governance.TrustVerified,
		ConfidenceLabel: "High",
		Transforms: []governance.LineageTransform{
			{StepNo: 1, Title: "Convert to USD"},
			{StepNo: 2, Title: "Sum balances"},
		},
		Assumptions: []string{"FX rates as of close"},
	}}

	s := v.String()
	for _, want := range []string{
		"Net worth (net_worth)",
		"Value:       125000 USD",
		"Formula:     assets - liabilities",
		"1. Convert to USD",
		"2. Sum balances",
		"- FX rates as of close",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("report does not contain %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "Overrides:") {
		t.Error("report lists overrides section without overrides")
	}
	if strings.HasSuffix(s, "\n") {
		t.Error("report has trailing newline")
	}
}
