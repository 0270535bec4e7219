package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"wealthos/governance/pkg/governance"
)

const validDoc = `
rules:
  - id: nw-quality
    name: Net worth quality floor
    rule_type: quality_threshold
    enabled: true
    applies_to:
      domains: [netWorth]
    config:
      threshold: 60
      severity: high
      auto_emit_exception: true
      exception_category: data_quality
  - id: stale
    name: Stale metrics
    rule_type: stale_threshold
    enabled: false
    applies_to:
      all_kpis: true
    config:
      days: 5
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

func TestParse_Valid(t *testing.T) {
	rules, err := Parse("rules.yaml", []byte(validDoc))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("len(rules) = %d, want 2", len(rules))
	}

	r := rules[0]
	if r.ID != "nw-quality" || r.RuleTypeKey != governance.RuleQualityThreshold || !r.Enabled {
		t.Errorf("rules[0] = %+v", r)
	}
	if r.Config.Threshold != 60 || r.Config.Severity != governance.SeverityHigh || !r.Config.AutoEmitException {
		t.Errorf("rules[0].Config = %+v", r.Config)
	}
	if len(r.AppliesTo.Domains) != 1 || r.AppliesTo.Domains[0] != governance.DomainNetWorth {
		t.Errorf("rules[0].AppliesTo = %+v", r.AppliesTo)
	}
	if !rules[1].AppliesTo.AllKpis || rules[1].Config.Days != 5 || rules[1].Enabled {
		t.Errorf("rules[1] = %+v", rules[1])
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "rules: [\n"},
		{"missing id", "rules:\n  - rule_type: stale_threshold\n"},
		{"unknown type", "rules:\n  - id: a\n    rule_type: nope\n"},
		{"duplicate id", "rules:\n  - id: a\n    rule_type: stale_threshold\n  - id: a\n    rule_type: stale_threshold\n"},
		{"bad domain", "rules:\n  - id: a\n    rule_type: stale_threshold\n    applies_to:\n      domains: [crypto]\n"},
		{"bad severity", "rules:\n  - id: a\n    rule_type: stale_threshold\n    config:\n      severity: urgent\n"},
		{"threshold range", "rules:\n  - id: a\n    rule_type: quality_threshold\n    config:\n      threshold: 120\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("x.yaml", []byte(tt.doc))
			var pErr *ParseError
			if !errors.As(err, &pErr) {
				t.Errorf("Parse() error = %v, want *ParseError", err)
			}
		})
	}
}

func TestLoadDirectory_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", validDoc)
	writeFile(t, dir, "b.yml", "rules:\n  - id: other\n    rule_type: recon_threshold\n    enabled: true\n")
	writeFile(t, dir, "c.yaml", "rules:\n  - id: stale\n    rule_type: stale_threshold\n")
	writeFile(t, dir, "d.yaml", "rules: [")
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, ".hidden.yaml", "rules: [")

	rules, err := Load(dir)
	if len(rules) != 3 {
		t.Fatalf("len(rules) = %d, want 3", len(rules))
	}
	var list *ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("Load() error = %v, want *ErrorList", err)
	}
	if len(list.Errors) != 2 {
		t.Errorf("len(Errors) = %d, want 2 (duplicate id and bad yaml): %v", len(list.Errors), list)
	}
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var lErr *LoadError
	if !errors.As(err, &lErr) {
		t.Errorf("Load() error = %v, want *LoadError", err)
	}
}

func TestRegistry_ReloadKeepsPreviousOnFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", validDoc)

	reg, err := NewRegistry(path, nil)
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}
	if reg.Version() != 1 || len(reg.Rules()) != 2 {
		t.Fatalf("version=%d rules=%d", reg.Version(), len(reg.Rules()))
	}

	writeFile(t, filepath.Dir(path), "rules.yaml", "rules: [")
	if err := reg.Reload(); err == nil {
		t.Fatal("Reload() succeeded on invalid file")
	}
	if reg.Version() != 1 || len(reg.Rules()) != 2 {
		t.Errorf("failed reload replaced rules: version=%d rules=%d", reg.Version(), len(reg.Rules()))
	}
}

func TestDebouncer_CollapsesBursts(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	}
	time.Sleep(150 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var calls int32
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("calls = %d, want 0", got)
	}
}

func TestRegistry_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules.yaml", validDoc)

	reg, err := NewRegistry(dir, nil)
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reg.Watch(ctx, 20*time.Millisecond) }()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "more.yaml", "rules:\n  - id: extra\n    rule_type: recon_threshold\n")

	deadline := time.Now().Add(5 * time.Second)
	for reg.Version() < 2 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	if len(reg.Rules()) != 3 {
		t.Errorf("len(Rules()) = %d after reload, want 3", len(reg.Rules()))
	}
}
