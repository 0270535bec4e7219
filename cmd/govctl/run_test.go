package main

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"wealthos/governance/pkg/config"
	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/runner"
	"wealthos/governance/pkg/telemetry/metrics"
)

func TestStaleAfter(t *testing.T) {
	tests := []struct {
		schedule string
		want     time.Duration
		wantOK   bool
	}{
		{"*/5 * * * *", 15 * time.Minute, true},
		{"0 * * * *", 3 * time.Hour, true},
		{"@every 10m", 30 * time.Minute, true},
		{"", 0, false},
		{"not a schedule", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			got, ok := staleAfter(tt.schedule)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("staleAfter(%q) = %v, %v; want %v, %v", tt.schedule, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMeteredRulesPassesThrough(t *testing.T) {
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true}, prometheus.NewRegistry())
	src := runner.StaticRules{
		{Name: "a", RuleTypeKey: governance.RuleQualityThreshold},
		{Name: "b", RuleTypeKey: governance.RuleQualityThreshold},
	}

	got := meteredRules{src: src, metrics: collector}.Rules()
	if len(got) != 2 || got[0].Name != "a" {
		t.Errorf("Rules() = %+v", got)
	}
}

func TestRunCommandFlags(t *testing.T) {
	for _, name := range []string{"listen", "dry-run", "once"} {
		if runCmd.Flags().Lookup(name) == nil {
			t.Errorf("run command is missing --%s", name)
		}
	}
}

func TestRunOnce(t *testing.T) {
	useTestConfig(t)

	out, err := execute(t, "run", "--once", "--dry-run")
	if err != nil {
		t.Fatalf("run --once: %v", err)
	}
	for _, want := range []string{"✓ Configuration loaded", "✓ Stores opened", "✓ Run "} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}
