package config

import (
	"reflect"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
	}
	if !cfg.Server.Enabled {
		t.Error("expected server enabled by default")
	}
	if cfg.Storage.Snapshots.Path != DefaultSnapshotsPath {
		t.Errorf("expected snapshots path %q, got %q", DefaultSnapshotsPath, cfg.Storage.Snapshots.Path)
	}
	if !cfg.Storage.Snapshots.WALMode {
		t.Error("expected WAL mode by default")
	}
	if cfg.Retention.Days != DefaultRetentionDays {
		t.Errorf("expected retention %d, got %d", DefaultRetentionDays, cfg.Retention.Days)
	}
	if cfg.Reconciliation.TolerancePercent == nil || *cfg.Reconciliation.TolerancePercent != DefaultTolerancePercent {
		t.Errorf("expected tolerance %v, got %v", DefaultTolerancePercent, cfg.Reconciliation.TolerancePercent)
	}
	if !cfg.Signals.Dedupe {
		t.Error("expected dedupe by default")
	}
	if cfg.Telemetry.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("expected namespace %q, got %q", DefaultMetricsNamespace, cfg.Telemetry.Metrics.Namespace)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	zero := 0.0
	cfg := &Config{
		Locale:         "uk",
		Quality:        QualityConfig{StaleDays: 2},
		Reconciliation: ReconciliationConfig{TolerancePercent: &zero},
	}
	ApplyDefaults(cfg)

	if cfg.Locale != "uk" {
		t.Errorf("expected locale uk, got %q", cfg.Locale)
	}
	if cfg.Quality.StaleDays != 2 {
		t.Errorf("expected stale days 2, got %d", cfg.Quality.StaleDays)
	}
	if *cfg.Reconciliation.TolerancePercent != 0 {
		t.Errorf("explicit zero tolerance was replaced with %v", *cfg.Reconciliation.TolerancePercent)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	firstTol := *cfg.Reconciliation.TolerancePercent

	ApplyDefaults(cfg)
	if *cfg.Reconciliation.TolerancePercent != firstTol {
		t.Error("tolerance changed on second pass")
	}
	first.Reconciliation = cfg.Reconciliation
	if !reflect.DeepEqual(first, *cfg) {
		t.Error("ApplyDefaults is not idempotent")
	}
}
