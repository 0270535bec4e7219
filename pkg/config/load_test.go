package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:8081"
storage:
  catalog:
    backend: memory
  snapshots:
    backend: memory
    wal_mode: false
rules:
  path: "./governance-rules"
  watch: true
reconciliation:
  tolerance_percent: 0
signals:
  sink: redis
  redis:
    url: "redis://localhost:6379/0"
locale: ru
telemetry:
  logging:
    level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:8081" {
		t.Errorf("expected listen address from file, got %q", cfg.Server.ListenAddress)
	}
	if !cfg.Server.Enabled {
		t.Error("absent server.enabled should keep its default")
	}
	if cfg.Storage.Snapshots.WALMode {
		t.Error("expected wal_mode false from file")
	}
	if !cfg.Rules.Watch || cfg.Rules.Path != "./governance-rules" {
		t.Errorf("unexpected rules config %+v", cfg.Rules)
	}
	if cfg.Reconciliation.TolerancePercent == nil || *cfg.Reconciliation.TolerancePercent != 0 {
		t.Errorf("expected explicit zero tolerance, got %v", cfg.Reconciliation.TolerancePercent)
	}
	if cfg.Signals.Redis.Stream != DefaultRedisStream {
		t.Errorf("expected default stream, got %q", cfg.Signals.Redis.Stream)
	}
	if cfg.Locale != "ru" {
		t.Errorf("expected locale ru, got %q", cfg.Locale)
	}
	if cfg.Telemetry.Logging.Format != DefaultLoggingFormat {
		t.Errorf("expected default format, got %q", cfg.Telemetry.Logging.Format)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
signals:
  sink: kafka
locale: de
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:9000"
`)

	t.Setenv("GOVERNANCE_SERVER_LISTEN_ADDRESS", "0.0.0.0:9999")
	t.Setenv("GOVERNANCE_SERVER_READ_TIMEOUT", "3s")
	t.Setenv("GOVERNANCE_RETENTION_DAYS", "30")
	t.Setenv("GOVERNANCE_RETENTION_MAX_SNAPSHOTS", "500")
	t.Setenv("GOVERNANCE_SIGNALS_DEDUPE", "false")
	t.Setenv("GOVERNANCE_RECONCILIATION_TOLERANCE_PERCENT", "0.5")
	t.Setenv("GOVERNANCE_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9999" {
		t.Errorf("expected listen address from env, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("expected read timeout 3s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Retention.Days != 30 || cfg.Retention.MaxSnapshots != 500 {
		t.Errorf("unexpected retention %+v", cfg.Retention)
	}
	if cfg.Signals.Dedupe {
		t.Error("expected dedupe disabled from env")
	}
	if *cfg.Reconciliation.TolerancePercent != 0.5 {
		t.Errorf("expected tolerance 0.5, got %v", *cfg.Reconciliation.TolerancePercent)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected level warn, got %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("GOVERNANCE_RETENTION_DAYS", "many")
	t.Setenv("GOVERNANCE_SERVER_READ_TIMEOUT", "soon")
	t.Setenv("GOVERNANCE_RULES_WATCH", "maybe")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Retention.Days != DefaultRetentionDays {
		t.Errorf("expected default retention, got %d", cfg.Retention.Days)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("expected default read timeout, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Rules.Watch {
		t.Error("expected watch to stay false")
	}
}

func TestLoadConfigWithEnvOverrides_RevalidatesAfterOverride(t *testing.T) {
	t.Setenv("GOVERNANCE_SIGNALS_SINK", "redis")
	if _, err := LoadConfigWithEnvOverrides(""); err == nil {
		t.Fatal("expected error: redis sink without url")
	}
}
