package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(Defaults()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	negative := -1.0

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad listen address", func(c *Config) { c.Server.ListenAddress = "nope" }, "server.listen_address"},
		{"catalog backend", func(c *Config) { c.Storage.Catalog.Backend = "postgres" }, "storage.catalog.backend"},
		{"snapshot path", func(c *Config) { c.Storage.Snapshots.Path = "" }, "storage.snapshots.path"},
		{"idle over open", func(c *Config) { c.Storage.Snapshots.MaxIdleConns = 50 }, "storage.snapshots.max_idle_conns"},
		{"negative retention", func(c *Config) { c.Retention.Days = -1 }, "retention.days"},
		{"bad prune cron", func(c *Config) { c.Retention.PruneSchedule = "every day" }, "retention.prune_schedule"},
		{"archive path", func(c *Config) {
			c.Retention.ArchiveBeforeDelete = true
			c.Retention.ArchivePath = ""
		}, "retention.archive_path"},
		{"bad evaluation cron", func(c *Config) { c.Rules.EvaluationSchedule = "* *" }, "rules.evaluation_schedule"},
		{"concurrency", func(c *Config) { c.Quality.Concurrency = 0 }, "quality.concurrency"},
		{"negative tolerance", func(c *Config) { c.Reconciliation.TolerancePercent = &negative }, "reconciliation.tolerance_percent"},
		{"locale", func(c *Config) { c.Locale = "fr" }, "locale"},
		{"sink", func(c *Config) { c.Signals.Sink = "kafka" }, "signals.sink"},
		{"redis url scheme", func(c *Config) {
			c.Signals.Sink = "redis"
			c.Signals.Redis.URL = "http://localhost"
		}, "signals.redis.url"},
		{"log level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"redact pattern", func(c *Config) {
			c.Telemetry.Logging.RedactPatterns = []RedactPattern{{Name: "bad", Pattern: "(["}}
		}, "telemetry.logging.redact_patterns[0].pattern"},
		{"metrics path", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
		{"tracing endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "telemetry.tracing.endpoint"},
		{"sample ratio", func(c *Config) {
			c.Telemetry.Tracing.Enabled = true
			c.Telemetry.Tracing.Endpoint = "localhost:4317"
			c.Telemetry.Tracing.SampleRatio = 2
		}, "telemetry.tracing.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestValidate_DisabledServerSkipsAddress(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Enabled = false
	cfg.Server.ListenAddress = "nope"
	if err := Validate(cfg); err != nil {
		t.Errorf("expected no error for disabled server, got %v", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "locale", Message: "bad"}}}
	if single.Error() != "configuration validation failed: locale: bad" {
		t.Errorf("unexpected message %q", single.Error())
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}}
	if !strings.Contains(multi.Error(), "2 errors") {
		t.Errorf("unexpected message %q", multi.Error())
	}
}
