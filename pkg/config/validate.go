package config

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// collecting every failed rule, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateEngine(cfg)...)
	errs = append(errs, validateSignals(&cfg.Signals)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError
	if !cfg.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid address %q: %v", cfg.ListenAddress, err),
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "must not be negative"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "must not be negative"})
	}
	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError
	backends := map[string]bool{"sqlite": true, "memory": true}

	if !backends[cfg.Catalog.Backend] {
		errs = append(errs, FieldError{
			Field:   "storage.catalog.backend",
			Message: fmt.Sprintf("unsupported backend %q (must be sqlite or memory)", cfg.Catalog.Backend),
		})
	}
	if cfg.Catalog.Backend == "sqlite" && cfg.Catalog.Path == "" {
		errs = append(errs, FieldError{Field: "storage.catalog.path", Message: "required for sqlite backend"})
	}

	if !backends[cfg.Snapshots.Backend] {
		errs = append(errs, FieldError{
			Field:   "storage.snapshots.backend",
			Message: fmt.Sprintf("unsupported backend %q (must be sqlite or memory)", cfg.Snapshots.Backend),
		})
	}
	if cfg.Snapshots.Backend == "sqlite" && cfg.Snapshots.Path == "" {
		errs = append(errs, FieldError{Field: "storage.snapshots.path", Message: "required for sqlite backend"})
	}
	if cfg.Snapshots.MaxIdleConns > cfg.Snapshots.MaxOpenConns {
		errs = append(errs, FieldError{
			Field:   "storage.snapshots.max_idle_conns",
			Message: "must not exceed max_open_conns",
		})
	}
	return errs
}

func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError
	if cfg.Days < 0 {
		errs = append(errs, FieldError{Field: "retention.days", Message: "must not be negative"})
	}
	if cfg.MaxSnapshots < 0 {
		errs = append(errs, FieldError{Field: "retention.max_snapshots", Message: "must not be negative"})
	}
	if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "retention.prune_schedule",
			Message: fmt.Sprintf("invalid cron expression: %v", err),
		})
	}
	if cfg.ArchiveBeforeDelete && cfg.ArchivePath == "" {
		errs = append(errs, FieldError{Field: "retention.archive_path", Message: "required when archive_before_delete is set"})
	}
	return errs
}

func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError
	if cfg.Path == "" {
		errs = append(errs, FieldError{Field: "rules.path", Message: "required"})
	}
	if cfg.WatchDebounce < 0 {
		errs = append(errs, FieldError{Field: "rules.watch_debounce", Message: "must not be negative"})
	}
	if cfg.EvaluationSchedule != "" {
		if _, err := cron.ParseStandard(cfg.EvaluationSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "rules.evaluation_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}
	return errs
}

func validateEngine(cfg *Config) []FieldError {
	var errs []FieldError
	if cfg.Quality.StaleDays < 0 {
		errs = append(errs, FieldError{Field: "quality.stale_days", Message: "must not be negative"})
	}
	if cfg.Quality.Concurrency < 1 {
		errs = append(errs, FieldError{Field: "quality.concurrency", Message: "must be at least 1"})
	}
	if tol := cfg.Reconciliation.TolerancePercent; tol != nil && *tol < 0 {
		errs = append(errs, FieldError{Field: "reconciliation.tolerance_percent", Message: "must not be negative"})
	}
	switch cfg.Locale {
	case "en", "ru", "uk":
	default:
		errs = append(errs, FieldError{
			Field:   "locale",
			Message: fmt.Sprintf("unsupported locale %q (must be en, ru or uk)", cfg.Locale),
		})
	}
	return errs
}

func validateSignals(cfg *SignalsConfig) []FieldError {
	var errs []FieldError
	switch cfg.Sink {
	case "log", "memory":
	case "redis":
		if cfg.Redis.URL == "" {
			errs = append(errs, FieldError{Field: "signals.redis.url", Message: "required for redis sink"})
		} else if u, err := url.Parse(cfg.Redis.URL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errs = append(errs, FieldError{Field: "signals.redis.url", Message: "must be a redis:// or rediss:// URL"})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "signals.sink",
			Message: fmt.Sprintf("unsupported sink %q (must be log, memory or redis)", cfg.Sink),
		})
	}
	if cfg.AsyncBuffer < 1 {
		errs = append(errs, FieldError{Field: "signals.async_buffer", Message: "must be at least 1"})
	}
	if cfg.Redis.MaxLen < 0 {
		errs = append(errs, FieldError{Field: "signals.redis.max_len", Message: "must not be negative"})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q (must be debug, info, warn or error)", cfg.Logging.Level),
		})
	}
	switch cfg.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q (must be json, text or console)", cfg.Logging.Format),
		})
	}
	for i, p := range cfg.Logging.RedactPatterns {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "must start with /"})
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q (must be always, never or ratio)", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "must be between 0 and 1"})
		}
		if cfg.Tracing.Exporter != "otlp" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.exporter",
				Message: fmt.Sprintf("unsupported exporter %q (must be otlp)", cfg.Tracing.Exporter),
			})
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "required when tracing is enabled"})
		}
	}

	if cfg.Health.Enabled {
		if !strings.HasPrefix(cfg.Health.LivenessPath, "/") {
			errs = append(errs, FieldError{Field: "telemetry.health.liveness_path", Message: "must start with /"})
		}
		if !strings.HasPrefix(cfg.Health.ReadinessPath, "/") {
			errs = append(errs, FieldError{Field: "telemetry.health.readiness_path", Message: "must start with /"})
		}
	}
	return errs
}
