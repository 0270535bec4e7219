package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GOVERNANCE_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Keys absent from the file keep their defaults. The result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of Defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides named GOVERNANCE_SECTION_FIELD
// (e.g. GOVERNANCE_SERVER_LISTEN_ADDRESS). An empty path loads defaults only.
//
// The loading sequence is:
// 1. Load YAML from file over defaults
// 2. Apply environment variable overrides
// 3. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Defaults()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Server
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envBool("SERVER_ENABLED", &cfg.Server.Enabled)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Storage
	envString("STORAGE_CATALOG_BACKEND", &cfg.Storage.Catalog.Backend)
	envString("STORAGE_CATALOG_PATH", &cfg.Storage.Catalog.Path)
	envString("STORAGE_SNAPSHOTS_BACKEND", &cfg.Storage.Snapshots.Backend)
	envString("STORAGE_SNAPSHOTS_PATH", &cfg.Storage.Snapshots.Path)
	envBool("STORAGE_SNAPSHOTS_WAL_MODE", &cfg.Storage.Snapshots.WALMode)

	// Retention
	envInt("RETENTION_DAYS", &cfg.Retention.Days)
	envString("RETENTION_PRUNE_SCHEDULE", &cfg.Retention.PruneSchedule)
	envBool("RETENTION_ARCHIVE_BEFORE_DELETE", &cfg.Retention.ArchiveBeforeDelete)
	envString("RETENTION_ARCHIVE_PATH", &cfg.Retention.ArchivePath)
	if val := os.Getenv(EnvPrefix + "RETENTION_MAX_SNAPSHOTS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Retention.MaxSnapshots = i
		}
	}

	// Rules
	envString("RULES_PATH", &cfg.Rules.Path)
	envBool("RULES_WATCH", &cfg.Rules.Watch)
	envString("RULES_EVALUATION_SCHEDULE", &cfg.Rules.EvaluationSchedule)

	envInt("QUALITY_STALE_DAYS", &cfg.Quality.StaleDays)
	envInt("QUALITY_CONCURRENCY", &cfg.Quality.Concurrency)
	if val := os.Getenv(EnvPrefix + "RECONCILIATION_TOLERANCE_PERCENT"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Reconciliation.TolerancePercent = &f
		}
	}
	envString("LOCALE", &cfg.Locale)

	// Signals
	envString("SIGNALS_SINK", &cfg.Signals.Sink)
	envBool("SIGNALS_DEDUPE", &cfg.Signals.Dedupe)
	envString("SIGNALS_REDIS_URL", &cfg.Signals.Redis.URL)
	envString("SIGNALS_REDIS_STREAM", &cfg.Signals.Redis.Stream)

	// Telemetry
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

func envString(key string, dst *string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
