package config

import "time"

// Config is the root configuration of the governance engine.
type Config struct {
	// Server configures the read-only admin HTTP server.
	Server ServerConfig `yaml:"server"`

	// Storage selects the catalog and snapshot log backends.
	Storage StorageConfig `yaml:"storage"`

	// Retention controls pruning of old snapshots.
	Retention RetentionConfig `yaml:"retention"`

	// Rules points at the rule definition files and the evaluation schedule.
	Rules RulesConfig `yaml:"rules"`

	// Quality tunes quality scoring and trust badges.
	Quality QualityConfig `yaml:"quality"`

	// Reconciliation tunes reconciliation.
	Reconciliation ReconciliationConfig `yaml:"reconciliation"`

	// Signals configures the exception-queue handoff.
	Signals SignalsConfig `yaml:"signals"`

	// Locale is the default locale for labels and summaries.
	// Options: "en", "ru", "uk"
	// Default: "en"
	Locale string `yaml:"locale"`

	// Telemetry contains logging, metrics, tracing and health settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the admin HTTP server.
type ServerConfig struct {
	// Enabled starts the admin server with `govctl run`.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the server binds to.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig contains the persistence backends.
type StorageConfig struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Snapshots SnapshotsConfig `yaml:"snapshots"`
}

// CatalogConfig configures the document catalog (metrics, lineage,
// overrides, source collections).
type CatalogConfig struct {
	// Backend is "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the catalog database file.
	// Default: "data/catalog.db"
	Path string `yaml:"path"`

	// CheckpointInterval is how often the WAL is checkpointed.
	// Default: 5m
	CheckpointInterval time.Duration `yaml:"checkpoint_interval"`

	// BusyTimeout is how long to wait for locks.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// SnapshotsConfig configures the append-only snapshot log.
type SnapshotsConfig struct {
	// Backend is "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the snapshot database file.
	// Default: "data/snapshots.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait for locks.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains snapshot retention settings.
type RetentionConfig struct {
	// Days is the number of days to keep snapshots. 0 keeps them forever.
	// Default: 365
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`

	// ArchiveBeforeDelete writes pruned snapshots to ArchivePath.
	// Default: false
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the archive directory.
	// Default: "data/archives/"
	ArchivePath string `yaml:"archive_path"`

	// MaxSnapshots caps each snapshot kind. 0 means unlimited.
	// Default: 0
	MaxSnapshots int64 `yaml:"max_snapshots"`
}

// RulesConfig contains rule loading and evaluation settings.
type RulesConfig struct {
	// Path is a rule file or a directory of *.yaml rule files.
	// Default: "./rules"
	Path string `yaml:"path"`

	// Watch reloads rules when the files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce collapses bursts of file events.
	// Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// EvaluationSchedule is the cron expression for full governance runs.
	// Empty disables scheduled runs.
	// Default: "*/15 * * * *"
	EvaluationSchedule string `yaml:"evaluation_schedule"`
}

// QualityConfig tunes quality scoring.
type QualityConfig struct {
	// StaleDays is the age after which a metric's trust badge is stale.
	// Default: 7
	StaleDays int `yaml:"stale_days"`

	// Concurrency bounds concurrent metric scoring.
	// Default: 4
	Concurrency int `yaml:"concurrency"`
}

// ReconciliationConfig tunes reconciliation.
type ReconciliationConfig struct {
	// TolerancePercent is the largest delta percent treated as a match.
	// An explicit 0 demands exact agreement.
	// Default: 0.01
	TolerancePercent *float64 `yaml:"tolerance_percent"`
}

// SignalsConfig configures exception signal delivery.
type SignalsConfig struct {
	// Sink is "log", "memory" or "redis".
	// Default: "log"
	Sink string `yaml:"sink"`

	// AsyncBuffer is the size of the send queue.
	// Default: 256
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds each delivery.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Dedupe drops signals already emitted by this process.
	// Default: true
	Dedupe bool `yaml:"dedupe"`

	// Redis configures the redis sink.
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the Redis stream sink.
type RedisConfig struct {
	// URL is a redis:// URL.
	URL string `yaml:"url"`

	// Stream is the stream key.
	// Default: "governance:exceptions"
	Stream string `yaml:"stream"`

	// MaxLen approximately caps the stream length. 0 means uncapped.
	MaxLen int64 `yaml:"max_len"`

	// DialTimeout bounds connection setup.
	// Default: 5s
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Health  HealthConfig  `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII masks account numbers, IBANs and emails in log attributes.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains additional redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "wealthos"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "governance"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for operation durations
	// in seconds.
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler is "always", "never" or "ratio".
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces sampled with the ratio sampler.
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter is the trace exporter. Only "otlp" is supported.
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "wealthos-governance"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health endpoints are served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the liveness probe path.
	// Default: "/health/live"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the readiness probe path.
	// Default: "/health/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout bounds each component check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
