package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:9090"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Storage defaults
	DefaultCatalogBackend            = "sqlite"
	DefaultCatalogPath               = "data/catalog.db"
	DefaultCatalogCheckpointInterval = 5 * time.Minute
	DefaultSnapshotsBackend          = "sqlite"
	DefaultSnapshotsPath             = "data/snapshots.db"
	DefaultSnapshotsMaxOpenConns     = 10
	DefaultSnapshotsMaxIdleConns     = 5
	DefaultBusyTimeout               = 5 * time.Second

	// Retention defaults
	DefaultRetentionDays        = 365
	DefaultRetentionSchedule    = "0 3 * * *"
	DefaultRetentionArchivePath = "data/archives/"

	// Rules defaults
	DefaultRulesPath          = "./rules"
	DefaultRulesWatchDebounce = 100 * time.Millisecond
	DefaultEvaluationSchedule = "*/15 * * * *"

	// Quality and reconciliation defaults
	DefaultStaleDays          = 7
	DefaultScoreConcurrency   = 4
	DefaultTolerancePercent   = 0.01
	DefaultLocale             = "en"
	DefaultSignalsSink        = "log"
	DefaultSignalsAsyncBuffer = 256
	DefaultSignalsTimeout     = 5 * time.Second
	DefaultRedisStream        = "governance:exceptions"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "wealthos"
	DefaultMetricsSubsystem   = "governance"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingExporter    = "otlp"
	DefaultTracingService     = "wealthos-governance"
	DefaultOTLPTimeout        = 10 * time.Second
	DefaultLivenessPath       = "/health/live"
	DefaultReadinessPath      = "/health/ready"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// Defaults returns a configuration with every field at its default,
// including the boolean switches that default to true. LoadConfig decodes
// YAML on top of it so absent keys keep their defaults.
func Defaults() *Config {
	cfg := &Config{}
	cfg.Server.Enabled = true
	cfg.Storage.Snapshots.WALMode = true
	cfg.Signals.Dedupe = true
	cfg.Telemetry.Logging.RedactPII = true
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Tracing.OTLP.Insecure = true
	cfg.Telemetry.Health.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets defaults for any fields that have zero values.
// It is idempotent.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Storage
	if cfg.Storage.Catalog.Backend == "" {
		cfg.Storage.Catalog.Backend = DefaultCatalogBackend
	}
	if cfg.Storage.Catalog.Path == "" {
		cfg.Storage.Catalog.Path = DefaultCatalogPath
	}
	if cfg.Storage.Catalog.CheckpointInterval == 0 {
		cfg.Storage.Catalog.CheckpointInterval = DefaultCatalogCheckpointInterval
	}
	if cfg.Storage.Catalog.BusyTimeout == 0 {
		cfg.Storage.Catalog.BusyTimeout = DefaultBusyTimeout
	}
	if cfg.Storage.Snapshots.Backend == "" {
		cfg.Storage.Snapshots.Backend = DefaultSnapshotsBackend
	}
	if cfg.Storage.Snapshots.Path == "" {
		cfg.Storage.Snapshots.Path = DefaultSnapshotsPath
	}
	if cfg.Storage.Snapshots.MaxOpenConns == 0 {
		cfg.Storage.Snapshots.MaxOpenConns = DefaultSnapshotsMaxOpenConns
	}
	if cfg.Storage.Snapshots.MaxIdleConns == 0 {
		cfg.Storage.Snapshots.MaxIdleConns = DefaultSnapshotsMaxIdleConns
	}
	if cfg.Storage.Snapshots.BusyTimeout == 0 {
		cfg.Storage.Snapshots.BusyTimeout = DefaultBusyTimeout
	}

	// Retention
	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = DefaultRetentionDays
	}
	if cfg.Retention.PruneSchedule == "" {
		cfg.Retention.PruneSchedule = DefaultRetentionSchedule
	}
	if cfg.Retention.ArchivePath == "" {
		cfg.Retention.ArchivePath = DefaultRetentionArchivePath
	}

	// Rules
	if cfg.Rules.Path == "" {
		cfg.Rules.Path = DefaultRulesPath
	}
	if cfg.Rules.WatchDebounce == 0 {
		cfg.Rules.WatchDebounce = DefaultRulesWatchDebounce
	}
	if cfg.Rules.EvaluationSchedule == "" {
		cfg.Rules.EvaluationSchedule = DefaultEvaluationSchedule
	}

	if cfg.Quality.StaleDays == 0 {
		cfg.Quality.StaleDays = DefaultStaleDays
	}
	if cfg.Quality.Concurrency == 0 {
		cfg.Quality.Concurrency = DefaultScoreConcurrency
	}
	if cfg.Reconciliation.TolerancePercent == nil {
		tol := DefaultTolerancePercent
		cfg.Reconciliation.TolerancePercent = &tol
	}
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}

	// Signals
	if cfg.Signals.Sink == "" {
		cfg.Signals.Sink = DefaultSignalsSink
	}
	if cfg.Signals.AsyncBuffer == 0 {
		cfg.Signals.AsyncBuffer = DefaultSignalsAsyncBuffer
	}
	if cfg.Signals.WriteTimeout == 0 {
		cfg.Signals.WriteTimeout = DefaultSignalsTimeout
	}
	if cfg.Signals.Redis.Stream == "" {
		cfg.Signals.Redis.Stream = DefaultRedisStream
	}
	if cfg.Signals.Redis.DialTimeout == 0 {
		cfg.Signals.Redis.DialTimeout = DefaultSignalsTimeout
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
