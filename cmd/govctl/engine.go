package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"wealthos/governance/pkg/config"
	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/retention"
	"wealthos/governance/pkg/governance/runner"
	"wealthos/governance/pkg/governance/signals"
	"wealthos/governance/pkg/governance/storage"
	"wealthos/governance/pkg/telemetry/metrics"
	"wealthos/governance/pkg/telemetry/tracing"
)

// engineOptions selects the optional collaborators of an engine.
type engineOptions struct {
	Rules    runner.RuleSource
	Recorder *signals.Recorder
	Metrics  *metrics.Collector
	Tracer   *tracing.Tracer
}

// engine bundles the stores and runner used by one command invocation.
type engine struct {
	cfg       *config.Config
	logger    *slog.Logger
	catalog   governance.Catalog
	snapshots governance.SnapshotStore
	runner    *runner.Runner
}

// openEngine loads configuration, installs logging and opens both stores.
// Callers must Close the engine.
func openEngine(opts engineOptions) (*engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := setupLogging(cfg)
	if err != nil {
		return nil, err
	}

	catalog, err := openCatalog(&cfg.Storage.Catalog)
	if err != nil {
		return nil, err
	}
	snapshots, err := openSnapshots(&cfg.Storage.Snapshots)
	if err != nil {
		catalog.Close()
		return nil, err
	}

	r, err := runner.New(runner.Deps{
		Catalog:   catalog,
		Snapshots: snapshots,
		Rules:     opts.Rules,
		Recorder:  opts.Recorder,
		Metrics:   opts.Metrics,
		Tracer:    opts.Tracer,
		Logger:    logger.With("component", "governance.runner"),
	}, runner.ConfigFrom(cfg))
	if err != nil {
		catalog.Close()
		snapshots.Close()
		return nil, err
	}

	return &engine{
		cfg:       cfg,
		logger:    logger,
		catalog:   catalog,
		snapshots: snapshots,
		runner:    r,
	}, nil
}

// Close releases both stores.
func (e *engine) Close() error {
	return errors.Join(e.catalog.Close(), e.snapshots.Close())
}

func openCatalog(cfg *config.CatalogConfig) (governance.Catalog, error) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemoryCatalog(), nil
	case "sqlite":
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}
		return storage.NewSQLiteCatalog(storage.SQLiteCatalogConfig{
			Path:               cfg.Path,
			CheckpointInterval: cfg.CheckpointInterval,
			BusyTimeout:        cfg.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported catalog backend: %s", cfg.Backend)
	}
}

func openSnapshots(cfg *config.SnapshotsConfig) (governance.SnapshotStore, error) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemorySnapshotStore(), nil
	case "sqlite":
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}
		return storage.NewSQLiteSnapshotStore(&storage.SQLiteConfig{
			Path:         cfg.Path,
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
			WALMode:      cfg.WALMode,
			BusyTimeout:  cfg.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported snapshot backend: %s", cfg.Backend)
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return nil
}

// openSink builds the exception signal sink named by the config.
func openSink(ctx context.Context, cfg *config.SignalsConfig, logger *slog.Logger) (signals.Sink, error) {
	switch cfg.Sink {
	case "memory":
		return signals.NewMemorySink(), nil
	case "redis":
		return signals.NewRedisSink(ctx, signals.RedisConfig{
			URL:          cfg.Redis.URL,
			Stream:       cfg.Redis.Stream,
			MaxLen:       cfg.Redis.MaxLen,
			DialTimeout:  cfg.Redis.DialTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
	default:
		return signals.NewLogSink(logger.With("component", "governance.signals")), nil
	}
}

// newRecorder wraps sink in a recorder whose delivery outcomes feed the
// signal metrics.
func newRecorder(cfg *config.SignalsConfig, sink signals.Sink, collector *metrics.Collector) *signals.Recorder {
	return signals.NewRecorder(sink, &signals.Config{
		AsyncBuffer:  cfg.AsyncBuffer,
		WriteTimeout: cfg.WriteTimeout,
		Dedupe:       cfg.Dedupe,
		OnSent: func(*signals.ExceptionSignal) {
			collector.RecordSignalSent(sink.Name())
		},
		OnFailed: func(*signals.ExceptionSignal, error) {
			collector.RecordSignalFailed(sink.Name())
		},
	})
}

// closeSink closes sinks that hold connections.
func closeSink(sink signals.Sink) error {
	if c, ok := sink.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func retentionConfig(cfg *config.RetentionConfig) *retention.Config {
	return &retention.Config{
		RetentionDays:       cfg.Days,
		PruneSchedule:       cfg.PruneSchedule,
		ArchiveBeforeDelete: cfg.ArchiveBeforeDelete,
		ArchivePath:         cfg.ArchivePath,
		MaxSnapshots:        cfg.MaxSnapshots,
	}
}
