package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"wealthos/governance/pkg/cli"
	"wealthos/governance/pkg/config"
	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/retention"
	"wealthos/governance/pkg/governance/rules/source"
	"wealthos/governance/pkg/governance/runner"
	"wealthos/governance/pkg/governance/signals"
	"wealthos/governance/pkg/server"
	"wealthos/governance/pkg/telemetry/health"
	"wealthos/governance/pkg/telemetry/metrics"
	"wealthos/governance/pkg/telemetry/tracing"
)

var runFlags struct {
	listen string
	dryRun bool
	once   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the governance engine",
	Long: `Run the governance engine with the specified configuration.

The engine scores every metric, refreshes trust badges and evaluates the
governance rules on the evaluation schedule. Triggered rules are handed to
the exception signal sink. The admin server exposes metrics, health probes
and the read-only explanation API.

Examples:
  # Run with the default config.yaml
  govctl run

  # Run one pass and exit
  govctl run --once

  # Override listen address
  govctl run --listen 0.0.0.0:9191

  # Keep signals in memory instead of the configured sink
  govctl run --dry-run`,
	RunE: runEngine,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.listen, "listen", "", "admin server listen address (overrides config)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "do not deliver exception signals")
	runCmd.Flags().BoolVar(&runFlags.once, "once", false, "run one governance pass and exit")
}

// meteredRules reports the size of the current rule set each time the
// runner reads it, so hot reloads show up in the rules_loaded gauge.
type meteredRules struct {
	src     runner.RuleSource
	metrics *metrics.Collector
}

func (m meteredRules) Rules() []governance.Rule {
	r := m.src.Rules()
	m.metrics.UpdateLoadedRules(len(r))
	return r
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.listen != "" {
		cfg.Server.ListenAddress = runFlags.listen
	}
	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	printBanner(cmd, cfg)

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	// A broken rules path degrades readiness but scoring and reconciliation
	// keep running.
	var ruleSource runner.RuleSource = runner.StaticRules(nil)
	registry, err := source.NewRegistry(cfg.Rules.Path, logger.With("component", "rules.source"))
	if err != nil {
		slog.Warn("failed to load governance rules", "path", cfg.Rules.Path, "error", err)
	} else {
		ruleSource = registry
		cmd.Printf("✓ Rules loaded (%d rules)\n", len(registry.Rules()))
		if cfg.Rules.Watch {
			go func() {
				if err := registry.Watch(ctx, cfg.Rules.WatchDebounce); err != nil && ctx.Err() == nil {
					slog.Error("rule watcher stopped", "error", err)
				}
			}()
		}
	}
	ruleSource = meteredRules{src: ruleSource, metrics: collector}

	var sink signals.Sink
	if runFlags.dryRun {
		sink = signals.NewMemorySink()
	} else {
		sink, err = openSink(ctx, &cfg.Signals, logger)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open signal sink: %w", err))
		}
	}
	defer closeSink(sink)
	recorder := newRecorder(&cfg.Signals, sink, collector)
	defer recorder.Close()

	eng, err := openEngine(engineOptions{
		Rules:    ruleSource,
		Recorder: recorder,
		Metrics:  collector,
		Tracer:   tracer,
	})
	if err != nil {
		return err
	}
	defer eng.Close()
	cmd.Printf("✓ Stores opened (catalog: %s, snapshots: %s)\n", cfg.Storage.Catalog.Backend, cfg.Storage.Snapshots.Backend)

	if runFlags.once {
		report, err := eng.runner.RunOnce(ctx)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		cmd.Printf("✓ Run %s: %d scored, %d skipped, %d badges changed (%s)\n",
			report.RunID, report.Scored, report.Skipped, report.BadgesChanged, report.Duration.Round(time.Millisecond))
		if eval := report.Evaluation; eval != nil {
			cmd.Printf("✓ Rules: %d triggered, %d signals emitted, %d deduplicated, %d failed\n",
				eval.Triggered, eval.Emitted, eval.Deduplicated, eval.Failed)
		}
		return nil
	}

	scheduler := runner.NewScheduler(eng.runner, cfg.Rules.EvaluationSchedule)
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer scheduler.Stop()
	if next := scheduler.NextRun(); next != nil {
		cmd.Printf("✓ Governance scheduler started (next run %s)\n", next.Format(time.RFC3339))
	}

	if cfg.Retention.PruneSchedule != "" {
		pruner := retention.NewPruner(eng.snapshots, retentionConfig(&cfg.Retention))
		if err := pruner.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
			if next := pruner.NextPruning(); next != nil {
				slog.Debug("snapshot retention scheduler started", "next_pruning", next)
			}
		}
	}

	if !cfg.Server.Enabled {
		cmd.Println("\nAdmin server disabled. Press Ctrl+C to stop")
		<-ctx.Done()
		cmd.Println("\nShutting down...")
		return nil
	}

	var checker *health.Checker
	if cfg.Telemetry.Health.Enabled {
		checker = newHealthChecker(cfg, eng, ruleSource, sink)
	}
	var serverMetrics *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		serverMetrics = collector
	}

	srv := server.NewServer(&cfg.Server, server.Deps{
		Governance:    eng.runner,
		Rules:         ruleSource,
		Health:        checker,
		Metrics:       serverMetrics,
		MetricsPath:   cfg.Telemetry.Metrics.Path,
		LivenessPath:  cfg.Telemetry.Health.LivenessPath,
		ReadinessPath: cfg.Telemetry.Health.ReadinessPath,
		Tracer:        tracer,
		Version: server.Version{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		},
	})

	done := make(chan error, 1)
	go func() {
		slog.Info("starting admin server", "address", cfg.Server.ListenAddress)
		done <- srv.Start(ctx)
	}()

	cmd.Printf("\n✓ Admin server listening on %s\n", cfg.Server.ListenAddress)
	if serverMetrics != nil {
		cmd.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	cmd.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-done:
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("server error: %w", err))
		}
		return nil
	case <-ctx.Done():
	}

	cmd.Println("\nShutting down gracefully...")
	select {
	case err := <-done:
		if err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}
	case <-time.After(cfg.Server.ShutdownTimeout + time.Second):
		return cli.NewCommandError("run", fmt.Errorf("shutdown timed out after %s", cfg.Server.ShutdownTimeout))
	}
	cmd.Println("✓ Server stopped")
	return nil
}

// newHealthChecker registers the readiness checks. The stores are
// critical; rules, the signal sink and scheduler freshness only degrade.
func newHealthChecker(cfg *config.Config, eng *engine, rules runner.RuleSource, sink signals.Sink) *health.Checker {
	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.Register("catalog", true, health.CatalogCheck(eng.catalog))
	checker.Register("snapshots", true, health.SnapshotStoreCheck(eng.snapshots))
	checker.Register("rules", false, health.RulesCheck(func() int { return len(rules.Rules()) }))
	if p, ok := sink.(health.Pinger); ok {
		checker.Register("signals", false, health.PingCheck(p))
	}
	if maxAge, ok := staleAfter(cfg.Rules.EvaluationSchedule); ok {
		checker.Register("scheduler", false, health.FreshnessCheck(eng.runner.LastRun, maxAge, time.Now))
	}
	return checker
}

// staleAfter returns how old the last run may get before the scheduler is
// considered stuck: three schedule intervals.
func staleAfter(schedule string) (time.Duration, bool) {
	if schedule == "" {
		return 0, false
	}
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return 0, false
	}
	first := sched.Next(time.Now())
	interval := sched.Next(first).Sub(first)
	if interval <= 0 {
		return 0, false
	}
	return 3 * interval, true
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	cmd.Printf("WealthOS Governance v%s\n", Version)
	if _, err := os.Stat(cfgFile); err == nil {
		cmd.Printf("Configuration: %s\n", cfgFile)
	}
	cmd.Println("✓ Configuration loaded")

	slog.Debug("engine configured",
		"catalog_backend", cfg.Storage.Catalog.Backend,
		"snapshots_backend", cfg.Storage.Snapshots.Backend,
		"signals_sink", cfg.Signals.Sink,
		"evaluation_schedule", cfg.Rules.EvaluationSchedule,
		"locale", cfg.Locale,
	)
}
