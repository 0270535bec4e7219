package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler calls RunOnce on a cron expression. Overlapping ticks are
// skipped while a run is still in progress.
type Scheduler struct {
	runner   *Runner
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler for r. An empty schedule leaves the
// scheduler idle.
func NewScheduler(r *Runner, schedule string) *Scheduler {
	logger := slog.Default().With("component", "governance.runner.scheduler")
	return &Scheduler{
		runner:   r,
		schedule: schedule,
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		logger: logger,
	}
}

// Start registers the schedule and starts the cron loop. It stops when ctx
// is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if s.schedule == "" {
		s.logger.Info("evaluation schedule not configured, scheduled runs disabled")
		return nil
	}
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid evaluation schedule %q: %w", s.schedule, err)
	}
	if _, err := s.cron.AddFunc(s.schedule, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule governance runs: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("governance scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.runner.RunOnce(ctx); err != nil {
		// RunOnce already logged the failure with its run ID.
		return
	}
	if next := s.NextRun(); next != nil {
		s.logger.Debug("next governance run", "at", next.Format(time.RFC3339))
	}
}

// Stop stops the cron loop and waits for an in-flight run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("governance scheduler stopped")
}

// IsRunning reports whether the cron loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run, or nil when idle.
func (s *Scheduler) NextRun() *time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
