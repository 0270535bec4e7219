package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"wealthos/governance/pkg/config"
	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/explain"
	"wealthos/governance/pkg/governance/runner"
	"wealthos/governance/pkg/telemetry/health"
	"wealthos/governance/pkg/telemetry/metrics"
	"wealthos/governance/pkg/telemetry/tracing"
)

// Governance is the part of the runner the admin API reads from.
type Governance interface {
	Why(ctx context.Context, kpiID string, locale governance.Locale) (*explain.WhyThisNumber, error)
	LastEvaluation() *runner.Evaluation
}

// Version identifies the running build.
type Version struct {
	Version   string
	Commit    string
	BuildTime string
}

// Deps are the collaborators served by the admin server. Nil collaborators
// leave their routes unregistered.
type Deps struct {
	Governance  Governance
	Rules       runner.RuleSource
	Health      *health.Checker
	Metrics     *metrics.Collector
	MetricsPath string

	LivenessPath  string
	ReadinessPath string

	Tracer  *tracing.Tracer
	Version Version
}

// Server is the admin HTTP server.
type Server struct {
	config       *config.ServerConfig
	deps         Deps
	httpServer   *http.Server
	listener     net.Listener
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	logger       *slog.Logger
}

// NewServer creates a new admin server.
func NewServer(cfg *config.ServerConfig, deps Deps) *Server {
	if deps.MetricsPath == "" {
		deps.MetricsPath = config.DefaultMetricsPath
	}
	if deps.LivenessPath == "" {
		deps.LivenessPath = config.DefaultLivenessPath
	}
	if deps.ReadinessPath == "" {
		deps.ReadinessPath = config.DefaultReadinessPath
	}
	return &Server{
		config: cfg,
		deps:   deps,
		logger: slog.Default().With("component", "server"),
	}
}

// Start listens on the configured address and serves until ctx is done or
// the server fails. It always shuts down gracefully before returning.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listen on %s: %w", s.config.ListenAddress, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting admin server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	}
}

// Shutdown gracefully stops the server within ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("admin server stopped")
	})

	return shutdownErr
}

// Addr returns the bound address once the server is running, or "".
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.routes()
}
