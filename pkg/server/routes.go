package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"wealthos/governance/pkg/telemetry/health"
	"wealthos/governance/pkg/telemetry/tracing"
)

// routes builds the router. Middleware order, outermost first: recovery,
// request ID, tracing, logging.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		recoveryMiddleware,
		middleware.RequestID,
		requestIDHeader,
		tracing.HTTPMiddleware(s.deps.Tracer),
		loggingMiddleware,
	)
	if s.config != nil && s.config.WriteTimeout > 0 {
		r.Use(middleware.Timeout(s.config.WriteTimeout))
	}

	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, s.deps.MetricsPath, s.deps.Metrics.Handler())
	}
	if s.deps.Health != nil {
		r.Get(s.deps.LivenessPath, s.deps.Health.LivenessHandler())
		r.Get(s.deps.ReadinessPath, s.deps.Health.ReadinessHandler())
	}
	v := s.deps.Version
	r.Get("/version", health.VersionHandler(v.Version, v.Commit, v.BuildTime))

	r.Route("/api/v1", func(r chi.Router) {
		if s.deps.Governance != nil {
			r.Get("/kpis/{id}/why", s.handleWhy)
			r.Get("/rules/results", s.handleRuleResults)
		}
		if s.deps.Rules != nil {
			r.Get("/rules", s.handleRules)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method "+r.Method+" not allowed")
	})
	return r
}
