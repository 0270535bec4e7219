package source

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"wealthos/governance/pkg/governance"
)

// Registry holds the current rule set loaded from disk. Reloads that fail
// keep the previous rule set.
type Registry struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	rules    []governance.Rule
	version  int
	loadedAt time.Time
}

// NewRegistry creates a registry for path and performs the initial load.
func NewRegistry(path string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default().With("component", "rules.source")
	}
	r := &Registry{path: path, logger: logger}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the rule files. On a partial directory load the rules
// that parsed are installed and the error is still returned.
func (r *Registry) Reload() error {
	loaded, err := Load(r.path)
	if loaded == nil && err != nil {
		return err
	}

	r.mu.Lock()
	r.rules = loaded
	r.version++
	r.loadedAt = time.Now()
	version := r.version
	r.mu.Unlock()

	r.logger.Info("Rules loaded", "path", r.path, "count", len(loaded), "version", version)
	return err
}

// Rules returns a copy of the current rule set.
func (r *Registry) Rules() []governance.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]governance.Rule(nil), r.rules...)
}

// Version increments on every successful reload.
func (r *Registry) Version() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadedAt returns the time of the last successful reload.
func (r *Registry) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}

// Watch reloads the registry whenever its files change, until ctx is done.
func (r *Registry) Watch(ctx context.Context, debounce time.Duration) error {
	w, err := NewWatcher(r.path, debounce, r.logger)
	if err != nil {
		return err
	}
	defer w.Stop()
	return w.Watch(ctx, r.Reload)
}
