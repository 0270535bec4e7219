package config

import (
	"sync"
	"sync/atomic"
)

var (
	current atomic.Pointer[Config]
	initMu  sync.Mutex
)

// Initialize loads the process configuration from path, applying
// environment overrides. Once a configuration is installed further calls
// are no-ops; a failed load installs nothing, so the caller may retry.
func Initialize(path string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if current.Load() != nil {
		return nil
	}
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return err
	}
	current.Store(cfg)
	return nil
}

// GetConfig returns the installed configuration, or nil.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig replaces the installed configuration. Tests use it to inject
// a configuration; SetConfig(nil) uninstalls it.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// MustGetConfig is GetConfig for code that runs after a successful
// Initialize. It panics when nothing is installed.
func MustGetConfig() *Config {
	cfg := current.Load()
	if cfg == nil {
		panic("config: not initialized")
	}
	return cfg
}
