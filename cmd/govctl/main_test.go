package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"wealthos/governance/pkg/config"
)

// useTestConfig installs a configuration backed by a throwaway SQLite
// catalog and an in-memory snapshot store.
func useTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Defaults()
	cfg.Storage.Catalog.Backend = "sqlite"
	cfg.Storage.Catalog.Path = filepath.Join(dir, "catalog.db")
	cfg.Storage.Snapshots.Backend = "memory"
	cfg.Rules.Path = filepath.Join(dir, "rules")
	cfg.Telemetry.Logging.Level = "error"

	config.SetConfig(cfg)
	t.Cleanup(func() { config.SetConfig(nil) })
	return cfg
}

// execute runs the root command with args and returns its stdout.
// Persistent flags are reset first because cobra keeps flag values
// between executions.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	outputFormat = "text"
	verbose = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
