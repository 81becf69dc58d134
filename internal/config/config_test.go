package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/threadkeeper/internal/scoring"
)

func writeConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	dir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(strings.TrimSpace(body)), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	cfg, err := Load(projectDir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", cfg.Project.Version)
	}
	if cfg.Settings != scoring.DefaultSettings() {
		t.Fatalf("expected default settings, got %+v", cfg.Settings)
	}
	if cfg.PoolPath() != filepath.Join(projectDir, "obligations.yaml") {
		t.Fatalf("unexpected pool path %s", cfg.PoolPath())
	}
}

func TestInitDirWritesParsableDefaults(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("InitDir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(projectDir, Dir, "logs")); err != nil {
		t.Fatalf("logs dir missing: %v", err)
	}
	cfg, err := Load(projectDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Settings != scoring.DefaultSettings() {
		t.Fatalf("default file should match built-in defaults, got %+v", cfg.Settings)
	}
	// a second init must not clobber edits
	writeConfig(t, projectDir, "version: 1\nscheduler:\n  max_obligations_per_selection: 9\n")
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("InitDir again: %v", err)
	}
	cfg, err = Load(projectDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Settings.MaxObligationsPerSelection != 9 {
		t.Fatalf("InitDir overwrote existing config")
	}
}

func TestLoadParsesPartialYaml(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `
version: 1
pool: story/threads.yaml
scheduler:
  overuse_penalty_threshold: 5
  tension_balance_target: -0.25
  enable_contextual_filtering: false
`)
	cfg, err := Load(projectDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Settings
	if s.OverusePenaltyThreshold != 5 || s.TensionBalanceTarget != -0.25 || s.EnableContextualFiltering {
		t.Fatalf("file values not applied: %+v", s)
	}
	if !s.EnableAdaptiveWeighting || s.StalenessPenaltyThreshold != 5 || s.Weights != scoring.DefaultWeights() {
		t.Fatalf("defaults lost for omitted keys: %+v", s)
	}
	if cfg.PoolPath() != filepath.Join(projectDir, "story", "threads.yaml") {
		t.Fatalf("pool path = %s", cfg.PoolPath())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"negative weight": "scheduler:\n  weights:\n    urgency: -1\n",
		"zero max":        "scheduler:\n  max_obligations_per_selection: 0\n",
		"target range":    "scheduler:\n  tension_balance_target: 2\n",
		"bad version":     "version: -3\n",
		"bad yaml":        "scheduler: [oops",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			writeConfig(t, projectDir, body)
			if _, err := Load(projectDir); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("THREADKEEPER_MAX_SELECTION", "7")
	t.Setenv("THREADKEEPER_ADAPTIVE", "false")
	t.Setenv("THREADKEEPER_DEPENDENCIES", "not-a-bool")
	t.Setenv("THREADKEEPER_TENSION_TARGET", "0.5")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Settings
	if s.MaxObligationsPerSelection != 7 || s.EnableAdaptiveWeighting || s.TensionBalanceTarget != 0.5 {
		t.Fatalf("env overrides not applied: %+v", s)
	}
	if !s.EnableDependencyResolution {
		t.Fatalf("unparsable override should be ignored")
	}
}

func TestEnvOverrideStillValidated(t *testing.T) {
	t.Setenv("THREADKEEPER_MAX_SELECTION", "0")
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatalf("expected validation error for zero max from env")
	}
}
