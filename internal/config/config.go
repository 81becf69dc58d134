// internal/config/config.go
//
// This package handles configuration and the .threadkeeper directory.
// Every story project that uses threadkeeper gets a .threadkeeper/ folder
// holding config.yaml and the selection logs.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/threadkeeper/internal/scoring"
)

const (
	// Dir is the name of the directory we create in each project
	Dir = ".threadkeeper"

	defaultPoolFile = "obligations.yaml"
)

const defaultConfigYAML = `# threadkeeper project configuration
version: 1

# Obligation pool to load, relative to the project directory.
pool: obligations.yaml

scheduler:
  # Component weights. They are renormalized to sum to 1 when adaptive
  # weighting is enabled.
  weights:
    urgency: 0.25
    salience: 0.20
    freshness: 0.15
    tension_balance: 0.15
    dependency: 0.15
    context_relevance: 0.10
  # Chapters since introduction before an obligation counts as stale.
  staleness_penalty_threshold: 5
  # Injections after which an obligation counts as overused.
  overuse_penalty_threshold: 3
  # Tension level the scheduler steers toward, in [-1, 1].
  tension_balance_target: 0.0
  max_obligations_per_selection: 3
  enable_adaptive_weighting: true
  enable_dependency_resolution: true
  enable_contextual_filtering: true
`

// SchedulerConfig mirrors scoring.Settings with optional toggles so a partial
// file keeps the defaults for anything it leaves out.
type SchedulerConfig struct {
	Weights                    *scoring.Weights `yaml:"weights,omitempty"`
	StalenessPenaltyThreshold  *uint32          `yaml:"staleness_penalty_threshold,omitempty"`
	OverusePenaltyThreshold    *uint32          `yaml:"overuse_penalty_threshold,omitempty"`
	TensionBalanceTarget       *float64         `yaml:"tension_balance_target,omitempty"`
	MaxObligationsPerSelection *int             `yaml:"max_obligations_per_selection,omitempty"`
	EnableAdaptiveWeighting    *bool            `yaml:"enable_adaptive_weighting,omitempty"`
	EnableDependencyResolution *bool            `yaml:"enable_dependency_resolution,omitempty"`
	EnableContextualFiltering  *bool            `yaml:"enable_contextual_filtering,omitempty"`
}

// ProjectConfig models .threadkeeper/config.yaml.
type ProjectConfig struct {
	Version   int             `yaml:"version"`
	Pool      string          `yaml:"pool"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// Config holds the resolved runtime configuration.
type Config struct {
	// ProjectDir is the directory threadkeeper was pointed at
	ProjectDir string

	// StateDir is ProjectDir/.threadkeeper
	StateDir string

	Project ProjectConfig

	// Settings is the scheduler configuration after defaults, file values
	// and environment overrides.
	Settings scoring.Settings
}

// InitDir creates the .threadkeeper directory structure and a default
// config.yaml when none exists.
//
// Structure created:
// .threadkeeper/
// ├── config.yaml
// └── logs/        <- selection logbook
func InitDir(projectDir string) error {
	stateDir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(filepath.Join(stateDir, "logs"), 0o755); err != nil {
		return fmt.Errorf("config: ensure %s: %w", stateDir, err)
	}
	return ensureProjectConfig(filepath.Join(stateDir, "config.yaml"))
}

// Load reads the project configuration, falling back to defaults when the
// file is missing, and applies environment overrides.
func Load(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		StateDir:   filepath.Join(projectDir, Dir),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.Settings = cfg.Project.Scheduler.settings()
	applyEnvOverrides(&cfg.Settings)
	if err := validateSettings(cfg.Settings); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location for the project config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// LogbookPath returns the selection journal location.
func (c *Config) LogbookPath() string {
	return filepath.Join(c.LogsDir(), "selections.log")
}

// PoolPath returns the resolved obligation pool file.
func (c *Config) PoolPath() string {
	return resolvePath(c.ProjectDir, c.Project.Pool)
}

func (c *Config) loadProjectConfig() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Pool:    defaultPoolFile,
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	pc.Pool = strings.TrimSpace(pc.Pool)
	if pc.Pool == "" {
		pc.Pool = defaultPoolFile
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	return validateSettings(pc.Scheduler.settings())
}

func (sc SchedulerConfig) settings() scoring.Settings {
	s := scoring.DefaultSettings()
	if sc.Weights != nil {
		s.Weights = *sc.Weights
	}
	if sc.StalenessPenaltyThreshold != nil {
		s.StalenessPenaltyThreshold = *sc.StalenessPenaltyThreshold
	}
	if sc.OverusePenaltyThreshold != nil {
		s.OverusePenaltyThreshold = *sc.OverusePenaltyThreshold
	}
	if sc.TensionBalanceTarget != nil {
		s.TensionBalanceTarget = *sc.TensionBalanceTarget
	}
	if sc.MaxObligationsPerSelection != nil {
		s.MaxObligationsPerSelection = *sc.MaxObligationsPerSelection
	}
	if sc.EnableAdaptiveWeighting != nil {
		s.EnableAdaptiveWeighting = *sc.EnableAdaptiveWeighting
	}
	if sc.EnableDependencyResolution != nil {
		s.EnableDependencyResolution = *sc.EnableDependencyResolution
	}
	if sc.EnableContextualFiltering != nil {
		s.EnableContextualFiltering = *sc.EnableContextualFiltering
	}
	return s
}

func validateSettings(s scoring.Settings) error {
	w := s.Weights
	for name, value := range map[string]float64{
		"urgency":           w.Urgency,
		"salience":          w.Salience,
		"freshness":         w.Freshness,
		"tension_balance":   w.TensionBalance,
		"dependency":        w.Dependency,
		"context_relevance": w.ContextRelevance,
	} {
		if value < 0 {
			return fmt.Errorf("scheduler.weights.%s must be >= 0", name)
		}
	}
	if s.MaxObligationsPerSelection < 1 {
		return fmt.Errorf("scheduler.max_obligations_per_selection must be >= 1")
	}
	if s.TensionBalanceTarget < -1 || s.TensionBalanceTarget > 1 {
		return fmt.Errorf("scheduler.tension_balance_target must be within [-1, 1]")
	}
	return nil
}

func applyEnvOverrides(s *scoring.Settings) {
	if value := strings.TrimSpace(os.Getenv("THREADKEEPER_MAX_SELECTION")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			s.MaxObligationsPerSelection = parsed
		}
	}
	if value := strings.TrimSpace(os.Getenv("THREADKEEPER_TENSION_TARGET")); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			s.TensionBalanceTarget = parsed
		}
	}
	overrideBool("THREADKEEPER_ADAPTIVE", &s.EnableAdaptiveWeighting)
	overrideBool("THREADKEEPER_DEPENDENCIES", &s.EnableDependencyResolution)
	overrideBool("THREADKEEPER_FILTERING", &s.EnableContextualFiltering)
}

func overrideBool(key string, target *bool) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return
	}
	if parsed, err := strconv.ParseBool(value); err == nil {
		*target = parsed
	}
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
