// Package config provides unified configuration loading for synthuser.
// Settings come from defaults, then ~/.synthuser/config.yaml, then
// SYNTHUSER_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/synthuser/internal/emotion"
	"github.com/nvandessel/synthuser/internal/logging"
	"github.com/nvandessel/synthuser/internal/memory"
	"github.com/nvandessel/synthuser/internal/ranking"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SYNTHUSER_"

// SimConfig contains all simulator settings.
type SimConfig struct {
	// Emotion holds the emotion model coefficients.
	Emotion emotion.Weights `json:"emotion" yaml:"emotion"`

	// Ranking holds the per-emotion element scoring weights.
	Ranking ranking.WeightTable `json:"ranking" yaml:"ranking"`

	Memory  MemoryConfig  `json:"memory" yaml:"memory" envPrefix:"MEMORY_"`
	Logging LoggingConfig `json:"logging" yaml:"logging" envPrefix:"LOG_"`
	Trace   TraceConfig   `json:"trace" yaml:"trace" envPrefix:"TRACE_"`

	// Seed fixes the noise source. Zero seeds from the wall clock.
	Seed uint64 `json:"seed" yaml:"seed" env:"SEED"`
}

// MemoryConfig sizes memory and sets the learning step.
type MemoryConfig struct {
	ShortTermCapacity      int     `json:"short_term_capacity" yaml:"short_term_capacity" env:"SHORT_TERM_CAPACITY"`
	ConsolidationThreshold float64 `json:"consolidation_threshold" yaml:"consolidation_threshold" env:"CONSOLIDATION_THRESHOLD"`
	LearningRate           float64 `json:"learning_rate" yaml:"learning_rate" env:"LEARNING_RATE"`
}

// System converts the settings for memory.NewSystem.
func (m MemoryConfig) System() memory.Config {
	return memory.Config{
		ShortTermCapacity:      m.ShortTermCapacity,
		ConsolidationThreshold: m.ConsolidationThreshold,
	}
}

// LoggingConfig configures operational and decision logging.
type LoggingConfig struct {
	// Level is "info" (default), "debug" or "trace". Debug and trace also
	// write Dir/decisions.jsonl.
	Level string `json:"level" yaml:"level" env:"LEVEL"`

	Dir string `json:"dir" yaml:"dir" env:"DIR"`
}

// TraceConfig configures the SQLite decision trace. An empty path
// disables it.
type TraceConfig struct {
	Path string `json:"path" yaml:"path" env:"PATH"`
}

// Default returns the built-in settings.
func Default() *SimConfig {
	return &SimConfig{
		Emotion: emotion.DefaultWeights(),
		Ranking: ranking.DefaultWeightTable(),
		Memory: MemoryConfig{
			ShortTermCapacity:      memory.DefaultShortTermCapacity,
			ConsolidationThreshold: memory.DefaultConsolidationThreshold,
			LearningRate:           memory.DefaultLearningRate,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   ".synthuser",
		},
	}
}

// DefaultPath is ~/.synthuser/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".synthuser", "config.yaml"), nil
}

// Load reads the default config file when present, applies environment
// overrides and validates the result.
func Load() (*SimConfig, error) {
	cfg := Default()

	if path, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			fileCfg, loadErr := LoadFromFile(path)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			cfg = fileCfg
		}
	}

	if err := applyEnvOverrides(cfg, nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile reads a YAML file over the defaults. Fields the file omits
// keep their default values.
func LoadFromFile(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and names.
func (c *SimConfig) Validate() error {
	if c.Memory.ShortTermCapacity < 1 {
		return fmt.Errorf("short_term_capacity must be positive, got %d", c.Memory.ShortTermCapacity)
	}
	if c.Memory.ConsolidationThreshold < 0 || c.Memory.ConsolidationThreshold > 1 {
		return fmt.Errorf("consolidation_threshold must be between 0 and 1, got %f", c.Memory.ConsolidationThreshold)
	}
	if c.Memory.LearningRate < 0 || c.Memory.LearningRate > 1 {
		return fmt.Errorf("learning_rate must be between 0 and 1, got %f", c.Memory.LearningRate)
	}

	if err := c.Emotion.Validate(); err != nil {
		return err
	}
	if err := c.Ranking.Validate(); err != nil {
		return err
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}
	return nil
}

// applyEnvOverrides reads SYNTHUSER_* variables into cfg. Unset variables
// leave the current value alone. A nil environ reads the process
// environment.
func applyEnvOverrides(cfg *SimConfig, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}
