package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nvandessel/synthuser/internal/emotion"
	"github.com/nvandessel/synthuser/internal/ranking"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Memory.ShortTermCapacity != 7 {
		t.Errorf("expected ShortTermCapacity 7, got %d", cfg.Memory.ShortTermCapacity)
	}
	if cfg.Memory.ConsolidationThreshold != 0.6 {
		t.Errorf("expected ConsolidationThreshold 0.6, got %f", cfg.Memory.ConsolidationThreshold)
	}
	if cfg.Memory.LearningRate != 0.1 {
		t.Errorf("expected LearningRate 0.1, got %f", cfg.Memory.LearningRate)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Trace.Path != "" {
		t.Errorf("expected tracing disabled by default, got '%s'", cfg.Trace.Path)
	}
	if diff := cmp.Diff(emotion.DefaultWeights(), cfg.Emotion); diff != "" {
		t.Errorf("emotion weights mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ranking.DefaultWeightTable(), cfg.Ranking); diff != "" {
		t.Errorf("ranking weights mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
emotion:
  confused:
    base_intensity: 0.55
ranking:
  frustrated:
    emotion_preference: 0.4
memory:
  short_term_capacity: 5
logging:
  level: debug
trace:
  path: /tmp/trace.db
seed: 42
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Emotion.Confused.Base != 0.55 {
		t.Errorf("expected confused base 0.55, got %f", cfg.Emotion.Confused.Base)
	}
	if cfg.Emotion.Confused.Neuroticism != emotion.DefaultWeights().Confused.Neuroticism {
		t.Error("omitted emotion weight lost its default")
	}
	if cfg.Ranking.Frustrated.EmotionPreference != 0.4 {
		t.Errorf("expected frustrated emotion_preference 0.4, got %f", cfg.Ranking.Frustrated.EmotionPreference)
	}
	if cfg.Ranking.Frustrated.GoalAlignment != 0.20 {
		t.Errorf("omitted ranking weight = %f, want default 0.20", cfg.Ranking.Frustrated.GoalAlignment)
	}
	if cfg.Memory.ShortTermCapacity != 5 || cfg.Memory.ConsolidationThreshold != 0.6 {
		t.Errorf("memory = %+v", cfg.Memory)
	}
	if cfg.Logging.Level != "debug" || cfg.Trace.Path != "/tmp/trace.db" || cfg.Seed != 42 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("memory: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := Default()
	environ := map[string]string{
		"SYNTHUSER_LOG_LEVEL":                      "trace",
		"SYNTHUSER_LOG_DIR":                        "/var/log/synthuser",
		"SYNTHUSER_MEMORY_SHORT_TERM_CAPACITY":     "9",
		"SYNTHUSER_MEMORY_CONSOLIDATION_THRESHOLD": "0.75",
		"SYNTHUSER_MEMORY_LEARNING_RATE":           "0.2",
		"SYNTHUSER_TRACE_PATH":                     "run.db",
		"SYNTHUSER_SEED":                           "1234",
		"LOG_LEVEL":                                "debug",
	}

	if err := applyEnvOverrides(cfg, environ); err != nil {
		t.Fatalf("applyEnvOverrides: %v", err)
	}

	want := Default()
	want.Logging = LoggingConfig{Level: "trace", Dir: "/var/log/synthuser"}
	want.Memory = MemoryConfig{ShortTermCapacity: 9, ConsolidationThreshold: 0.75, LearningRate: 0.2}
	want.Trace.Path = "run.db"
	want.Seed = 1234
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvOverrides_UnsetKeepsValues(t *testing.T) {
	cfg := Default()
	cfg.Memory.ShortTermCapacity = 3

	if err := applyEnvOverrides(cfg, map[string]string{}); err != nil {
		t.Fatalf("applyEnvOverrides: %v", err)
	}
	if cfg.Memory.ShortTermCapacity != 3 || cfg.Logging.Level != "info" {
		t.Errorf("unset variables changed config: %+v", cfg)
	}
}

func TestEnvOverrides_BadNumber(t *testing.T) {
	err := applyEnvOverrides(Default(), map[string]string{"SYNTHUSER_SEED": "lots"})
	if err == nil {
		t.Fatal("expected error for non-numeric seed")
	}
}

func TestLoad_HomeFileThenEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SYNTHUSER_LOG_LEVEL", "debug")

	dir := filepath.Join(home, ".synthuser")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	content := "logging:\n  level: trace\nmemory:\n  short_term_capacity: 4\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Memory.ShortTermCapacity != 4 {
		t.Errorf("file value lost, capacity = %d", cfg.Memory.ShortTermCapacity)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("environment should win over file, level = %s", cfg.Logging.Level)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SYNTHUSER_MEMORY_SHORT_TERM_CAPACITY", "0")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "short_term_capacity") {
		t.Errorf("Load err = %v, want short_term_capacity error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SimConfig)
		wantErr string
	}{
		{"valid", func(*SimConfig) {}, ""},
		{"empty level", func(c *SimConfig) { c.Logging.Level = "" }, ""},
		{"zero capacity", func(c *SimConfig) { c.Memory.ShortTermCapacity = 0 }, "short_term_capacity"},
		{"threshold above one", func(c *SimConfig) { c.Memory.ConsolidationThreshold = 1.5 }, "consolidation_threshold"},
		{"negative learning rate", func(c *SimConfig) { c.Memory.LearningRate = -0.1 }, "learning_rate"},
		{"negative emotion weight", func(c *SimConfig) { c.Emotion.Frustrated.Base = -1 }, "frustrated"},
		{"negative ranking weight", func(c *SimConfig) { c.Ranking.Confused.Position = -0.2 }, "confused.position"},
		{"unknown level", func(c *SimConfig) { c.Logging.Level = "verbose" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryConfig_System(t *testing.T) {
	got := MemoryConfig{ShortTermCapacity: 3, ConsolidationThreshold: 0.4, LearningRate: 0.3}.System()
	if got.ShortTermCapacity != 3 || got.ConsolidationThreshold != 0.4 {
		t.Errorf("System() = %+v", got)
	}
}
