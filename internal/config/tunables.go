package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Tunables are behavior knobs loadable from a yaml file. Missing file or
// missing keys fall back to defaults.
type Tunables struct {
	PaceDelayMillis   int   `yaml:"pace_delay_ms"`
	RecallDelayMillis int   `yaml:"recall_delay_ms"`
	MaxTokens         int64 `yaml:"max_tokens"`
}

// LoadTunables reads the yaml file at path. A missing file returns defaults.
func LoadTunables(path string) (Tunables, error) {
	t := DefaultTunables()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return t, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(file, &t); err != nil {
		return DefaultTunables(), err
	}

	if t.PaceDelayMillis < 0 {
		t.PaceDelayMillis = 0
	}
	if t.RecallDelayMillis < 0 {
		t.RecallDelayMillis = 0
	}
	if t.MaxTokens <= 0 {
		t.MaxTokens = DefaultTunables().MaxTokens
	}
	return t, nil
}
