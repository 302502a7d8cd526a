// Package config loads configuration from environment variables and an
// optional tunables file.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings.
type Config struct {
	// DataPath is the sqlite file backing the local store.
	DataPath string
	// LogMode selects slog handler style: "text" or "json".
	LogMode string

	// APIEndpoint and friends seed the stored endpoint configuration when
	// the store holds none yet.
	APIEndpoint string
	APIKey      string
	Model       string
	Temperature float64

	Tunables Tunables
}

// Load reads env vars and applies defaults.
func Load() Config {
	cfg := Config{
		DataPath:    os.Getenv("RURICHAT_DATA"),
		LogMode:     os.Getenv("RURICHAT_LOG"),
		APIEndpoint: os.Getenv("RURICHAT_API_ENDPOINT"),
		APIKey:      os.Getenv("RURICHAT_API_KEY"),
		Model:       os.Getenv("RURICHAT_MODEL"),
	}
	cfg.Temperature = getEnvFloat("RURICHAT_TEMPERATURE", 0.8)

	if cfg.DataPath == "" {
		cfg.DataPath = "rurichat.db"
	}
	if cfg.LogMode == "" {
		cfg.LogMode = "text"
	}
	cfg.Tunables = DefaultTunables()
	cfg.Tunables.PaceDelayMillis = getEnvInt("RURICHAT_PACE_MS", cfg.Tunables.PaceDelayMillis)
	cfg.Tunables.RecallDelayMillis = getEnvInt("RURICHAT_RECALL_MS", cfg.Tunables.RecallDelayMillis)
	return cfg
}

// DefaultTunables returns the built-in pacing and windowing defaults.
func DefaultTunables() Tunables {
	return Tunables{
		PaceDelayMillis:   1200,
		RecallDelayMillis: 2000,
		MaxTokens:         2048,
	}
}

// PaceDelay is the gap between successive reply bubbles.
func (t Tunables) PaceDelay() time.Duration {
	return time.Duration(t.PaceDelayMillis) * time.Millisecond
}

// RecallDelay is how long a [RECALL]-tagged bubble stays visible.
func (t Tunables) RecallDelay() time.Duration {
	return time.Duration(t.RecallDelayMillis) * time.Millisecond
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}
