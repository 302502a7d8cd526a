package store

import (
	"github.com/yuli2514/rurichat/internal/types"
)

const (
	apiConfigKey  = "api_config"
	apiPresetsKey = "api_presets"
)

// APIConfigRepo stores the model endpoint configuration and named presets.
type APIConfigRepo struct {
	kv KV
}

// Get returns the active endpoint configuration, zero-valued when unset.
func (r *APIConfigRepo) Get() (types.ChatAPIConfig, error) {
	cfg, _, err := getJSON[types.ChatAPIConfig](r.kv, apiConfigKey)
	return cfg, err
}

func (r *APIConfigRepo) Put(cfg types.ChatAPIConfig) error {
	return putJSON(r.kv, apiConfigKey, cfg)
}

func (r *APIConfigRepo) Presets() ([]types.APIPreset, error) {
	presets, _, err := getJSON[[]types.APIPreset](r.kv, apiPresetsKey)
	return presets, err
}

// SavePreset stores a named configuration, replacing one with the same name.
func (r *APIConfigRepo) SavePreset(p types.APIPreset) error {
	presets, err := r.Presets()
	if err != nil {
		return err
	}
	replaced := false
	for i := range presets {
		if presets[i].Name == p.Name {
			presets[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		presets = append(presets, p)
	}
	return putJSON(r.kv, apiPresetsKey, presets)
}

func (r *APIConfigRepo) DeletePreset(name string) error {
	presets, err := r.Presets()
	if err != nil {
		return err
	}
	kept := presets[:0]
	for _, p := range presets {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	return putJSON(r.kv, apiPresetsKey, kept)
}
