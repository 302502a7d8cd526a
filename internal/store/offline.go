package store

import (
	"github.com/google/uuid"

	"github.com/yuli2514/rurichat/internal/types"
)

const (
	narrativePresetsKey = "narrative_presets"
	// legacyPresetKey holds the old single free-text style preset from
	// before presets became a list. It stays readable so old data keeps
	// steering offline narration.
	legacyPresetKey = "offline_preset"
)

// OfflineRepo provides access to the offline-mode history, its rolling
// summaries and the global narrative presets.
type OfflineRepo struct {
	kv KV
}

func offlineMessagesKey(charID string) string {
	return "offline_messages_" + charID
}

func offlineSummariesKey(charID string) string {
	return "offline_summaries_" + charID
}

// History returns a character's offline timeline, oldest first.
func (r *OfflineRepo) History(charID string) ([]types.Message, error) {
	msgs, _, err := getJSON[[]types.Message](r.kv, offlineMessagesKey(charID))
	return msgs, err
}

// Append adds one offline message, forcing the offline mode marker.
func (r *OfflineRepo) Append(charID string, msg types.Message) error {
	msg.Mode = types.ModeOffline
	msgs, err := r.History(charID)
	if err != nil {
		return err
	}
	msgs = append(msgs, msg)
	return putJSON(r.kv, offlineMessagesKey(charID), msgs)
}

// Summaries returns the character's offline chat summaries, oldest first.
// These are distinct from character memories.
func (r *OfflineRepo) Summaries(charID string) ([]string, error) {
	sums, _, err := getJSON[[]string](r.kv, offlineSummariesKey(charID))
	return sums, err
}

func (r *OfflineRepo) AppendSummary(charID, summary string) error {
	sums, err := r.Summaries(charID)
	if err != nil {
		return err
	}
	sums = append(sums, summary)
	return putJSON(r.kv, offlineSummariesKey(charID), sums)
}

// Presets returns all narrative style presets.
func (r *OfflineRepo) Presets() ([]types.NarrativePreset, error) {
	presets, _, err := getJSON[[]types.NarrativePreset](r.kv, narrativePresetsKey)
	return presets, err
}

// EnabledPresets returns the contents of all enabled presets in order.
func (r *OfflineRepo) EnabledPresets() ([]string, error) {
	presets, err := r.Presets()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range presets {
		if p.Enabled && p.Content != "" {
			out = append(out, p.Content)
		}
	}
	return out, nil
}

// LegacyPreset returns the pre-list single style preset, empty when unset.
func (r *OfflineRepo) LegacyPreset() (string, error) {
	preset, _, err := getJSON[string](r.kv, legacyPresetKey)
	return preset, err
}

func (r *OfflineRepo) PutLegacyPreset(preset string) error {
	return putJSON(r.kv, legacyPresetKey, preset)
}

func (r *OfflineRepo) PutPreset(p types.NarrativePreset) (types.NarrativePreset, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	presets, err := r.Presets()
	if err != nil {
		return types.NarrativePreset{}, err
	}
	replaced := false
	for i := range presets {
		if presets[i].ID == p.ID {
			presets[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		presets = append(presets, p)
	}
	if err := putJSON(r.kv, narrativePresetsKey, presets); err != nil {
		return types.NarrativePreset{}, err
	}
	return p, nil
}

func (r *OfflineRepo) deleteAll(charID string) error {
	if err := r.kv.Delete(offlineMessagesKey(charID)); err != nil {
		return err
	}
	return r.kv.Delete(offlineSummariesKey(charID))
}
