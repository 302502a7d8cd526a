package types

// WorldBookEntry is a named block of lore text injectable into the system
// prompt. Entries live in a global pool and are referenced by id.
type WorldBookEntry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
}

// Persona is user-side identity text, distinct from the character's own
// persona prompt.
type Persona struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Emoji maps a human-readable meaning to a sticker URL.
type Emoji struct {
	Meaning string `json:"meaning"`
	URL     string `json:"url"`
}

// EmojiGroup is a named sticker pack in the global pool.
type EmojiGroup struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Emojis []Emoji `json:"emojis"`
}

// EmojiVocab is the runtime vocabulary built from the union of a character's
// referenced groups. It serves both prompt injection and reply decoding.
type EmojiVocab struct {
	Emojis       []Emoji
	MeaningToURL map[string]string
	URLToMeaning map[string]string
}

// BuildEmojiVocab merges groups in order. The first occurrence of a meaning
// or URL wins so duplicated stickers across packs stay stable.
func BuildEmojiVocab(groups []EmojiGroup) *EmojiVocab {
	v := &EmojiVocab{
		MeaningToURL: make(map[string]string),
		URLToMeaning: make(map[string]string),
	}
	for _, g := range groups {
		for _, e := range g.Emojis {
			if e.Meaning == "" || e.URL == "" {
				continue
			}
			if _, ok := v.MeaningToURL[e.Meaning]; ok {
				continue
			}
			v.Emojis = append(v.Emojis, e)
			v.MeaningToURL[e.Meaning] = e.URL
			if _, ok := v.URLToMeaning[e.URL]; !ok {
				v.URLToMeaning[e.URL] = e.Meaning
			}
		}
	}
	return v
}

// ChatAPIConfig is the model endpoint configuration.
type ChatAPIConfig struct {
	Endpoint    string  `json:"endpoint"`
	Key         string  `json:"key"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// Configured reports whether the endpoint can be called at all.
func (c ChatAPIConfig) Configured() bool {
	return c.Endpoint != "" && c.Key != ""
}

// APIPreset is a named, saved endpoint configuration.
type APIPreset struct {
	Name   string        `json:"name"`
	Config ChatAPIConfig `json:"config"`
}

// NarrativePreset is a free-text style directive for offline mode.
type NarrativePreset struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Enabled bool   `json:"enabled"`
}
