package types

import "time"

// Character is the persisted profile of one chat contact.
type Character struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Avatar      string    `json:"avatar"`
	Prompt      string    `json:"prompt"`
	Remark      string    `json:"remark"`
	Settings    Settings  `json:"settings"`
	LastMessage string    `json:"last_message"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName prefers the user-given remark over the character name.
func (c *Character) DisplayName() string {
	if c.Remark != "" {
		return c.Remark
	}
	return c.Name
}

// Settings is the raw per-character configuration as persisted. Older data
// carries singular id fields where newer data carries slices; call Normalize
// at the repository boundary to get a canonical view.
type Settings struct {
	ContextLength        int      `json:"contextLength,omitempty"`
	WorldBookIDs         []string `json:"worldBookIds,omitempty"`
	WorldBookID          string   `json:"worldBookId,omitempty"`
	EmojiGroupIDs        []string `json:"emojiGroupIds,omitempty"`
	EmojiGroupID         string   `json:"emojiGroupId,omitempty"`
	UserPersonaID        string   `json:"userPersonaId,omitempty"`
	CustomPersonaContent string   `json:"customPersonaContent,omitempty"`
	AutoSummary          bool     `json:"autoSummary,omitempty"`
	SummaryFreq          int      `json:"summaryFreq,omitempty"`
	SummaryPrompt        string   `json:"summaryPrompt,omitempty"`
	RealtimeAwareness    bool     `json:"realtimeAwareness,omitempty"`
	RealWorldAwareness   bool     `json:"realWorldAwareness,omitempty"`
	UserName             string   `json:"userName,omitempty"`
	CharNameForSummary   string   `json:"charNameForSummary,omitempty"`
}

// ResolvedSettings is the canonical settings view after legacy fallback and
// defaulting. Business logic only ever sees this form.
type ResolvedSettings struct {
	ContextLength        int
	WorldBookIDs         []string
	EmojiGroupIDs        []string
	UserPersonaID        string
	CustomPersonaContent string
	AutoSummary          bool
	SummaryFreq          int
	SummaryPrompt        string
	RealtimeAwareness    bool
	UserName             string
	CharNameForSummary   string
}

const (
	// DefaultContextLength is the history window fed to the model.
	DefaultContextLength = 20
	// DefaultSummaryFreq is the number of messages between auto-summaries.
	DefaultSummaryFreq = 10
)

// Normalize applies defaults and wraps legacy singular id fields into
// one-element slices so old single-selection data keeps working.
func (s Settings) Normalize() ResolvedSettings {
	r := ResolvedSettings{
		ContextLength:        s.ContextLength,
		WorldBookIDs:         s.WorldBookIDs,
		EmojiGroupIDs:        s.EmojiGroupIDs,
		UserPersonaID:        s.UserPersonaID,
		CustomPersonaContent: s.CustomPersonaContent,
		AutoSummary:          s.AutoSummary,
		SummaryFreq:          s.SummaryFreq,
		SummaryPrompt:        s.SummaryPrompt,
		RealtimeAwareness:    s.RealtimeAwareness || s.RealWorldAwareness,
		UserName:             s.UserName,
		CharNameForSummary:   s.CharNameForSummary,
	}
	if r.ContextLength <= 0 {
		r.ContextLength = DefaultContextLength
	}
	if r.SummaryFreq <= 0 {
		r.SummaryFreq = DefaultSummaryFreq
	}
	if len(r.WorldBookIDs) == 0 && s.WorldBookID != "" {
		r.WorldBookIDs = []string{s.WorldBookID}
	}
	if len(r.EmojiGroupIDs) == 0 && s.EmojiGroupID != "" {
		r.EmojiGroupIDs = []string{s.EmojiGroupID}
	}
	return r
}
