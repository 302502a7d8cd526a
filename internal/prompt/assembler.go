// Package prompt assembles system prompts and role-tagged message arrays
// from a character and its resolved collaborators. Assembly is pure: all
// collaborator data is passed in as arguments, and identical inputs with a
// frozen clock produce byte-identical output.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuli2514/rurichat/internal/models"
	"github.com/yuli2514/rurichat/internal/types"
)

// memoryWindow is how many of the newest memory entries go into the prompt.
const memoryWindow = 5

// AssembleInput carries one character and every optional context source.
// Missing collaborators (nil/empty fields) simply omit their sections.
type AssembleInput struct {
	Character *types.Character
	Settings  types.ResolvedSettings
	// History is the full online timeline including recalled entries;
	// flattening excludes them.
	History        []types.Message
	OfflineHistory []types.Message
	Memories       []types.Memory
	WorldBooks     []types.WorldBookEntry
	// Persona is the resolved user persona content, empty when none.
	Persona     string
	EmojiGroups []types.EmojiGroup
	// NarrativePresets are the enabled offline style directives in order.
	// LegacyPreset is the old single-preset field, used when none are
	// enabled.
	NarrativePresets []string
	LegacyPreset     string
	OfflineSummaries []string
}

// AssembleOutput is the model invocation payload. Messages[0] is the system
// entry; Vocab is retained for reply decoding and history flattening reuse.
type AssembleOutput struct {
	SystemPrompt string
	Messages     []models.ChatMessage
	Vocab        *types.EmojiVocab
}

// Assembler builds prompts. The clock is injected so the realtime block is
// computed at call time yet reproducible in tests.
type Assembler struct {
	nowFunc func() time.Time
}

// NewAssembler creates an Assembler on the real clock.
func NewAssembler() *Assembler {
	return &Assembler{nowFunc: time.Now}
}

// WithClock overrides the clock; intended for tests.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.nowFunc = now
	return a
}

type nowData struct {
	Date    string
	Clock   string
	Weekday string
}

type promptData struct {
	Name             string
	Persona          string
	Now              *nowData
	Memories         string
	WorldBooks       []types.WorldBookEntry
	UserPersona      string
	Emojis           []types.Emoji
	Directives       string
	OfflineSummaries []string
}

// AssembleOnline builds the short-message chat prompt.
func (a *Assembler) AssembleOnline(in AssembleInput) (*AssembleOutput, error) {
	return a.assemble(in, false)
}

// AssembleOffline builds the long-form narrative prompt.
func (a *Assembler) AssembleOffline(in AssembleInput) (*AssembleOutput, error) {
	return a.assemble(in, true)
}

func (a *Assembler) assemble(in AssembleInput, offline bool) (*AssembleOutput, error) {
	if in.Character == nil {
		return nil, fmt.Errorf("character is required")
	}

	vocab := types.BuildEmojiVocab(in.EmojiGroups)

	data := promptData{
		Name:             in.Character.Name,
		Persona:          strings.TrimSpace(in.Character.Prompt),
		Memories:         joinMemories(in.Memories),
		WorldBooks:       in.WorldBooks,
		UserPersona:      strings.TrimSpace(in.Persona),
		Emojis:           vocab.Emojis,
		OfflineSummaries: in.OfflineSummaries,
	}
	if in.Settings.RealtimeAwareness {
		data.Now = buildNow(a.nowFunc())
	}
	if offline {
		data.Directives = narrativeDirectives(in.NarrativePresets, in.LegacyPreset)
	}

	tmpl := onlinePromptTemplate
	if offline {
		tmpl = offlinePromptTemplate
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}
	systemPrompt := buf.String()

	messages := make([]models.ChatMessage, 0, in.Settings.ContextLength+1)
	messages = append(messages, models.SystemMessage(systemPrompt))
	messages = append(messages, a.flattenHistory(in, vocab)...)

	return &AssembleOutput{
		SystemPrompt: systemPrompt,
		Messages:     messages,
		Vocab:        vocab,
	}, nil
}

// joinMemories takes the newest entries of the memory list into one line.
func joinMemories(memories []types.Memory) string {
	if len(memories) == 0 {
		return ""
	}
	start := 0
	if len(memories) > memoryWindow {
		start = len(memories) - memoryWindow
	}
	parts := make([]string, 0, memoryWindow)
	for _, m := range memories[start:] {
		if c := strings.TrimSpace(m.Content); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "；")
}

var weekdayNames = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

func buildNow(now time.Time) *nowData {
	return &nowData{
		Date:    now.Format("2006年1月2日"),
		Clock:   now.Format("15:04"),
		Weekday: weekdayNames[int(now.Weekday())],
	}
}

func narrativeDirectives(presets []string, legacy string) string {
	if len(presets) > 0 {
		return strings.Join(presets, "\n")
	}
	if strings.TrimSpace(legacy) != "" {
		return strings.TrimSpace(legacy)
	}
	return defaultNarrativeDirective
}
