// Package chat orchestrates one reply generation: context assembly, model
// invocation, reply decomposition and paced emission.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yuli2514/rurichat/internal/config"
	"github.com/yuli2514/rurichat/internal/memory"
	"github.com/yuli2514/rurichat/internal/models"
	"github.com/yuli2514/rurichat/internal/prompt"
	"github.com/yuli2514/rurichat/internal/reply"
	"github.com/yuli2514/rurichat/internal/store"
	"github.com/yuli2514/rurichat/internal/types"
)

// ErrGenerationInFlight rejects a second concurrent generation for the same
// character. Each character's history is a single-writer resource; rejecting
// surfaces immediately instead of silently reordering appends.
var ErrGenerationInFlight = errors.New("reply generation already in flight for this character")

// Completer is the model call the service depends on.
type Completer interface {
	Complete(ctx context.Context, cfg types.ChatAPIConfig, msgs []models.ChatMessage, opts models.CompleteOptions) (string, error)
}

// Sink consumes emitted events; the rendering layer implements it.
type Sink interface {
	OnMessage(msg types.Message)
	OnRecall(msgID string)
}

// Service runs the pipeline against one store.
type Service struct {
	store      *store.Store
	completer  Completer
	assembler  *prompt.Assembler
	decomposer *reply.Decomposer
	emitter    *reply.Emitter
	engine     *memory.Engine
	maxTokens  int64
	log        *slog.Logger

	mu       sync.Mutex
	inflight map[string]bool
}

// NewService wires the pipeline.
func NewService(st *store.Store, completer Completer, tun config.Tunables, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:      st,
		completer:  completer,
		assembler:  prompt.NewAssembler(),
		decomposer: reply.NewDecomposer(),
		emitter:    reply.NewEmitter(tun.PaceDelay(), tun.RecallDelay()),
		engine:     memory.NewEngine(completer),
		maxTokens:  tun.MaxTokens,
		log:        log,
	}
}

// SendUserMessage appends one user message to the character's history and
// refreshes the character's last-message preview.
func (s *Service) SendUserMessage(charID string, msg types.Message) (types.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Sender = types.SenderUser
	if msg.Type == "" {
		msg.Type = types.TypeText
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	if msg.Mode == types.ModeOffline {
		if err := s.store.Offline.Append(charID, msg); err != nil {
			return types.Message{}, err
		}
		return msg, nil
	}
	if err := s.store.Messages.Append(charID, msg); err != nil {
		return types.Message{}, err
	}
	s.updateLastMessage(charID, msg.Content)
	return msg, nil
}

// GenerateReply runs one full pipeline pass for the character. Either the
// whole decomposed sequence is appended and emitted, or history stays as it
// was before the call.
func (s *Service) GenerateReply(ctx context.Context, charID, mode string, sink Sink) error {
	if err := s.acquire(charID); err != nil {
		return err
	}
	defer s.release(charID)

	char, err := s.store.Characters.Get(charID)
	if err != nil {
		return fmt.Errorf("failed to load character: %w", err)
	}
	settings := char.Settings.Normalize()

	in, err := s.buildInput(char, settings)
	if err != nil {
		return err
	}

	apiCfg, err := s.store.APIConfig.Get()
	if err != nil {
		return err
	}

	var out *prompt.AssembleOutput
	if mode == types.ModeOffline {
		out, err = s.assembler.AssembleOffline(*in)
	} else {
		out, err = s.assembler.AssembleOnline(*in)
	}
	if err != nil {
		return err
	}

	raw, err := s.completer.Complete(ctx, apiCfg, out.Messages, models.CompleteOptions{MaxTokens: s.maxTokens})
	if err != nil {
		return err
	}

	if mode == types.ModeOffline {
		return s.emitOffline(charID, raw, sink)
	}

	visible := visibleOf(in.History)
	events := s.decomposer.Decompose(raw, out.Vocab, visible)
	if len(events) == 0 {
		s.log.Warn("model reply decomposed to nothing", "character", charID)
		return nil
	}

	err = s.emitter.Emit(ctx, events,
		func(ev types.MessageEvent) error {
			// The store is the source of truth: persist before rendering
			// so a failed write emits nothing.
			if err := s.store.Messages.Append(charID, ev.Message); err != nil {
				return err
			}
			s.updateLastMessage(charID, ev.Content)
			if sink != nil {
				sink.OnMessage(ev.Message)
			}
			return nil
		},
		func(ev types.MessageEvent) {
			if err := s.store.Messages.MarkRecalled(charID, ev.ID); err != nil {
				s.log.Error("failed to mark message recalled", "id", ev.ID, "error", err)
				return
			}
			if sink != nil {
				sink.OnRecall(ev.ID)
			}
		},
	)
	if err != nil {
		return err
	}

	s.maybeAutoSummarize(ctx, charID, char, settings, apiCfg)
	return nil
}

func (s *Service) emitOffline(charID, raw string, sink Sink) error {
	msg := types.Message{
		ID:        uuid.NewString(),
		Sender:    types.SenderAI,
		Content:   raw,
		Type:      types.TypeText,
		Timestamp: time.Now(),
		Mode:      types.ModeOffline,
	}
	if err := s.store.Offline.Append(charID, msg); err != nil {
		return err
	}
	if sink != nil {
		sink.OnMessage(msg)
	}
	return nil
}

// SummarizeOfflineSession condenses the offline timeline into a rolling
// summary used as the next session's recap.
func (s *Service) SummarizeOfflineSession(ctx context.Context, charID string) error {
	char, err := s.store.Characters.Get(charID)
	if err != nil {
		return err
	}
	settings := char.Settings.Normalize()

	history, err := s.store.Offline.History(charID)
	if err != nil {
		return err
	}
	apiCfg, err := s.store.APIConfig.Get()
	if err != nil {
		return err
	}

	summary, err := s.engine.Summarize(ctx, memory.SummarizeInput{
		APIConfig: apiCfg,
		UserName:  settings.UserName,
		CharName:  summaryCharName(char, settings),
		History:   history,
	})
	if err != nil {
		return err
	}
	return s.store.Offline.AppendSummary(charID, summary)
}

func (s *Service) buildInput(char *types.Character, settings types.ResolvedSettings) (*prompt.AssembleInput, error) {
	history, err := s.store.Messages.List(char.ID)
	if err != nil {
		return nil, err
	}
	offlineHistory, err := s.store.Offline.History(char.ID)
	if err != nil {
		return nil, err
	}
	memories, err := s.store.Memories.List(char.ID)
	if err != nil {
		return nil, err
	}
	worldBooks, err := s.store.WorldBooks.ByIDs(settings.WorldBookIDs)
	if err != nil {
		return nil, err
	}
	emojiGroups, err := s.store.Emojis.GroupsByIDs(settings.EmojiGroupIDs)
	if err != nil {
		return nil, err
	}
	presets, err := s.store.Offline.EnabledPresets()
	if err != nil {
		return nil, err
	}
	legacyPreset, err := s.store.Offline.LegacyPreset()
	if err != nil {
		return nil, err
	}
	offlineSummaries, err := s.store.Offline.Summaries(char.ID)
	if err != nil {
		return nil, err
	}

	persona := settings.CustomPersonaContent
	if persona == "" && settings.UserPersonaID != "" {
		p, err := s.store.Personas.Get(settings.UserPersonaID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			persona = p.Content
		}
	}

	return &prompt.AssembleInput{
		Character:        char,
		Settings:         settings,
		History:          history,
		OfflineHistory:   offlineHistory,
		Memories:         memories,
		WorldBooks:       worldBooks,
		Persona:          persona,
		EmojiGroups:      emojiGroups,
		NarrativePresets: presets,
		LegacyPreset:     legacyPreset,
		OfflineSummaries: offlineSummaries,
	}, nil
}

// maybeAutoSummarize fires when the total message count lands exactly on a
// summary boundary. A failed summary is logged, never fails the reply that
// already landed.
func (s *Service) maybeAutoSummarize(ctx context.Context, charID string, char *types.Character, settings types.ResolvedSettings, apiCfg types.ChatAPIConfig) {
	if !settings.AutoSummary {
		return
	}
	total, err := s.store.Messages.Count(charID)
	if err != nil {
		s.log.Error("failed to count messages", "character", charID, "error", err)
		return
	}
	if !memory.ShouldAutoSummarize(total, settings.SummaryFreq) {
		return
	}

	visible, err := s.store.Messages.Visible(charID)
	if err != nil {
		s.log.Error("failed to load history for summary", "character", charID, "error", err)
		return
	}
	summary, err := s.engine.Summarize(ctx, memory.SummarizeInput{
		APIConfig:    apiCfg,
		UserName:     settings.UserName,
		CharName:     summaryCharName(char, settings),
		History:      visible,
		CustomPrompt: settings.SummaryPrompt,
		Rounds:       settings.SummaryFreq,
	})
	if err != nil {
		s.log.Error("auto summary failed", "character", charID, "error", err)
		return
	}
	if _, err := s.store.Memories.Append(charID, types.Memory{
		Content: summary,
		Type:    types.MemoryAuto,
	}); err != nil {
		s.log.Error("failed to store auto summary", "character", charID, "error", err)
	}
}

func summaryCharName(char *types.Character, settings types.ResolvedSettings) string {
	if settings.CharNameForSummary != "" {
		return settings.CharNameForSummary
	}
	return char.Name
}

func (s *Service) updateLastMessage(charID, content string) {
	_, err := s.store.Characters.Update(charID, func(c *types.Character) {
		c.LastMessage = content
	})
	if err != nil {
		s.log.Error("failed to update last message preview", "character", charID, "error", err)
	}
}

func (s *Service) acquire(charID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == nil {
		s.inflight = make(map[string]bool)
	}
	if s.inflight[charID] {
		return ErrGenerationInFlight
	}
	s.inflight[charID] = true
	return nil
}

func (s *Service) release(charID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, charID)
}

func visibleOf(history []types.Message) []types.Message {
	visible := make([]types.Message, 0, len(history))
	for _, m := range history {
		if m.Recalled {
			continue
		}
		visible = append(visible, m)
	}
	return visible
}
