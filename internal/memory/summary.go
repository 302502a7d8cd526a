// Package memory condenses chat history into memory entries.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuli2514/rurichat/internal/models"
	"github.com/yuli2514/rurichat/internal/types"
)

// ErrEmptyHistory is returned when there is nothing to summarize. Reply
// generation tolerates an empty history; the summary path does not.
var ErrEmptyHistory = errors.New("no history to summarize")

// summaryTemperature is fixed below the chat default to favor fidelity
// over creativity.
const summaryTemperature = 0.5

const summaryMaxTokens = 512

const defaultSummaryInstruction = `你是一个对话记忆总结助手。请用第三人称视角，把下面%s和%s之间的对话总结成一段简洁的记忆：保留关键事件、重要约定、情绪变化和双方透露的个人信息，按时间顺序组织，控制在200字以内。只输出总结本身，不要任何额外说明。`

// Completer is the single-shot model call the engine depends on.
// Satisfied by models.Gateway.
type Completer interface {
	Complete(ctx context.Context, cfg types.ChatAPIConfig, msgs []models.ChatMessage, opts models.CompleteOptions) (string, error)
}

// Engine builds condensed-summary prompts and runs them through the model.
type Engine struct {
	completer Completer
}

// NewEngine creates an Engine.
func NewEngine(c Completer) *Engine {
	return &Engine{completer: c}
}

// SummarizeInput is one summarization request.
type SummarizeInput struct {
	APIConfig types.ChatAPIConfig
	// UserName and CharName name the two sides in the default instruction.
	UserName string
	CharName string
	History  []types.Message
	// CustomPrompt replaces the default instruction verbatim when set.
	CustomPrompt string
	// Rounds bounds the slice to Rounds*2 trailing messages (one round is
	// one user plus one assistant turn). Zero means the whole visible
	// history.
	Rounds int
}

// Summarize runs one summarization call and returns the summary text.
func (e *Engine) Summarize(ctx context.Context, in SummarizeInput) (string, error) {
	visible := make([]types.Message, 0, len(in.History))
	for _, m := range in.History {
		if m.Recalled {
			continue
		}
		visible = append(visible, m)
	}
	if len(visible) == 0 {
		return "", ErrEmptyHistory
	}

	if in.Rounds > 0 && len(visible) > in.Rounds*2 {
		visible = visible[len(visible)-in.Rounds*2:]
	}

	userName := in.UserName
	if userName == "" {
		userName = "用户"
	}
	charName := in.CharName
	if charName == "" {
		charName = "角色"
	}

	instruction := strings.TrimSpace(in.CustomPrompt)
	if instruction == "" {
		instruction = fmt.Sprintf(defaultSummaryInstruction, userName, charName)
	}

	temperature := summaryTemperature
	summary, err := e.completer.Complete(ctx, in.APIConfig, []models.ChatMessage{
		models.SystemMessage(instruction),
		models.UserMessage(transcript(visible, userName, charName)),
	}, models.CompleteOptions{
		Temperature: &temperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to summarize history: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

// ShouldAutoSummarize is a stateless modulus check against the total
// message count. Truncating history can make the same boundary fire again;
// that matches the observed product behavior and is kept as-is.
func ShouldAutoSummarize(total, freq int) bool {
	return freq > 0 && total > 0 && total%freq == 0
}

func transcript(msgs []types.Message, userName, charName string) string {
	var sb strings.Builder
	for _, m := range msgs {
		label := charName
		if m.Sender == types.SenderUser {
			label = userName
		}
		sb.WriteString(label)
		sb.WriteString("：")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
