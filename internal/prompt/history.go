package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yuli2514/rurichat/internal/models"
	"github.com/yuli2514/rurichat/internal/types"
)

const recalledMarker = "该消息已被撤回"

// flattenHistory merges the online and offline timelines into one
// chronological window and maps each message to a role-tagged entry.
// Merging both modes keeps narrative continuity when the user switches
// between bubble chat and long-form mode.
func (a *Assembler) flattenHistory(in AssembleInput, vocab *types.EmojiVocab) []models.ChatMessage {
	merged := make([]types.Message, 0, len(in.History)+len(in.OfflineHistory))
	for _, m := range in.History {
		if m.Recalled {
			continue
		}
		merged = append(merged, m)
	}
	for _, m := range in.OfflineHistory {
		if m.Recalled {
			continue
		}
		merged = append(merged, m)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	if len(merged) > in.Settings.ContextLength {
		merged = merged[len(merged)-in.Settings.ContextLength:]
	}

	// Quote targets resolve against the full original timeline so a
	// recalled target is still recognized as recalled.
	byID := make(map[string]types.Message, len(in.History)+len(in.OfflineHistory))
	for _, m := range in.History {
		byID[m.ID] = m
	}
	for _, m := range in.OfflineHistory {
		byID[m.ID] = m
	}

	entries := make([]models.ChatMessage, 0, len(merged))
	for _, m := range merged {
		entries = append(entries, a.renderEntry(m, in, vocab, byID))
	}
	return entries
}

func (a *Assembler) renderEntry(m types.Message, in AssembleInput, vocab *types.EmojiVocab, byID map[string]types.Message) models.ChatMessage {
	role := models.RoleAssistant
	if m.Sender == types.SenderUser {
		role = models.RoleUser
	}
	label := a.senderLabel(m.Sender, in)

	var content string
	switch m.Type {
	case types.TypeVoice:
		content = fmt.Sprintf("[%s发来一条语音，内容是：] %s", label, m.Content)

	case types.TypeImage:
		if meaning, ok := vocab.URLToMeaning[m.Content]; ok {
			content = fmt.Sprintf("[发送了表情包：%s]", meaning)
		} else if m.Captured && strings.HasPrefix(m.Content, "data:image/") {
			// Vision-capable turn: instruction plus the inline photo.
			return models.ChatMessage{
				Role: role,
				Parts: []models.ContentPart{
					{Text: fmt.Sprintf("[%s发来一张照片，请结合照片内容回应]", label)},
					{ImageURL: m.Content},
				},
			}
		} else {
			content = "[发送了一张图片]"
		}

	case types.TypeTransfer:
		if m.Content != "" {
			content = fmt.Sprintf("[发送了一笔转账，备注：%s]", m.Content)
		} else {
			content = "[发送了一笔转账]"
		}

	default:
		content = m.Content
	}

	if m.Quote != nil {
		if prefix := a.quotePrefix(m, in, vocab, byID); prefix != "" {
			content = prefix + content
		}
	}
	return models.ChatMessage{Role: role, Content: content}
}

// quotePrefix expands a quote reference. A recalled target keeps the
// reference but never leaks its content; an unresolvable target drops the
// prefix entirely.
func (a *Assembler) quotePrefix(m types.Message, in AssembleInput, vocab *types.EmojiVocab, byID map[string]types.Message) string {
	target, found := byID[m.Quote.ID]
	if !found {
		return ""
	}

	quoted := m.Quote.Content
	if target.Recalled {
		quoted = recalledMarker
	}

	kind := "消息"
	if target.Type == types.TypeImage {
		kind = "图片"
		if _, ok := vocab.URLToMeaning[target.Content]; ok {
			kind = "表情包"
		}
	}

	return fmt.Sprintf("[%s引用了%s的%s：\"%s\"] ",
		a.senderLabel(m.Sender, in),
		a.senderLabel(target.Sender, in),
		kind,
		quoted,
	)
}

func (a *Assembler) senderLabel(sender string, in AssembleInput) string {
	if sender == types.SenderUser {
		if in.Settings.UserName != "" {
			return in.Settings.UserName
		}
		return "用户"
	}
	return in.Character.DisplayName()
}
