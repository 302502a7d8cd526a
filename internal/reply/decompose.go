// Package reply decomposes raw model output into typed message events and
// paces their emission.
package reply

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yuli2514/rurichat/internal/imagecard"
	"github.com/yuli2514/rurichat/internal/types"
)

// recallTag marks a bubble to auto-retract shortly after sending.
const recallTag = "[RECALL]"

var (
	// Whole-line sticker reference by meaning, both colon variants.
	emojiTagRe = regexp.MustCompile(`^\[表情包[:：](.+)\]$`)
	// Whole-line image description, rendered as a placeholder card.
	imageTagRe = regexp.MustCompile(`(?i)^\[(?:图片|IMAGE|图像|画面)[:：](.+)\]$`)
	// Quote prefix referencing a prior message by substring.
	quoteTagRe = regexp.MustCompile(`^\[QUOTE[:：]([^\]]+)\]`)
	imageURLRe = regexp.MustCompile(`(?i)^https?://\S+\.(?:png|jpe?g|gif|webp)(?:\?\S*)?$`)
)

// Decomposer splits raw reply text into ordered message events. The clock
// and id source are injectable for tests.
type Decomposer struct {
	Now   func() time.Time
	NewID func() string
}

// NewDecomposer returns a Decomposer with the real clock.
func NewDecomposer() *Decomposer {
	return &Decomposer{Now: time.Now, NewID: uuid.NewString}
}

// Decompose walks the reply line by line. Blank lines and lines left empty
// after tag stripping produce no event. Tags are mutually exclusive per
// line except the recall suffix, which is stripped first and can co-occur
// with any other tag on the remaining text.
func (d *Decomposer) Decompose(raw string, vocab *types.EmojiVocab, history []types.Message) []types.MessageEvent {
	var events []types.MessageEvent
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		pendingRecall := false
		if strings.HasSuffix(line, recallTag) {
			pendingRecall = true
			line = strings.TrimSpace(strings.TrimSuffix(line, recallTag))
			if line == "" {
				continue
			}
		}

		content := line
		msgType := types.TypeText
		var quote *types.QuoteRef

		switch {
		case emojiTagRe.MatchString(line):
			meaning := emojiTagRe.FindStringSubmatch(line)[1]
			if url := lookupEmoji(vocab, meaning); url != "" {
				content = url
				msgType = types.TypeImage
			}
			// Unknown meanings pass through as literal text.

		case imageTagRe.MatchString(line):
			desc := imageTagRe.FindStringSubmatch(line)[1]
			if uri, err := imagecard.Render(desc); err == nil {
				content = uri
				msgType = types.TypeImage
			}

		case isImageContent(line):
			msgType = types.TypeImage

		case quoteTagRe.MatchString(line):
			m := quoteTagRe.FindStringSubmatch(line)
			rest := strings.TrimSpace(line[len(m[0]):])
			if rest == "" {
				continue
			}
			content = rest
			quote = resolveQuote(history, m[1])
		}

		events = append(events, types.MessageEvent{
			Message: types.Message{
				ID:        d.NewID(),
				Sender:    types.SenderAI,
				Content:   content,
				Type:      msgType,
				Timestamp: d.Now(),
				Quote:     quote,
			},
			PendingRecall: pendingRecall,
		})
	}
	return events
}

func lookupEmoji(vocab *types.EmojiVocab, meaning string) string {
	if vocab == nil {
		return ""
	}
	return vocab.MeaningToURL[meaning]
}

func isImageContent(content string) bool {
	return strings.HasPrefix(content, "data:image/") || imageURLRe.MatchString(content)
}

// resolveQuote finds the first non-recalled prior message containing the
// quoted substring. A miss attaches no quote; it is never an error.
func resolveQuote(history []types.Message, substr string) *types.QuoteRef {
	for _, m := range history {
		if m.Recalled {
			continue
		}
		if strings.Contains(m.Content, substr) {
			return &types.QuoteRef{
				ID:      m.ID,
				Sender:  m.Sender,
				Content: m.Content,
				Type:    m.Type,
			}
		}
	}
	return nil
}
