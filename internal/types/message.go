package types

import "time"

// Message senders.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Message content types.
const (
	TypeText     = "text"
	TypeImage    = "image"
	TypeVoice    = "voice"
	TypeTransfer = "transfer"
)

// Chat modes. Online is the default bubble chat; offline is the long-form
// narrative mode sharing the same timeline.
const (
	ModeOnline  = ""
	ModeOffline = "offline"
)

// QuoteRef is a by-value snapshot of a quoted message. The target is
// re-resolved by id at prompt-assembly time so a later recall of the target
// never leaks its content to the model.
type QuoteRef struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// Message is one chat history entry. Append-only by timestamp; once rendered
// only Recalled, Edited and Content (via explicit edit) may change.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Recalled  bool      `json:"recalled,omitempty"`
	Edited    bool      `json:"edited,omitempty"`
	Quote     *QuoteRef `json:"quote,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	// Captured marks a user photo carried inline as a data URI, which is
	// forwarded to vision-capable models as an image part.
	Captured bool `json:"captured,omitempty"`
}

// MessageEvent is one decomposed unit of a model reply, ready to append and
// render. PendingRecall asks the emitter to flip Recalled after the recall
// delay without touching Content.
type MessageEvent struct {
	Message
	PendingRecall bool `json:"-"`
}

// Memory entry types.
const (
	MemoryManual = "manual"
	MemoryAuto   = "auto"
)

// Memory is one condensed memory entry of a character.
type Memory struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}
