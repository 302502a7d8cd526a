package models

// Chat roles on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ContentPart is one element of a multimodal turn.
type ContentPart struct {
	Text string
	// ImageURL carries an http(s) URL or an inline data URI. Images are
	// always sent at low detail to keep token cost bounded.
	ImageURL string
}

// ChatMessage is one role-tagged entry of the messages array. Content is the
// plain-string form; Parts, when set, takes precedence and produces a
// multimodal content array for vision-capable models.
type ChatMessage struct {
	Role    string
	Content string
	Parts   []ContentPart
}

// SystemMessage builds a system entry.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

// UserMessage builds a plain user entry.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// AssistantMessage builds a plain assistant entry.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}
