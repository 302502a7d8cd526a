package store

import (
	"sync"

	"github.com/yuli2514/rurichat/internal/types"
)

// MessageRepo provides access to per-character message histories. Writes go
// through a read-modify-write over the KV, so they are serialized with a
// repo-level lock; the recall timer mutates concurrently with the emit loop.
type MessageRepo struct {
	kv KV
	mu sync.Mutex
}

func messagesKey(charID string) string {
	return "messages_" + charID
}

// List returns a character's full online history, oldest first.
func (r *MessageRepo) List(charID string) ([]types.Message, error) {
	msgs, _, err := getJSON[[]types.Message](r.kv, messagesKey(charID))
	return msgs, err
}

// Visible returns the history without recalled entries. Recalled messages
// stay in the store but are excluded from model context.
func (r *MessageRepo) Visible(charID string) ([]types.Message, error) {
	msgs, err := r.List(charID)
	if err != nil {
		return nil, err
	}
	visible := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Recalled {
			continue
		}
		visible = append(visible, m)
	}
	return visible, nil
}

// Append adds one message to the end of the history.
func (r *MessageRepo) Append(charID string, msg types.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs, err := r.List(charID)
	if err != nil {
		return err
	}
	msgs = append(msgs, msg)
	return putJSON(r.kv, messagesKey(charID), msgs)
}

// Count returns the current history length including recalled entries.
func (r *MessageRepo) Count(charID string) (int, error) {
	msgs, err := r.List(charID)
	if err != nil {
		return 0, err
	}
	return len(msgs), nil
}

// MarkRecalled flips the recalled flag of one message. Content is preserved.
func (r *MessageRepo) MarkRecalled(charID, msgID string) error {
	return r.mutate(charID, msgID, func(m *types.Message) {
		m.Recalled = true
	})
}

// Edit replaces a message's content via the explicit edit action.
func (r *MessageRepo) Edit(charID, msgID, content string) error {
	return r.mutate(charID, msgID, func(m *types.Message) {
		m.Content = content
		m.Edited = true
	})
}

func (r *MessageRepo) mutate(charID, msgID string, apply func(*types.Message)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs, err := r.List(charID)
	if err != nil {
		return err
	}
	for i := range msgs {
		if msgs[i].ID == msgID {
			apply(&msgs[i])
			return putJSON(r.kv, messagesKey(charID), msgs)
		}
	}
	return ErrNotFound
}

func (r *MessageRepo) deleteAll(charID string) error {
	return r.kv.Delete(messagesKey(charID))
}
