package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/yuli2514/rurichat/internal/types"
)

// MemoryRepo provides access to per-character memory entries.
type MemoryRepo struct {
	kv KV
}

func memoriesKey(charID string) string {
	return "memories_" + charID
}

// List returns a character's memories, oldest first.
func (r *MemoryRepo) List(charID string) ([]types.Memory, error) {
	mems, _, err := getJSON[[]types.Memory](r.kv, memoriesKey(charID))
	return mems, err
}

// Append adds one memory entry, minting id and timestamp when absent.
func (r *MemoryRepo) Append(charID string, mem types.Memory) (types.Memory, error) {
	if mem.ID == "" {
		mem.ID = uuid.NewString()
	}
	if mem.Timestamp.IsZero() {
		mem.Timestamp = time.Now()
	}
	mems, err := r.List(charID)
	if err != nil {
		return types.Memory{}, err
	}
	mems = append(mems, mem)
	if err := putJSON(r.kv, memoriesKey(charID), mems); err != nil {
		return types.Memory{}, err
	}
	return mem, nil
}

func (r *MemoryRepo) deleteAll(charID string) error {
	return r.kv.Delete(memoriesKey(charID))
}
