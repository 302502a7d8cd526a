package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/yuli2514/rurichat/internal/types"
)

const charactersKey = "characters"

// CharacterRepo provides access to the character list.
type CharacterRepo struct {
	kv       KV
	messages *MessageRepo
	memories *MemoryRepo
	offline  *OfflineRepo
}

// List returns all characters in creation order.
func (r *CharacterRepo) List() ([]types.Character, error) {
	chars, _, err := getJSON[[]types.Character](r.kv, charactersKey)
	return chars, err
}

// Get fetches a character by id.
func (r *CharacterRepo) Get(id string) (*types.Character, error) {
	chars, err := r.List()
	if err != nil {
		return nil, err
	}
	for i := range chars {
		if chars[i].ID == id {
			c := chars[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// Create stores a new character, minting an id when absent.
func (r *CharacterRepo) Create(c types.Character) (types.Character, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	chars, err := r.List()
	if err != nil {
		return types.Character{}, err
	}
	chars = append(chars, c)
	if err := putJSON(r.kv, charactersKey, chars); err != nil {
		return types.Character{}, err
	}
	return c, nil
}

// Update applies a partial-merge mutation to a stored character.
func (r *CharacterRepo) Update(id string, apply func(*types.Character)) (*types.Character, error) {
	chars, err := r.List()
	if err != nil {
		return nil, err
	}
	for i := range chars {
		if chars[i].ID != id {
			continue
		}
		apply(&chars[i])
		chars[i].ID = id
		chars[i].UpdatedAt = time.Now()
		if err := putJSON(r.kv, charactersKey, chars); err != nil {
			return nil, err
		}
		c := chars[i]
		return &c, nil
	}
	return nil, ErrNotFound
}

// Delete removes a character and cascades to its message history, memories
// and offline data.
func (r *CharacterRepo) Delete(id string) error {
	chars, err := r.List()
	if err != nil {
		return err
	}
	kept := chars[:0]
	found := false
	for _, c := range chars {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return ErrNotFound
	}
	if err := putJSON(r.kv, charactersKey, kept); err != nil {
		return err
	}
	if err := r.messages.deleteAll(id); err != nil {
		return err
	}
	if err := r.memories.deleteAll(id); err != nil {
		return err
	}
	return r.offline.deleteAll(id)
}
