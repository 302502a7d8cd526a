package store

import (
	"github.com/google/uuid"

	"github.com/yuli2514/rurichat/internal/types"
)

const (
	worldBooksKey  = "worldbooks"
	emojiGroupsKey = "emoji_groups"
	personasKey    = "personas"
)

// WorldBookRepo provides access to the global world book pool.
type WorldBookRepo struct {
	kv KV
}

func (r *WorldBookRepo) List() ([]types.WorldBookEntry, error) {
	entries, _, err := getJSON[[]types.WorldBookEntry](r.kv, worldBooksKey)
	return entries, err
}

// ByIDs resolves referenced entries in the given order. Dangling ids are
// skipped, never an error.
func (r *WorldBookRepo) ByIDs(ids []string) ([]types.WorldBookEntry, error) {
	entries, err := r.List()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]types.WorldBookEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	var out []types.WorldBookEntry
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *WorldBookRepo) Put(entry types.WorldBookEntry) (types.WorldBookEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entries, err := r.List()
	if err != nil {
		return types.WorldBookEntry{}, err
	}
	replaced := false
	for i := range entries {
		if entries[i].ID == entry.ID {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	if err := putJSON(r.kv, worldBooksKey, entries); err != nil {
		return types.WorldBookEntry{}, err
	}
	return entry, nil
}

func (r *WorldBookRepo) Delete(id string) error {
	entries, err := r.List()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	return putJSON(r.kv, worldBooksKey, kept)
}

// EmojiRepo provides access to the global emoji group pool.
type EmojiRepo struct {
	kv KV
}

func (r *EmojiRepo) ListGroups() ([]types.EmojiGroup, error) {
	groups, _, err := getJSON[[]types.EmojiGroup](r.kv, emojiGroupsKey)
	return groups, err
}

// GroupsByIDs resolves referenced groups in order, skipping dangling ids.
func (r *EmojiRepo) GroupsByIDs(ids []string) ([]types.EmojiGroup, error) {
	groups, err := r.ListGroups()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]types.EmojiGroup, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	var out []types.EmojiGroup
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *EmojiRepo) PutGroup(group types.EmojiGroup) (types.EmojiGroup, error) {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	groups, err := r.ListGroups()
	if err != nil {
		return types.EmojiGroup{}, err
	}
	replaced := false
	for i := range groups {
		if groups[i].ID == group.ID {
			groups[i] = group
			replaced = true
			break
		}
	}
	if !replaced {
		groups = append(groups, group)
	}
	if err := putJSON(r.kv, emojiGroupsKey, groups); err != nil {
		return types.EmojiGroup{}, err
	}
	return group, nil
}

func (r *EmojiRepo) DeleteGroup(id string) error {
	groups, err := r.ListGroups()
	if err != nil {
		return err
	}
	kept := groups[:0]
	for _, g := range groups {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	return putJSON(r.kv, emojiGroupsKey, kept)
}

// PersonaRepo provides access to the global persona pool.
type PersonaRepo struct {
	kv KV
}

func (r *PersonaRepo) List() ([]types.Persona, error) {
	personas, _, err := getJSON[[]types.Persona](r.kv, personasKey)
	return personas, err
}

// Get resolves a persona by id. A dangling id returns (nil, nil).
func (r *PersonaRepo) Get(id string) (*types.Persona, error) {
	personas, err := r.List()
	if err != nil {
		return nil, err
	}
	for i := range personas {
		if personas[i].ID == id {
			p := personas[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (r *PersonaRepo) Put(p types.Persona) (types.Persona, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	personas, err := r.List()
	if err != nil {
		return types.Persona{}, err
	}
	replaced := false
	for i := range personas {
		if personas[i].ID == p.ID {
			personas[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		personas = append(personas, p)
	}
	if err := putJSON(r.kv, personasKey, personas); err != nil {
		return types.Persona{}, err
	}
	return p, nil
}

func (r *PersonaRepo) Delete(id string) error {
	personas, err := r.List()
	if err != nil {
		return err
	}
	kept := personas[:0]
	for _, p := range personas {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return putJSON(r.kv, personasKey, kept)
}
