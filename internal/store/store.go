package store

// Store aggregates the typed repositories over one KV backend.
type Store struct {
	kv KV

	Characters *CharacterRepo
	Messages   *MessageRepo
	Memories   *MemoryRepo
	WorldBooks *WorldBookRepo
	Emojis     *EmojiRepo
	Personas   *PersonaRepo
	APIConfig  *APIConfigRepo
	Offline    *OfflineRepo
}

// NewStore wires the repositories. The same KV is shared so cascades stay
// within one backend.
func NewStore(kv KV) *Store {
	s := &Store{kv: kv}
	s.Messages = &MessageRepo{kv: kv}
	s.Memories = &MemoryRepo{kv: kv}
	s.Offline = &OfflineRepo{kv: kv}
	s.Characters = &CharacterRepo{kv: kv, messages: s.Messages, memories: s.Memories, offline: s.Offline}
	s.WorldBooks = &WorldBookRepo{kv: kv}
	s.Emojis = &EmojiRepo{kv: kv}
	s.Personas = &PersonaRepo{kv: kv}
	s.APIConfig = &APIConfigRepo{kv: kv}
	return s
}

func (s *Store) Close() error {
	return s.kv.Close()
}
