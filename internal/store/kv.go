// Package store provides the namespaced key-value persistence layer and the
// typed repositories over it. Entities reference each other by id only;
// references are resolved at read time and dangling ids resolve to nothing.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a directly addressed entity is missing.
// By-id collaborator lookups (world books, personas, emoji groups) never
// return it; they silently skip dangling ids instead.
var ErrNotFound = errors.New("store: not found")

// KV is the opaque namespaced key-value backend. Values are JSON documents.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// MemKV is an in-memory KV for tests.
type MemKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemKV creates an empty in-memory backend.
func NewMemKV() *MemKV {
	return &MemKV{data: make(map[string][]byte)}
}

func (m *MemKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemKV) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

func (m *MemKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemKV) Close() error { return nil }

func getJSON[T any](kv KV, key string) (T, bool, error) {
	var out T
	raw, ok, err := kv.Get(key)
	if err != nil {
		return out, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	if !ok {
		return out, false, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return out, true, nil
}

func putJSON(kv KV, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	if err := kv.Put(key, raw); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}
