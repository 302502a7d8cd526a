package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuli2514/rurichat/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(NewMemKV())
}

func TestCharacterCRUD(t *testing.T) {
	s := newTestStore(t)

	c, err := s.Characters.Create(types.Character{Name: "Aki", Prompt: "cheerful"})
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)

	got, err := s.Characters.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aki", got.Name)

	updated, err := s.Characters.Update(c.ID, func(ch *types.Character) {
		ch.Remark = "小秋"
	})
	require.NoError(t, err)
	assert.Equal(t, "小秋", updated.Remark)
	assert.Equal(t, "小秋", updated.DisplayName())

	_, err = s.Characters.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCharacterDeleteCascades(t *testing.T) {
	s := newTestStore(t)

	c, err := s.Characters.Create(types.Character{Name: "Aki"})
	require.NoError(t, err)

	require.NoError(t, s.Messages.Append(c.ID, types.Message{ID: "m1", Sender: types.SenderUser, Content: "hi", Type: types.TypeText, Timestamp: time.Now()}))
	_, err = s.Memories.Append(c.ID, types.Memory{Content: "first day", Type: types.MemoryManual})
	require.NoError(t, err)
	require.NoError(t, s.Offline.Append(c.ID, types.Message{ID: "o1", Sender: types.SenderAI, Content: "night", Type: types.TypeText, Timestamp: time.Now()}))

	require.NoError(t, s.Characters.Delete(c.ID))

	msgs, err := s.Messages.List(c.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	mems, err := s.Memories.List(c.ID)
	require.NoError(t, err)
	assert.Empty(t, mems)

	offline, err := s.Offline.History(c.ID)
	require.NoError(t, err)
	assert.Empty(t, offline)
}

func TestMessageRecallPreservesContent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Messages.Append("c1", types.Message{ID: "m1", Content: "secret", Type: types.TypeText, Timestamp: time.Now()}))
	require.NoError(t, s.Messages.MarkRecalled("c1", "m1"))

	msgs, err := s.Messages.List("c1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Recalled)
	assert.Equal(t, "secret", msgs[0].Content)

	visible, err := s.Messages.Visible("c1")
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestDanglingReferencesResolveToNothing(t *testing.T) {
	s := newTestStore(t)

	wb, err := s.WorldBooks.Put(types.WorldBookEntry{Title: "world", Content: "lore"})
	require.NoError(t, err)

	entries, err := s.WorldBooks.ByIDs([]string{wb.ID, "gone"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "world", entries[0].Title)

	p, err := s.Personas.Get("gone")
	require.NoError(t, err)
	assert.Nil(t, p)

	groups, err := s.Emojis.GroupsByIDs([]string{"gone"})
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestMessageWritesSerialized(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Messages.Append("c1", types.Message{ID: "m0", Content: "hi"}))

	// An append and a recall flag flip racing over the same history must
	// both land; neither write may overwrite the other.
	const rounds = 200
	for i := 0; i < rounds; i++ {
		id := fmt.Sprintf("m%d", i+1)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Messages.Append("c1", types.Message{ID: id}))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Messages.MarkRecalled("c1", "m0"))
		}()
		wg.Wait()
	}

	count, err := s.Messages.Count("c1")
	require.NoError(t, err)
	assert.Equal(t, rounds+1, count)

	msgs, err := s.Messages.List("c1")
	require.NoError(t, err)
	assert.True(t, msgs[0].Recalled)
	assert.Equal(t, "hi", msgs[0].Content)
}

func TestOfflineLegacyPreset(t *testing.T) {
	s := newTestStore(t)

	preset, err := s.Offline.LegacyPreset()
	require.NoError(t, err)
	assert.Empty(t, preset)

	require.NoError(t, s.Offline.PutLegacyPreset("短句，留白多。"))
	preset, err = s.Offline.LegacyPreset()
	require.NoError(t, err)
	assert.Equal(t, "短句，留白多。", preset)
}

func TestAPIConfigPresets(t *testing.T) {
	s := newTestStore(t)

	cfg, err := s.APIConfig.Get()
	require.NoError(t, err)
	assert.False(t, cfg.Configured())

	active := types.ChatAPIConfig{Endpoint: "https://api.example.com/v1", Key: "k", Model: "m", Temperature: 0.8}
	require.NoError(t, s.APIConfig.Put(active))
	require.NoError(t, s.APIConfig.SavePreset(types.APIPreset{Name: "default", Config: active}))

	cfg, err = s.APIConfig.Get()
	require.NoError(t, err)
	assert.True(t, cfg.Configured())

	presets, err := s.APIConfig.Presets()
	require.NoError(t, err)
	require.Len(t, presets, 1)

	require.NoError(t, s.APIConfig.DeletePreset("default"))
	presets, err = s.APIConfig.Presets()
	require.NoError(t, err)
	assert.Empty(t, presets)
}

func TestSQLiteKVRoundTrip(t *testing.T) {
	path := t.TempDir() + "/test.db"
	kv, err := OpenSQLite(path)
	require.NoError(t, err)
	defer kv.Close()

	_, ok, err := kv.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Put("k", []byte(`{"a":1}`)))
	require.NoError(t, kv.Put("k", []byte(`{"a":2}`)))

	raw, ok, err := kv.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"a":2}`, string(raw))

	require.NoError(t, kv.Delete("k"))
	_, ok, err = kv.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}
