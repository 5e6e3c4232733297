package mcp

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_CreateUniqueUUIDs(t *testing.T) {
	store := NewSessionStore(SessionStoreOptions{})

	seen := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := store.Create()
			mu.Lock()
			seen[sess.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
	assert.Equal(t, 50, store.Len())
	for id := range seen {
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())
	}
}

func TestSessionStore_DeleteRetiresID(t *testing.T) {
	store := NewSessionStore(SessionStoreOptions{})
	sess := store.Create()

	got, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	assert.True(t, store.Delete(sess.ID))
	assert.False(t, store.Delete(sess.ID))

	_, ok = store.Get(sess.ID)
	assert.False(t, ok)
	assert.True(t, store.Retired(sess.ID))
	assert.Equal(t, SessionClosed, sess.State())
	assert.True(t, sess.Stream().IsClosed())
}

func TestSessionStore_NeverReusesIDs(t *testing.T) {
	ids := []string{"a", "a", "b", "a", "b", "c"}
	next := 0
	store := NewSessionStore(SessionStoreOptions{NewID: func() string {
		id := ids[next]
		next++
		return id
	}})

	first := store.Create()
	assert.Equal(t, "a", first.ID)

	second := store.Create()
	assert.Equal(t, "b", second.ID)

	store.Delete("a")
	third := store.Create()
	assert.Equal(t, "c", third.ID)
}

func TestSessionStore_RetiredIDsAreBounded(t *testing.T) {
	store := NewSessionStore(SessionStoreOptions{RetiredLimit: 2})

	var ids []string
	for i := 0; i < 3; i++ {
		sess := store.Create()
		ids = append(ids, sess.ID)
		store.Delete(sess.ID)
	}

	assert.False(t, store.Retired(ids[0]))
	assert.True(t, store.Retired(ids[1]))
	assert.True(t, store.Retired(ids[2]))
	assert.Len(t, store.retired, 2)
	assert.Len(t, store.retiredOrder, 2)
}

func TestSessionStore_Stats(t *testing.T) {
	store := NewSessionStore(SessionStoreOptions{})
	assert.Equal(t, SessionStats{}, store.Stats())

	a := store.Create()
	store.Create()
	assert.Equal(t, SessionInitializing, a.State())

	detach, err := a.Stream().Attach()
	require.NoError(t, err)
	defer detach()

	stats := store.Stats()
	assert.Equal(t, 2, stats.Live)
	assert.Equal(t, 1, stats.Streaming)
	assert.Equal(t, "0s", stats.MaxIdle)
}

func TestSessionStore_GetEmptyID(t *testing.T) {
	store := NewSessionStore(SessionStoreOptions{})
	_, ok := store.Get("")
	assert.False(t, ok)
}

func TestSessionStore_Broadcast(t *testing.T) {
	store := NewSessionStore(SessionStoreOptions{})
	a := store.Create()
	b := store.Create()
	closed := store.Create()
	store.Delete(closed.ID)

	n := store.Broadcast(NewNotification(MethodResourcesListChanged, nil))
	assert.Equal(t, 2, n)

	for _, sess := range []*Session{a, b} {
		event := <-sess.Stream().Events()
		assert.JSONEq(t, `{"jsonrpc":"2.0","method":"notifications/resources/list_changed"}`, string(event.Data))
	}
}

func TestSessionStore_CloseAll(t *testing.T) {
	store := NewSessionStore(SessionStoreOptions{})
	var sessions []*Session
	for i := 0; i < 3; i++ {
		sessions = append(sessions, store.Create())
	}

	store.CloseAll()

	assert.Equal(t, 0, store.Len())
	for _, sess := range sessions {
		assert.True(t, store.Retired(sess.ID), fmt.Sprintf("session %s", sess.ID))
	}
}

func TestSessionState_String(t *testing.T) {
	assert.Equal(t, "initializing", SessionInitializing.String())
	assert.Equal(t, "active", SessionActive.String())
	assert.Equal(t, "closed", SessionClosed.String())
}
