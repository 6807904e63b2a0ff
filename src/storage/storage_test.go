package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "occam.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestLoadUnknownThreadIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	turns, err := store.LoadTurns(context.Background(), "no-such-thread", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestAppendOrderPreserved(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	threadID := store.NewThreadID()

	for i := 0; i < 10; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		require.NoError(t, store.AppendTurn(ctx, threadID, role, fmt.Sprintf("turn %d", i)))
	}

	turns, err := store.LoadTurns(ctx, threadID, 0)
	require.NoError(t, err)
	require.Len(t, turns, 10)
	for i, turn := range turns {
		assert.Equal(t, fmt.Sprintf("turn %d", i), turn.Content)
	}
}

func TestLoadTurnsLimitKeepsMostRecent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	threadID := store.NewThreadID()

	for i := 0; i < 8; i++ {
		require.NoError(t, store.AppendTurn(ctx, threadID, RoleUser, fmt.Sprintf("turn %d", i)))
	}

	turns, err := store.LoadTurns(ctx, threadID, 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	// Most recent three, still in append order.
	assert.Equal(t, "turn 5", turns[0].Content)
	assert.Equal(t, "turn 6", turns[1].Content)
	assert.Equal(t, "turn 7", turns[2].Content)
}

func TestThreadsAreIsolated(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a := store.NewThreadID()
	b := store.NewThreadID()
	require.NoError(t, store.AppendTurn(ctx, a, RoleUser, "in a"))
	require.NoError(t, store.AppendTurn(ctx, b, RoleUser, "in b"))

	turns, err := store.LoadTurns(ctx, a, 0)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "in a", turns[0].Content)
}

func TestMapAndResolveMessage(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MapMessage(ctx, "msg-1", "thread-a"))

	threadID, err := store.ResolveThread(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, "thread-a", threadID)

	// Unknown identifiers signal "start fresh", not an error.
	threadID, err = store.ResolveThread(ctx, "msg-unknown")
	require.NoError(t, err)
	assert.Empty(t, threadID)

	// Re-mapping overwrites.
	require.NoError(t, store.MapMessage(ctx, "msg-1", "thread-b"))
	threadID, err = store.ResolveThread(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, "thread-b", threadID)
}

func TestMapMessageIgnoresEmptyID(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.MapMessage(context.Background(), "", "thread-a"))
}

func TestReplayAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occam.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	threadID := store.NewThreadID()
	require.NoError(t, store.AppendTurn(ctx, threadID, RoleUser, "hello"))
	require.NoError(t, store.AppendTurn(ctx, threadID, RoleAssistant, "hi there"))
	require.NoError(t, store.MapMessage(ctx, "out-1", threadID))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	turns, err := reopened.LoadTurns(ctx, threadID, 0)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, RoleAssistant, turns[1].Role)

	resolved, err := reopened.ResolveThread(ctx, "out-1")
	require.NoError(t, err)
	assert.Equal(t, threadID, resolved)
}

func TestNewThreadIDsAreUnique(t *testing.T) {
	store, _ := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := store.NewThreadID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate thread id %s", id)
		seen[id] = true
	}
}

func TestListThreads(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a := store.NewThreadID()
	b := store.NewThreadID()
	require.NoError(t, store.AppendTurn(ctx, a, RoleUser, "one"))
	require.NoError(t, store.AppendTurn(ctx, a, RoleAssistant, "two"))
	require.NoError(t, store.AppendTurn(ctx, b, RoleUser, "three"))

	threads, err := store.ListThreads(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 2)

	counts := map[string]int{}
	for _, info := range threads {
		counts[info.ThreadID] = info.TurnCount
	}
	assert.Equal(t, 2, counts[a])
	assert.Equal(t, 1, counts[b])
}
