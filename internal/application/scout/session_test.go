package scout

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draft-scout-api/internal/domain/entity"
)

func TestMemoryTurnStoreAppendAndHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTurnStore(40)

	err := store.Append(ctx, "s1",
		entity.NewTurn(entity.RoleUser, "who is the best quarterback"),
		entity.NewTurn(entity.RoleAssistant, "Marcus Webb leads the board."),
	)
	require.NoError(t, err)

	turns, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, entity.RoleUser, turns[0].Role)
	assert.Equal(t, entity.RoleAssistant, turns[1].Role)
}

func TestMemoryTurnStoreIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTurnStore(40)

	require.NoError(t, store.Append(ctx, "s1", entity.NewTurn(entity.RoleUser, "hello")))

	turns, err := store.History(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestMemoryTurnStoreEvictsOldestPastCap(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTurnStore(4)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Append(ctx, "s1",
			entity.NewTurn(entity.RoleUser, fmt.Sprintf("question %d", i)),
			entity.NewTurn(entity.RoleAssistant, fmt.Sprintf("answer %d", i)),
		))
	}

	turns, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, "question 2", turns[0].Content)
	assert.Equal(t, "answer 3", turns[3].Content)
}

func TestMemoryTurnStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTurnStore(40)

	require.NoError(t, store.Append(ctx, "s1", entity.NewTurn(entity.RoleUser, "hello")))
	require.NoError(t, store.Reset(ctx, "s1"))

	turns, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestMemoryTurnStoreResetMissingSessionIsNoError(t *testing.T) {
	store := NewMemoryTurnStore(40)
	assert.NoError(t, store.Reset(context.Background(), "never-seen"))
}

func TestSessionManagerAppendExchange(t *testing.T) {
	ctx := context.Background()
	mgr := NewSessionManager(NewMemoryTurnStore(40))

	require.NoError(t, mgr.AppendExchange(ctx, "s1", "top edge rushers?", "The board starts with..."))

	turns, err := mgr.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "top edge rushers?", turns[0].Content)
	assert.Equal(t, entity.RoleAssistant, turns[1].Role)
}
