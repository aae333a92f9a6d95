package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundwork/internal/models"
)

func newStoreWithPlayer(t *testing.T) (*Store, *models.Player) {
	t.Helper()
	p := models.NewPlayer("alice", "START")
	p.Money = 100
	return NewStore([]*models.Player{p}), p
}

func TestStoreBeginCommitLifecycle(t *testing.T) {
	store, p := newStoreWithPlayer(t)
	require.False(t, store.InTurn())

	require.NoError(t, store.BeginTurn())
	assert.True(t, store.InTurn())
	assert.Error(t, store.BeginTurn(), "double begin must fail")

	// Mutations land on TEMP; REAL is untouched until commit.
	store.Update(func(s *State) { s.Player(p.ID).Money = 500 })
	assert.Equal(t, 500, store.State().Player(p.ID).Money)
	assert.Equal(t, 100, store.Real().Player(p.ID).Money)

	require.NoError(t, store.Commit())
	assert.False(t, store.InTurn())
	assert.Equal(t, 500, store.Real().Player(p.ID).Money)
	assert.Error(t, store.Commit(), "nothing left to commit")
}

func TestStoreDiscardTempDropsUncommittedWork(t *testing.T) {
	store, p := newStoreWithPlayer(t)
	require.NoError(t, store.BeginTurn())
	store.Update(func(s *State) { s.Player(p.ID).Money = 999 })

	store.DiscardTemp()
	assert.False(t, store.InTurn())
	assert.Equal(t, 100, store.State().Player(p.ID).Money)

	// A fresh turn starts from the committed state.
	require.NoError(t, store.BeginTurn())
	assert.Equal(t, 100, store.State().Player(p.ID).Money)
}

func TestStoreTempSharesNothingWithReal(t *testing.T) {
	store, p := newStoreWithPlayer(t)
	store.Real().Decks["E"] = []string{"E001", "E002"}
	store.Real().PlayerTurnCounts[p.ID] = 1
	require.NoError(t, store.BeginTurn())

	store.Update(func(s *State) {
		s.Decks["E"] = s.Decks["E"][:1]
		s.PlayerTurnCounts[p.ID] = 2
		pl := s.Player(p.ID)
		pl.Hand = append(pl.Hand, "E002")
		pl.VisitedSpaces["START"] = true
	})

	real := store.Real()
	assert.Len(t, real.Decks["E"], 2)
	assert.Equal(t, 1, real.PlayerTurnCounts[p.ID])
	assert.Empty(t, real.Player(p.ID).Hand)
	assert.False(t, real.Player(p.ID).VisitedSpaces["START"])
}

func TestStoreUpdateRealBypassesTemp(t *testing.T) {
	store, p := newStoreWithPlayer(t)
	require.NoError(t, store.BeginTurn())

	store.UpdateReal(func(s *State) { s.Player(p.ID).Money = 42 })
	assert.Equal(t, 42, store.Real().Player(p.ID).Money)
	assert.Equal(t, 100, store.State().Player(p.ID).Money, "TEMP keeps its own copy")
}

func TestStorePlayerLookup(t *testing.T) {
	store, p := newStoreWithPlayer(t)
	got, err := store.Player(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)

	_, err = store.Player(models.NewPlayer("ghost", "START").ID)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
