package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundwork/internal/models"
)

func TestMovementDestinations(t *testing.T) {
	m := NewMovementResolver(newTestProvider(t), quietLog())

	assert.Equal(t, []string{"WORK"}, m.Destinations("START", models.VisitFirst))
	assert.Equal(t, []string{"FORK-A", "FORK-B"}, m.Destinations("WORK", models.VisitFirst))
	assert.Empty(t, m.Destinations("FORK-A", models.VisitFirst), "terminal space")
	assert.Empty(t, m.Destinations("DICE-GATE", models.VisitFirst), "dice-routed space has no static destinations")
	assert.Empty(t, m.Destinations("UNKNOWN", models.VisitFirst))
}

func TestMovementSubsequentFallsBackToFirst(t *testing.T) {
	m := NewMovementResolver(newTestProvider(t), quietLog())
	spec, ok := m.Spec("START", models.VisitSubsequent)
	require.True(t, ok)
	assert.Equal(t, []string{"WORK"}, spec.Destinations)
}

func TestDiceDestination(t *testing.T) {
	m := NewMovementResolver(newTestProvider(t), quietLog())

	require.True(t, m.IsDiceRouted("DICE-GATE", models.VisitFirst))
	assert.False(t, m.IsDiceRouted("WORK", models.VisitFirst))

	for roll, want := range map[int]string{1: "FORK-A", 3: "FORK-A", 4: "FORK-B", 6: "FORK-B"} {
		dest, ok := m.DiceDestination("DICE-GATE", models.VisitFirst, roll)
		require.True(t, ok, "roll %d", roll)
		assert.Equal(t, want, dest, "roll %d", roll)
	}

	_, ok := m.DiceDestination("DICE-GATE", models.VisitFirst, 0)
	assert.False(t, ok, "out-of-range roll")
	_, ok = m.DiceDestination("WORK", models.VisitFirst, 3)
	assert.False(t, ok, "space without dice routing")
}

func TestMovementOptions(t *testing.T) {
	opts := MovementOptions([]string{"A", "B"})
	require.Len(t, opts, 2)
	assert.Equal(t, ChoiceOption{ID: "A", Label: "A"}, opts[0])
}
