package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundwork/internal/models"
)

func newServicesFixture(t *testing.T) (*Store, *CardService, *ResourceService, *models.Player) {
	t.Helper()
	provider := newTestProvider(t)
	p := models.NewPlayer("alice", provider.StartingSpace())
	store := NewStore([]*models.Player{p})
	cards := NewCardService(store, provider, quietLog(), 7)
	resources := NewResourceService(store, quietLog())
	cards.InitDecks()
	return store, cards, resources, p
}

func TestResourceServiceAdjustments(t *testing.T) {
	_, _, resources, p := newServicesFixture(t)

	balance, err := resources.AddMoney(p.ID, 1000, "grant")
	require.NoError(t, err)
	assert.Equal(t, 1000, balance)

	balance, err = resources.RecordCost(p.ID, 300, "fee")
	require.NoError(t, err)
	assert.Equal(t, 700, balance)

	days, err := resources.AddTime(p.ID, 5, "review")
	require.NoError(t, err)
	assert.Equal(t, 5, days)

	pct, err := resources.PercentOfMoney(p.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 70, pct)

	_, err = resources.AddMoney(models.NewPlayer("ghost", "X").ID, 1, "nope")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestDrawCardsConfirmsActualIDs(t *testing.T) {
	_, cards, _, p := newServicesFixture(t)

	drawn, err := cards.DrawCards(p.ID, "E", 2)
	require.NoError(t, err)
	require.Len(t, drawn, 2)
	for _, id := range drawn {
		assert.True(t, p.HasCard(id))
		assert.Equal(t, "E", string(id[0]))
	}
}

func TestDrawCardsFallsBackToDefaultCount(t *testing.T) {
	_, cards, _, p := newServicesFixture(t)

	// A missing or unparseable declared count arrives here as zero.
	drawn, err := cards.DrawCards(p.ID, "E", 0)
	require.NoError(t, err)
	assert.Len(t, drawn, cards.DefaultDrawCount)
}

func TestDrawCardsReshufflesDiscardsAndStopsWhenExhausted(t *testing.T) {
	store, cards, _, p := newServicesFixture(t)

	// Drain the 4-card E deck.
	drawn, err := cards.DrawCards(p.ID, "E", 4)
	require.NoError(t, err)
	require.Len(t, drawn, 4)

	// Both piles empty: the draw stops short instead of failing.
	drawn, err = cards.DrawCards(p.ID, "E", 2)
	require.NoError(t, err)
	assert.Empty(t, drawn)

	// Discards return to circulation.
	_, err = cards.DiscardCards(p.ID, []string{"E001", "E002"})
	require.NoError(t, err)
	drawn, err = cards.DrawCards(p.ID, "E", 2)
	require.NoError(t, err)
	assert.Len(t, drawn, 2)
	assert.Empty(t, store.State().Discards["E"])
}

func TestDrawTimedCardActivatesIt(t *testing.T) {
	_, cards, _, p := newServicesFixture(t)

	drawn, err := cards.DrawCards(p.ID, "L", 1)
	require.NoError(t, err)
	require.Equal(t, []string{"L001"}, drawn)
	require.Len(t, p.ActiveCards, 1)
	assert.Equal(t, "L001", p.ActiveCards[0].CardID)
	assert.Equal(t, 3, p.ActiveCards[0].TurnsLeft)
}

func TestDiscardCardsSkipsCardsNotHeld(t *testing.T) {
	_, cards, _, p := newServicesFixture(t)
	drawn, err := cards.DrawCards(p.ID, "B", 1)
	require.NoError(t, err)

	removed, err := cards.DiscardCards(p.ID, []string{drawn[0], "B999"})
	require.NoError(t, err)
	assert.Equal(t, drawn, removed)
	assert.False(t, p.HasCard(drawn[0]))
}

func TestDiscardByTypeHonorsCount(t *testing.T) {
	_, cards, _, p := newServicesFixture(t)
	_, err := cards.DrawCards(p.ID, "E", 3)
	require.NoError(t, err)
	_, err = cards.DrawCards(p.ID, "B", 1)
	require.NoError(t, err)

	discarded, err := cards.DiscardByType(p.ID, "E", 2)
	require.NoError(t, err)
	assert.Len(t, discarded, 2)
	assert.Equal(t, 1, p.CountCardsOfType("E"))
	assert.Equal(t, 1, p.CountCardsOfType("B"), "other types untouched")
}

func TestTransferCard(t *testing.T) {
	provider := newTestProvider(t)
	alice := models.NewPlayer("alice", provider.StartingSpace())
	bob := models.NewPlayer("bob", provider.StartingSpace())
	store := NewStore([]*models.Player{alice, bob})
	cards := NewCardService(store, provider, quietLog(), 7)
	cards.InitDecks()

	drawn, err := cards.DrawCards(alice.ID, "W", 1)
	require.NoError(t, err)

	require.NoError(t, cards.TransferCard(alice.ID, bob.ID, drawn[0]))
	assert.False(t, alice.HasCard(drawn[0]))
	assert.True(t, bob.HasCard(drawn[0]))

	assert.Error(t, cards.TransferCard(alice.ID, bob.ID, drawn[0]), "card no longer held")
}
