package history

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"groundwork/internal/game"
)

func TestNoopRecorderIsSafeEverywhere(t *testing.T) {
	r := NewRecorder("", "", 0, logrus.New())

	assert.NoError(t, r.Ping(context.Background()))
	r.Record(uuid.New(), uuid.New(), "turn_started", "Turn 1 started", nil)
	assert.NoError(t, r.Close())
}

func TestNotifierAdaptsEvents(t *testing.T) {
	r := NewRecorder("", "", 0, logrus.New())
	n := r.Notifier(uuid.New())

	// Must not panic or block without a backing client.
	n.Notify(game.Event{Type: game.EventDiceRolled, Message: "Rolled a 4"})
}
