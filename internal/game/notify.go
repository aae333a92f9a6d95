package game

import "github.com/google/uuid"

// EventType labels a game notification.
type EventType string

const (
	EventTurnStarted    EventType = "turn_started"
	EventTurnEnded      EventType = "turn_ended"
	EventTurnSkipped    EventType = "turn_skipped"
	EventDiceRolled     EventType = "dice_rolled"
	EventEffectApplied  EventType = "effect_applied"
	EventEffectFailed   EventType = "effect_failed"
	EventChoiceCreated  EventType = "choice_created"
	EventChoiceResolved EventType = "choice_resolved"
	EventPlayerMoved    EventType = "player_moved"
	EventSnapshotRevert EventType = "snapshot_reverted"
	EventGameEnded      EventType = "game_ended"
)

// Event is a fire-and-forget notification about game progress. Delivery
// failures must never interrupt turn processing, so Notify returns nothing.
type Event struct {
	Type     EventType              `json:"type"`
	PlayerID uuid.UUID              `json:"playerId,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
}

// Notifier receives game events. Implementations must not block turn
// processing; anything slow goes async behind the interface.
type Notifier interface {
	Notify(ev Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

// Notify calls the wrapped function.
func (f NotifierFunc) Notify(ev Event) { f(ev) }

// MultiNotifier fans an event out to several notifiers.
type MultiNotifier []Notifier

// Notify delivers the event to every wrapped notifier.
func (m MultiNotifier) Notify(ev Event) {
	for _, n := range m {
		n.Notify(ev)
	}
}
