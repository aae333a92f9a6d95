package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ChoiceService owns the single pending player decision. A choice is an
// explicit pending-request record in shared state plus this resolver entry
// point: the orchestrator issues the request and suspends that logical step
// until ResolveChoice is invoked, rather than blocking a goroutine.
type ChoiceService struct {
	store    *Store
	notifier Notifier
	log      *logrus.Entry
}

// NewChoiceService wires a choice service to the store and notifier.
func NewChoiceService(store *Store, notifier Notifier, log *logrus.Entry) *ChoiceService {
	return &ChoiceService{store: store, notifier: notifier, log: log}
}

// Pending returns the outstanding choice, or nil.
func (c *ChoiceService) Pending() *Choice {
	return c.store.State().PendingChoice
}

// CreateChoice records a pending choice for the player and notifies. At
// most one choice may be outstanding; creating a second is an error, since
// the game state must never advance past an unresolved decision.
func (c *ChoiceService) CreateChoice(playerID uuid.UUID, choiceType, prompt string, options []ChoiceOption) (*Choice, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("choice for player %s has no options", playerID)
	}
	if existing := c.Pending(); existing != nil {
		return nil, fmt.Errorf("choice %s is already awaiting resolution", existing.ID)
	}
	choice := &Choice{
		ID:       uuid.New(),
		PlayerID: playerID,
		Type:     choiceType,
		Prompt:   prompt,
		Options:  options,
	}
	c.store.Update(func(s *State) { s.PendingChoice = choice })
	c.notifier.Notify(Event{
		Type:     EventChoiceCreated,
		PlayerID: playerID,
		Message:  prompt,
		Payload:  map[string]interface{}{"choiceId": choice.ID, "choiceType": choiceType, "options": options},
	})
	c.log.WithFields(logrus.Fields{"player": playerID, "type": choiceType, "options": len(options)}).Debug("choice created")
	return choice, nil
}

// Resolve validates the selection against the pending choice, clears it,
// and returns the resolved choice plus the selected option id. The caller
// applies the consequence (move intent, card selection).
func (c *ChoiceService) Resolve(choiceID uuid.UUID, optionID string) (*Choice, error) {
	pending := c.Pending()
	if pending == nil {
		return nil, ErrNoPendingChoice
	}
	if pending.ID != choiceID {
		return nil, fmt.Errorf("choice %s is not the pending choice", choiceID)
	}
	valid := false
	for _, opt := range pending.Options {
		if opt.ID == optionID {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("option %q is not offered by choice %s", optionID, choiceID)
	}
	c.store.Update(func(s *State) { s.PendingChoice = nil })
	c.notifier.Notify(Event{
		Type:     EventChoiceResolved,
		PlayerID: pending.PlayerID,
		Payload:  map[string]interface{}{"choiceId": choiceID, "option": optionID},
	})
	return pending, nil
}

// ClearStale drops any pending choice without resolving it. Called at turn
// start; only one player acts at a time, so an unresolved choice from a
// previous step is implicitly cancelled.
func (c *ChoiceService) ClearStale() {
	if c.Pending() == nil {
		return
	}
	c.log.Debug("clearing stale pending choice")
	c.store.Update(func(s *State) { s.PendingChoice = nil })
}
