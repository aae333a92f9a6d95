package game

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"groundwork/internal/data"
	"groundwork/internal/models"
)

// eventRecorder captures game events for test assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Notify(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) findByType(t EventType) *Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return &r.events[i]
		}
	}
	return nil
}

func (r *eventRecorder) countByType(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (r *eventRecorder) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// newTestProvider builds a small but complete board:
//
//	START --fixed--> WORK --choice--> FORK-A / FORK-B
//	DICE-GATE --dice--> FORK-A (1-3) / FORK-B (4-6)
//	LOOP --fixed--> LOOP (single-player turn cycling)
//	PRE-FINISH --fixed--> FINISH (ending space)
func newTestProvider(t *testing.T) *data.StaticProvider {
	t.Helper()

	effects := []data.EffectRecord{
		{SpaceName: "START", VisitType: models.VisitFirst, EffectType: "money", EffectAction: "add", EffectValue: "100", TriggerType: data.TriggerAuto, Description: "Signing bonus"},
		{SpaceName: "WORK", VisitType: models.VisitFirst, EffectType: "cards", EffectAction: "draw_e", EffectValue: "2", TriggerType: data.TriggerAuto, Description: "Expeditor contacts"},
		{SpaceName: "WORK", VisitType: models.VisitFirst, EffectType: "money", EffectAction: "add", EffectValue: "500", Condition: "dice_roll_6", TriggerType: data.TriggerAuto, Description: "Lucky break"},
		{SpaceName: "WORK", VisitType: models.VisitFirst, EffectType: "cards", EffectAction: "draw_b", EffectValue: "1", TriggerType: data.TriggerManual, Description: "Apply for a loan"},
		{SpaceName: "WORK", VisitType: models.VisitFirst, EffectType: "time", EffectAction: "add", EffectValue: "3", TriggerType: data.TriggerAuto, Description: "Design review"},
		{SpaceName: "LOOP", VisitType: models.VisitFirst, EffectType: "money", EffectAction: "add", EffectValue: "10", TriggerType: data.TriggerAuto, Description: "Stipend"},
		{SpaceName: "BAD-TABLE", VisitType: models.VisitFirst, EffectType: "cards", EffectAction: "draw_e", EffectValue: "NaN", TriggerType: data.TriggerAuto, Description: "Smudged cell"},
	}
	dice := []data.DiceOutcome{
		{SpaceName: "DICE-GATE", VisitType: models.VisitFirst, OutcomeType: data.OutcomeNextStep,
			Rolls: [6]string{"FORK-A", "FORK-A", "FORK-A", "FORK-B", "FORK-B", "FORK-B"}},
		{SpaceName: "DICE-GATE", VisitType: models.VisitFirst, OutcomeType: data.OutcomeFees,
			Rolls: [6]string{"", "", "", "100", "", ""}},
		{SpaceName: "DICE-GATE", VisitType: models.VisitFirst, OutcomeType: data.OutcomeCards,
			Rolls: [6]string{"", "", "draw_e:2", "", "", ""}},
	}
	movement := []data.MovementSpec{
		{SpaceName: "START", VisitType: models.VisitFirst, MovementType: data.MovementFixed, Destinations: []string{"WORK"}},
		{SpaceName: "WORK", VisitType: models.VisitFirst, MovementType: data.MovementChoice, Destinations: []string{"FORK-A", "FORK-B"}},
		{SpaceName: "DICE-GATE", VisitType: models.VisitFirst, MovementType: data.MovementDice},
		{SpaceName: "FORK-A", VisitType: models.VisitFirst, MovementType: data.MovementNone},
		{SpaceName: "FORK-B", VisitType: models.VisitFirst, MovementType: data.MovementNone},
		{SpaceName: "LOOP", VisitType: models.VisitFirst, MovementType: data.MovementFixed, Destinations: []string{"LOOP"}},
		{SpaceName: "PRE-FINISH", VisitType: models.VisitFirst, MovementType: data.MovementFixed, Destinations: []string{"FINISH"}},
		{SpaceName: "FINISH", VisitType: models.VisitFirst, MovementType: data.MovementNone},
		{SpaceName: "BAD-TABLE", VisitType: models.VisitFirst, MovementType: data.MovementNone},
	}
	configs := []data.SpaceConfig{
		{SpaceName: "START", Phase: "SETUP", IsStartingSpace: true},
		{SpaceName: "WORK", Phase: "DESIGN", CanNegotiate: true, RequiredActions: 1},
		{SpaceName: "DICE-GATE", Phase: "REGULATORY"},
		{SpaceName: "FORK-A", Phase: "REGULATORY"},
		{SpaceName: "FORK-B", Phase: "REGULATORY"},
		{SpaceName: "LOOP", Phase: "CONSTRUCTION", CanNegotiate: true},
		{SpaceName: "PRE-FINISH", Phase: "CONSTRUCTION"},
		{SpaceName: "FINISH", Phase: "END", IsEndingSpace: true},
		{SpaceName: "BAD-TABLE", Phase: "DESIGN", CanNegotiate: true},
	}
	cards := []data.Card{
		{ID: "E001", Type: "E", Name: "Expeditor favor"},
		{ID: "E002", Type: "E", Name: "Expeditor favor"},
		{ID: "E003", Type: "E", Name: "Expeditor favor"},
		{ID: "E004", Type: "E", Name: "Expeditor favor"},
		{ID: "B001", Type: "B", Name: "Bank loan", Cost: 50000},
		{ID: "B002", Type: "B", Name: "Bank loan", Cost: 75000},
		{ID: "W001", Type: "W", Name: "Foundation work", WorkScope: 2000000},
		{ID: "L001", Type: "L", Name: "Permit delay", Duration: 3, PerTurnTime: 1},
		{ID: "I001", Type: "I", Name: "Investor loan", Cost: 100000},
	}

	p, err := data.NewStaticProvider(effects, dice, movement, configs, cards)
	require.NoError(t, err)
	return p
}

// newTestOrchestrator builds an orchestrator with the test board, quiet
// logging, and a deterministic seed. The game is not started.
func newTestOrchestrator(t *testing.T, names ...string) (*Orchestrator, []*models.Player, *eventRecorder) {
	t.Helper()

	provider := newTestProvider(t)
	players := make([]*models.Player, len(names))
	for i, name := range names {
		players[i] = models.NewPlayer(name, provider.StartingSpace())
	}
	rec := &eventRecorder{}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	orch := NewOrchestrator(players, Config{
		Data:     provider,
		Notifier: rec,
		Logger:   logger,
		Seed:     42,
		MaxTurns: 500,
	})
	return orch, players, rec
}

// placePlayer teleports a player in both REAL and any live TEMP state, for
// tests that start mid-board.
func placePlayer(t *testing.T, o *Orchestrator, playerID uuid.UUID, space string) {
	t.Helper()
	o.store.UpdateReal(func(s *State) {
		if p := s.Player(playerID); p != nil {
			p.Space = space
		}
	})
	if o.store.InTurn() {
		o.store.Update(func(s *State) {
			if p := s.Player(playerID); p != nil {
				p.Space = space
			}
		})
	}
}
