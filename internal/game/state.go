package game

import (
	"fmt"

	"github.com/google/uuid"

	"groundwork/internal/models"
)

// Phase is the coarse game lifecycle phase.
type Phase string

const (
	PhaseSetup Phase = "SETUP"
	PhasePlay  Phase = "PLAY"
	PhaseEnd   Phase = "END"
)

// Choice is the single pending player decision. At most one choice is
// outstanding at any time (GameState invariant); a stale choice is
// implicitly cancelled at the next turn start.
type Choice struct {
	ID       uuid.UUID      `json:"id"`
	PlayerID uuid.UUID      `json:"playerId"`
	Type     string         `json:"type"` // "movement", "card_selection"
	Prompt   string         `json:"prompt"`
	Options  []ChoiceOption `json:"options"`
}

// Choice types.
const (
	ChoiceMovement = "movement"
	ChoiceCard     = "card_selection"
)

// State is the complete game state: per-game counters and flags plus every
// player record. Two instances exist at most: REAL (committed) and TEMP
// (in-turn working copy).
type State struct {
	Phase            Phase
	TurnCount        int // committed global turns
	PlayerTurnCounts map[uuid.UUID]int
	CurrentPlayer    uuid.UUID
	PendingChoice    *Choice

	Decks    map[string][]string // per card type, top of deck at the end
	Discards map[string][]string

	RequiredActions  int
	CompletedActions int
	HasRolled        bool
	HasMoved         bool
	ArrivalInProgress bool
	Initialized      bool

	Winner  uuid.UUID
	Players []*models.Player
}

// clone returns a deep copy sharing no mutable state with the original.
func (s *State) clone() *State {
	c := *s
	c.PlayerTurnCounts = make(map[uuid.UUID]int, len(s.PlayerTurnCounts))
	for k, v := range s.PlayerTurnCounts {
		c.PlayerTurnCounts[k] = v
	}
	c.Decks = cloneDecks(s.Decks)
	c.Discards = cloneDecks(s.Discards)
	if s.PendingChoice != nil {
		pc := *s.PendingChoice
		pc.Options = append([]ChoiceOption(nil), s.PendingChoice.Options...)
		c.PendingChoice = &pc
	}
	c.Players = make([]*models.Player, len(s.Players))
	for i, p := range s.Players {
		c.Players[i] = p.Clone()
	}
	return &c
}

func cloneDecks(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Player returns the player record from this state, or nil.
func (s *State) Player(id uuid.UUID) *models.Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Store owns the REAL/TEMP duality. TEMP is created from REAL at turn
// start and either committed into REAL at turn end or discarded on retry;
// it must never persist across a committed turn boundary. All state
// mutation goes through Update — no component reads-then-writes state
// behind the store's back.
//
// The store itself is not goroutine safe; the orchestrator's mutex guards
// all access, as in the rest of the game package.
type Store struct {
	real *State
	temp *State
}

// NewStore creates a store whose REAL state holds the given players in
// SETUP phase with empty decks.
func NewStore(players []*models.Player) *Store {
	return &Store{
		real: &State{
			Phase:            PhaseSetup,
			PlayerTurnCounts: make(map[uuid.UUID]int),
			Decks:            make(map[string][]string),
			Discards:         make(map[string][]string),
			Players:          players,
		},
	}
}

// BeginTurn creates the TEMP working copy from REAL. It is an error to
// begin a turn while a previous TEMP is still live.
func (s *Store) BeginTurn() error {
	if s.temp != nil {
		return fmt.Errorf("store: TEMP state already exists; commit or discard first")
	}
	s.temp = s.real.clone()
	return nil
}

// Commit replaces REAL with TEMP and clears TEMP.
func (s *Store) Commit() error {
	if s.temp == nil {
		return fmt.Errorf("store: no TEMP state to commit")
	}
	s.real = s.temp
	s.temp = nil
	return nil
}

// DiscardTemp drops the TEMP copy without committing. Used by Try Again
// before the snapshot revert mutates REAL.
func (s *Store) DiscardTemp() { s.temp = nil }

// InTurn reports whether a TEMP working copy is live.
func (s *Store) InTurn() bool { return s.temp != nil }

// State returns the current working state: TEMP while a turn is in
// progress, REAL otherwise. Callers must treat the result as read-only and
// route mutations through Update.
func (s *Store) State() *State {
	if s.temp != nil {
		return s.temp
	}
	return s.real
}

// Real returns the committed state regardless of any live TEMP.
func (s *Store) Real() *State { return s.real }

// Update applies fn to the working state. This is the single mutation
// entry point for every component.
func (s *Store) Update(fn func(*State)) { fn(s.State()) }

// UpdateReal applies fn directly to REAL. Only the snapshot revert uses
// this; normal turn flow mutates TEMP and commits.
func (s *Store) UpdateReal(fn func(*State)) { fn(s.real) }

// Player returns the player record from the working state.
func (s *Store) Player(id uuid.UUID) (*models.Player, error) {
	if p := s.State().Player(id); p != nil {
		return p, nil
	}
	return nil, ErrPlayerNotFound
}
