// Package models defines the shared data records for the board game:
// players, card instances, visit types, and turn modifiers.
package models

import "github.com/google/uuid"

// VisitType distinguishes a player's first arrival on a space from any
// later arrival. Several effect and movement tables key on it.
type VisitType string

const (
	VisitFirst      VisitType = "First"
	VisitSubsequent VisitType = "Subsequent"
)

// Card types match the static card table: W work packages, B bank loans,
// E expeditor favors, L life events, I investor loans.
const (
	CardTypeWork      = "W"
	CardTypeBank      = "B"
	CardTypeExpeditor = "E"
	CardTypeLife      = "L"
	CardTypeInvestor  = "I"
)

// ActiveCard is a timed card in play. TurnsLeft is decremented during
// end-of-turn processing and the card is dropped when it reaches zero.
type ActiveCard struct {
	CardID    string `json:"cardId"`
	TurnsLeft int    `json:"turnsLeft"`
}

// TurnModifiers are per-player flags affecting turn flow.
// SkipTurns is consumed one at a time when the player would become current;
// CanReRoll is a one-shot permission cleared at the player's own turn end.
type TurnModifiers struct {
	SkipTurns int  `json:"skipTurns"`
	CanReRoll bool `json:"canReRoll"`
}

// Player holds one player's complete mutable state. Players are created at
// game setup and mutated by every effect application; they are never
// destroyed until the game is reset.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	Space     string    `json:"space"`     // current space name
	VisitType VisitType `json:"visitType"` // visit type for the current space

	Money        int `json:"money"`
	TimeSpent    int `json:"timeSpent"` // days
	ProjectScope int `json:"projectScope"`

	Hand        []string     `json:"hand"` // ordered card ids
	ActiveCards []ActiveCard `json:"activeCards"`

	Modifiers  TurnModifiers `json:"modifiers"`
	MoveIntent string        `json:"moveIntent"` // chosen destination, "" if none
	LastRoll   int           `json:"lastRoll"`   // 0 until the player rolls

	// VisitedSpaces records every space the player has ever committed a
	// turn on, for First/Subsequent determination.
	VisitedSpaces map[string]bool `json:"visitedSpaces"`
}

// NewPlayer creates a player positioned on the given starting space.
func NewPlayer(name, startSpace string) *Player {
	return &Player{
		ID:            uuid.New(),
		Name:          name,
		Space:         startSpace,
		VisitType:     VisitFirst,
		Hand:          []string{},
		ActiveCards:   []ActiveCard{},
		VisitedSpaces: map[string]bool{},
	}
}

// Clone returns a deep copy of the player. Used for the TEMP working copy
// and for pre-effect snapshots; the copy shares no mutable state with the
// original.
func (p *Player) Clone() *Player {
	c := *p
	c.Hand = append([]string(nil), p.Hand...)
	c.ActiveCards = append([]ActiveCard(nil), p.ActiveCards...)
	c.VisitedSpaces = make(map[string]bool, len(p.VisitedSpaces))
	for k, v := range p.VisitedSpaces {
		c.VisitedSpaces[k] = v
	}
	return &c
}

// HasCard reports whether the card id is in the player's hand.
func (p *Player) HasCard(cardID string) bool {
	for _, id := range p.Hand {
		if id == cardID {
			return true
		}
	}
	return false
}

// CountCardsOfType counts hand cards whose id prefix matches the card type.
// Card ids are typed by prefix (W001, B014, ...).
func (p *Player) CountCardsOfType(cardType string) int {
	n := 0
	for _, id := range p.Hand {
		if len(id) > 0 && string(id[0]) == cardType {
			n++
		}
	}
	return n
}
