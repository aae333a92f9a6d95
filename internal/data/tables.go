// Package data holds the static game-definition tables: space effects,
// dice outcomes, movement specs, per-space config, and the card catalog.
// Everything here is immutable after load; all lookups are pure.
package data

import "groundwork/internal/models"

// MovementType describes how a player leaves a space.
type MovementType string

const (
	MovementNone   MovementType = "none"   // terminal or effect-driven space
	MovementFixed  MovementType = "fixed"  // exactly one destination
	MovementChoice MovementType = "choice" // player picks among destinations
	MovementDice   MovementType = "dice"   // destination keyed by dice roll
)

// Trigger types for space effects.
const (
	TriggerAuto   = "auto"   // applied on arrival
	TriggerManual = "manual" // requires an explicit player action
)

// EffectRecord is one row of the space-effects table. EffectType and
// EffectAction are the raw string pair from the table ("cards"/"draw_w",
// "money"/"fee", "time"/"add", ...); the effect factory converts them into
// typed effects exactly once.
type EffectRecord struct {
	SpaceName    string
	VisitType    models.VisitType
	EffectType   string
	EffectAction string
	EffectValue  string // raw value; may be empty or non-numeric
	Condition    string // "", "always", "dice_roll_N", "scope_le_4m", ...
	TriggerType  string // TriggerAuto or TriggerManual
	Description  string
}

// IsTimeEffect reports whether the record is a leaving-space time effect,
// which is applied at turn end before movement rather than on arrival.
func (r EffectRecord) IsTimeEffect() bool { return r.EffectType == "time" }

// IsManual reports whether the record requires an explicit player action.
func (r EffectRecord) IsManual() bool { return r.TriggerType == TriggerManual }

// Key returns the compound manual-effect key, e.g. "cards:draw_b".
func (r EffectRecord) Key() string { return r.EffectType + ":" + r.EffectAction }

// DiceOutcome is one row of the dice-outcome table. Rolls[i] holds the
// outcome for a roll of i+1: a destination space, a card instruction, or a
// time amount depending on OutcomeType.
type DiceOutcome struct {
	SpaceName   string
	VisitType   models.VisitType
	OutcomeType string // "Next Step", "Time outcomes", "Cards", "Fees"
	Rolls       [6]string
}

// Dice outcome types.
const (
	OutcomeNextStep = "Next Step"
	OutcomeTime     = "Time outcomes"
	OutcomeCards    = "Cards"
	OutcomeFees     = "Fees"
)

// MovementSpec is one row of the movement table.
type MovementSpec struct {
	SpaceName    string
	VisitType    models.VisitType
	MovementType MovementType
	Destinations []string // empty for none/dice
}

// SpaceConfig is the per-space game configuration row.
type SpaceConfig struct {
	SpaceName       string
	Phase           string // SETUP, OWNER, FUNDING, DESIGN, REGULATORY, CONSTRUCTION, END
	IsStartingSpace bool
	IsEndingSpace   bool
	CanNegotiate    bool // whether Try Again is allowed on this space
	RequiredActions int  // actions the player must complete before ending the turn
}

// Card is one row of the card catalog. Duration > 0 marks a timed card;
// PerTurnTime is the duration effect applied at each end-of-turn while the
// card is active.
type Card struct {
	ID          string
	Type        string // W, B, E, L, I
	Name        string
	Description string
	Cost        int
	Duration    int // turns the card stays active; 0 = immediate
	PerTurnTime int // days added per active turn
	WorkScope   int // W cards: contribution to project scope
}
