package game

import (
	"strings"

	"github.com/sirupsen/logrus"

	"groundwork/internal/data"
	"groundwork/internal/models"
)

// MovementResolver computes where a player can go from a space: zero or one
// destination resolves silently at turn end, several become a movement
// choice, and dice-routed spaces are resolved only after a roll so that a
// duplicate choice is never created for them.
type MovementResolver struct {
	data data.Provider
	log  *logrus.Entry
}

// NewMovementResolver wires a resolver to the movement tables.
func NewMovementResolver(provider data.Provider, log *logrus.Entry) *MovementResolver {
	return &MovementResolver{data: provider, log: log}
}

// Spec returns the movement spec for the player's current space.
func (m *MovementResolver) Spec(space string, visit models.VisitType) (data.MovementSpec, bool) {
	return m.data.GetMovement(space, visit)
}

// Destinations returns the valid destinations for the space. Empty for
// dice-routed and terminal spaces.
func (m *MovementResolver) Destinations(space string, visit models.VisitType) []string {
	spec, ok := m.data.GetMovement(space, visit)
	if !ok {
		return nil
	}
	switch spec.MovementType {
	case data.MovementFixed, data.MovementChoice:
		return spec.Destinations
	default:
		return nil
	}
}

// IsDiceRouted reports whether movement from the space depends on the roll.
func (m *MovementResolver) IsDiceRouted(space string, visit models.VisitType) bool {
	spec, ok := m.data.GetMovement(space, visit)
	return ok && spec.MovementType == data.MovementDice
}

// DiceDestination returns the destination for a rolled value on a
// dice-routed space, from the "Next Step" outcome row. Returns false when
// the space has no dice routing or the rolled cell is empty.
func (m *MovementResolver) DiceDestination(space string, visit models.VisitType, roll int) (string, bool) {
	if roll < 1 || roll > 6 {
		return "", false
	}
	for _, outcome := range m.data.GetDiceEffects(space, visit) {
		if outcome.OutcomeType != data.OutcomeNextStep {
			continue
		}
		dest := strings.TrimSpace(outcome.Rolls[roll-1])
		if dest != "" {
			return dest, true
		}
	}
	return "", false
}

// MovementOptions converts destinations into choice options.
func MovementOptions(dests []string) []ChoiceOption {
	opts := make([]ChoiceOption, len(dests))
	for i, d := range dests {
		opts[i] = ChoiceOption{ID: d, Label: d}
	}
	return opts
}
