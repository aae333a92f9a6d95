package data

import (
	"fmt"
	"sort"

	"groundwork/internal/models"
)

// Provider is the read-only lookup surface the game core consumes. All
// methods are pure lookups over static tables.
type Provider interface {
	GetSpaceEffects(space string, visit models.VisitType) []EffectRecord
	GetDiceEffects(space string, visit models.VisitType) []DiceOutcome
	GetMovement(space string, visit models.VisitType) (MovementSpec, bool)
	GetGameConfigBySpace(space string) (SpaceConfig, bool)
	GetCardByID(id string) (Card, bool)
	CardIDsByType(cardType string) []string
	StartingSpace() string
}

type visitKey struct {
	space string
	visit models.VisitType
}

// StaticProvider is an in-memory Provider built from table rows. It backs
// both production (rows parsed from CSV) and tests (rows built inline).
type StaticProvider struct {
	effects  map[visitKey][]EffectRecord
	dice     map[visitKey][]DiceOutcome
	movement map[visitKey]MovementSpec
	configs  map[string]SpaceConfig
	cards    map[string]Card
	start    string
}

// NewStaticProvider indexes the given rows for lookup.
func NewStaticProvider(effects []EffectRecord, dice []DiceOutcome, movement []MovementSpec, configs []SpaceConfig, cards []Card) (*StaticProvider, error) {
	p := &StaticProvider{
		effects:  make(map[visitKey][]EffectRecord),
		dice:     make(map[visitKey][]DiceOutcome),
		movement: make(map[visitKey]MovementSpec),
		configs:  make(map[string]SpaceConfig),
		cards:    make(map[string]Card),
	}
	for _, e := range effects {
		k := visitKey{e.SpaceName, e.VisitType}
		p.effects[k] = append(p.effects[k], e)
	}
	for _, d := range dice {
		k := visitKey{d.SpaceName, d.VisitType}
		p.dice[k] = append(p.dice[k], d)
	}
	for _, m := range movement {
		p.movement[visitKey{m.SpaceName, m.VisitType}] = m
	}
	for _, c := range configs {
		p.configs[c.SpaceName] = c
		if c.IsStartingSpace {
			if p.start != "" && p.start != c.SpaceName {
				return nil, fmt.Errorf("data: multiple starting spaces (%s, %s)", p.start, c.SpaceName)
			}
			p.start = c.SpaceName
		}
	}
	if p.start == "" {
		return nil, fmt.Errorf("data: no starting space configured")
	}
	for _, c := range cards {
		if _, dup := p.cards[c.ID]; dup {
			return nil, fmt.Errorf("data: duplicate card id %s", c.ID)
		}
		p.cards[c.ID] = c
	}
	return p, nil
}

// GetSpaceEffects returns the effect rows for a space/visit pair.
func (p *StaticProvider) GetSpaceEffects(space string, visit models.VisitType) []EffectRecord {
	return p.effects[visitKey{space, visit}]
}

// GetDiceEffects returns the dice-outcome rows for a space/visit pair.
func (p *StaticProvider) GetDiceEffects(space string, visit models.VisitType) []DiceOutcome {
	return p.dice[visitKey{space, visit}]
}

// GetMovement returns the movement spec for a space/visit pair. Falls back
// to the First-visit row when no Subsequent row exists, matching the table
// convention that most spaces move the same way on every visit.
func (p *StaticProvider) GetMovement(space string, visit models.VisitType) (MovementSpec, bool) {
	if m, ok := p.movement[visitKey{space, visit}]; ok {
		return m, true
	}
	m, ok := p.movement[visitKey{space, models.VisitFirst}]
	return m, ok
}

// GetGameConfigBySpace returns the per-space configuration.
func (p *StaticProvider) GetGameConfigBySpace(space string) (SpaceConfig, bool) {
	c, ok := p.configs[space]
	return c, ok
}

// GetCardByID returns the catalog entry for a card id.
func (p *StaticProvider) GetCardByID(id string) (Card, bool) {
	c, ok := p.cards[id]
	return c, ok
}

// CardIDsByType returns all catalog ids of the given type in stable order,
// for deck construction.
func (p *StaticProvider) CardIDsByType(cardType string) []string {
	ids := make([]string, 0, 16)
	for id, c := range p.cards {
		if c.Type == cardType {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// StartingSpace returns the configured starting space name.
func (p *StaticProvider) StartingSpace() string { return p.start }
