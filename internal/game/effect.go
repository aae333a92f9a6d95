package game

import (
	"fmt"
	"strconv"
	"strings"

	"groundwork/internal/data"
	"groundwork/internal/models"
)

// Resource identifies a player ledger the game can credit or debit.
type Resource string

const (
	ResourceMoney Resource = "money"
	ResourceTime  Resource = "time"
	ResourceScope Resource = "scope"
)

// EffectKind tags the closed set of effect variants. The raw string pairs
// from the tables (effect_type/effect_action) are parsed into these exactly
// once, by the factory; everything downstream matches on the kind.
type EffectKind uint8

const (
	EffectResourceChange EffectKind = iota
	EffectCardDraw
	EffectCardDiscard
	EffectChoice
	EffectLog
)

// ChoiceOption is one selectable option in a Choice effect.
type ChoiceOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Effect is an immutable value produced by the factory and consumed exactly
// once by the effect engine. Only the fields for its Kind are meaningful.
type Effect struct {
	Kind EffectKind

	// EffectResourceChange
	Resource Resource
	Amount   int
	Percent  int // non-zero: Amount is ignored, percent of current money
	Reason   string

	// EffectCardDraw / EffectCardDiscard
	CardType      string
	Count         int
	CountDeclared bool // false when the table value was missing or unparseable
	CardIDs       []string

	// EffectChoice
	ChoiceType string
	Prompt     string
	Options    []ChoiceOption

	// EffectLog
	Message string
	Level   string
}

// TriggerContext describes why effects are being built: the acting player
// (TEMP copy), the dice roll if any, and a human-readable source for
// ledger reasons.
type TriggerContext struct {
	Player *models.Player
	Roll   int
	Source string
}

// BuildEffects converts raw effect records into typed effects, dropping any
// record whose condition does not hold for the context. A record with an
// unknown effect type or malformed condition fails the build; bad table
// data must never be half-applied.
func BuildEffects(records []data.EffectRecord, ctx TriggerContext) ([]Effect, error) {
	effects := make([]Effect, 0, len(records))
	for _, rec := range records {
		ok, err := EvaluateCondition(rec.Condition, ConditionContext{Player: ctx.Player, Roll: ctx.Roll})
		if err != nil {
			return nil, fmt.Errorf("effect %s/%s on %s: %w", rec.EffectType, rec.EffectAction, rec.SpaceName, err)
		}
		if !ok {
			continue
		}
		eff, err := buildOne(rec, ctx)
		if err != nil {
			return nil, err
		}
		effects = append(effects, eff)
	}
	return effects, nil
}

func buildOne(rec data.EffectRecord, ctx TriggerContext) (Effect, error) {
	reason := rec.Description
	if reason == "" {
		reason = ctx.Source
	}

	switch rec.EffectType {
	case "money":
		amount, percent, declared := parseAmount(rec.EffectValue)
		if !declared {
			return Effect{}, fmt.Errorf("money effect on %s: unparseable value %q", rec.SpaceName, rec.EffectValue)
		}
		if rec.EffectAction == "subtract" || rec.EffectAction == "fee" {
			amount, percent = -amount, -percent
		}
		return Effect{
			Kind:     EffectResourceChange,
			Resource: ResourceMoney,
			Amount:   amount,
			Percent:  percent,
			Reason:   reason,
		}, nil

	case "time":
		amount, _, declared := parseAmount(rec.EffectValue)
		if !declared {
			return Effect{}, fmt.Errorf("time effect on %s: unparseable value %q", rec.SpaceName, rec.EffectValue)
		}
		if rec.EffectAction == "subtract" {
			amount = -amount
		}
		return Effect{
			Kind:     EffectResourceChange,
			Resource: ResourceTime,
			Amount:   amount,
			Reason:   reason,
		}, nil

	case "cards":
		cardType, draw, err := parseCardAction(rec.EffectAction)
		if err != nil {
			return Effect{}, fmt.Errorf("card effect on %s: %w", rec.SpaceName, err)
		}
		count, _, declared := parseAmount(rec.EffectValue)
		kind := EffectCardDraw
		if !draw {
			kind = EffectCardDiscard
		}
		return Effect{
			Kind:          kind,
			CardType:      cardType,
			Count:         count,
			CountDeclared: declared && count > 0,
			Reason:        reason,
		}, nil

	case "log":
		return Effect{Kind: EffectLog, Message: rec.Description, Level: rec.EffectAction}, nil

	default:
		return Effect{}, fmt.Errorf("unknown effect type %q on %s", rec.EffectType, rec.SpaceName)
	}
}

// parseAmount parses a raw table value. Returns the integer amount, a
// percentage (for values like "5%"), and whether anything parseable was
// declared at all.
func parseAmount(raw string) (amount, percent int, declared bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, 0, false
	}
	if strings.HasSuffix(s, "%") {
		p, err := strconv.Atoi(strings.TrimSuffix(s, "%"))
		if err != nil {
			return 0, 0, false
		}
		return 0, p, true
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, false
	}
	return n, 0, true
}

// parseCardAction splits "draw_w" / "discard_e" into the card type letter
// and draw/discard direction.
func parseCardAction(action string) (cardType string, draw bool, err error) {
	switch {
	case strings.HasPrefix(action, "draw_"):
		cardType = strings.ToUpper(strings.TrimPrefix(action, "draw_"))
		draw = true
	case strings.HasPrefix(action, "discard_"):
		cardType = strings.ToUpper(strings.TrimPrefix(action, "discard_"))
	default:
		return "", false, fmt.Errorf("unknown card action %q", action)
	}
	if len(cardType) != 1 {
		return "", false, fmt.Errorf("bad card type in action %q", action)
	}
	return cardType, draw, nil
}
