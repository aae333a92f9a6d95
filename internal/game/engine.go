package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EffectResult reports the outcome of applying one effect, including what
// actually changed (drawn card ids, amount applied) so callers reconcile
// declared values against real outcomes.
type EffectResult struct {
	Effect         Effect   `json:"effect"`
	Applied        bool     `json:"applied"`
	Error          string   `json:"error,omitempty"`
	DrawnCards     []string `json:"drawnCards,omitempty"`
	DiscardedCards []string `json:"discardedCards,omitempty"`
	AmountApplied  int      `json:"amountApplied,omitempty"`
}

// BatchResult summarizes an effect batch. Success is false when any
// individual effect failed, but already-applied effects stay applied —
// there is no compensating rollback inside a batch; only the Try-Again
// snapshot mechanism rolls back, at space-arrival granularity.
type BatchResult struct {
	Success           bool           `json:"success"`
	SuccessfulEffects int            `json:"successfulEffects"`
	TotalEffects      int            `json:"totalEffects"`
	Errors            []string       `json:"errors,omitempty"`
	Results           []EffectResult `json:"results"`
}

// EffectEngine applies a batch of typed effects on behalf of a player.
type EffectEngine interface {
	ProcessEffects(playerID uuid.UUID, effects []Effect, source string) (*BatchResult, error)
}

// StandardEngine is the default effect engine, wired to the resource, card,
// and choice services.
type StandardEngine struct {
	resources *ResourceService
	cards     *CardService
	choices   *ChoiceService
	notifier  Notifier
	log       *logrus.Entry
}

// NewStandardEngine builds the default effect engine.
func NewStandardEngine(resources *ResourceService, cards *CardService, choices *ChoiceService, notifier Notifier, log *logrus.Entry) *StandardEngine {
	return &StandardEngine{
		resources: resources,
		cards:     cards,
		choices:   choices,
		notifier:  notifier,
		log:       log,
	}
}

// ProcessEffects applies each effect in order. Individual failures are
// recorded per effect and do not abort the rest of the batch.
func (e *StandardEngine) ProcessEffects(playerID uuid.UUID, effects []Effect, source string) (*BatchResult, error) {
	batch := &BatchResult{
		Success:      true,
		TotalEffects: len(effects),
		Results:      make([]EffectResult, 0, len(effects)),
	}
	for _, eff := range effects {
		res := e.applyOne(playerID, eff, source)
		batch.Results = append(batch.Results, res)
		if res.Applied {
			batch.SuccessfulEffects++
			e.notifier.Notify(Event{
				Type:     EventEffectApplied,
				PlayerID: playerID,
				Message:  eff.Reason,
			})
		} else {
			batch.Success = false
			batch.Errors = append(batch.Errors, res.Error)
			e.log.WithFields(logrus.Fields{"player": playerID, "source": source}).
				Warnf("effect failed: %s", res.Error)
			e.notifier.Notify(Event{
				Type:     EventEffectFailed,
				PlayerID: playerID,
				Message:  res.Error,
			})
		}
	}
	return batch, nil
}

func (e *StandardEngine) applyOne(playerID uuid.UUID, eff Effect, source string) EffectResult {
	res := EffectResult{Effect: eff}

	switch eff.Kind {
	case EffectResourceChange:
		amount := eff.Amount
		if eff.Percent != 0 {
			pct, err := e.resources.PercentOfMoney(playerID, eff.Percent)
			if err != nil {
				res.Error = err.Error()
				return res
			}
			amount = pct
		}
		var err error
		switch eff.Resource {
		case ResourceMoney:
			_, err = e.resources.AddMoney(playerID, amount, eff.Reason)
		case ResourceTime:
			_, err = e.resources.AddTime(playerID, amount, eff.Reason)
		case ResourceScope:
			_, err = e.resources.AddScope(playerID, amount, eff.Reason)
		default:
			err = fmt.Errorf("unknown resource %q", eff.Resource)
		}
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Applied = true
		res.AmountApplied = amount

	case EffectCardDraw:
		count := eff.Count
		if !eff.CountDeclared {
			count = 0 // card service falls back to its default
		}
		drawn, err := e.cards.DrawCards(playerID, eff.CardType, count)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Applied = true
		res.DrawnCards = drawn

	case EffectCardDiscard:
		var discarded []string
		var err error
		if len(eff.CardIDs) > 0 {
			discarded, err = e.cards.DiscardCards(playerID, eff.CardIDs)
		} else {
			count := eff.Count
			if count <= 0 {
				count = 1
			}
			discarded, err = e.cards.DiscardByType(playerID, eff.CardType, count)
		}
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Applied = true
		res.DiscardedCards = discarded

	case EffectChoice:
		_, err := e.choices.CreateChoice(playerID, eff.ChoiceType, eff.Prompt, eff.Options)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Applied = true

	case EffectLog:
		switch eff.Level {
		case "warn", "warning":
			e.log.Warn(eff.Message)
		default:
			e.log.Info(eff.Message)
		}
		res.Applied = true

	default:
		res.Error = fmt.Sprintf("unknown effect kind %d", eff.Kind)
	}
	return res
}
