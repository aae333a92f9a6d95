package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ActionResult is the structured outcome of a player action, built for the
// UI layer: what happened, what the dice showed, and whether a decision is
// now pending. Summaries always report confirmed outcomes (cards actually
// drawn, amounts actually applied), never the declared table values.
type ActionResult struct {
	PlayerID      uuid.UUID      `json:"playerId"`
	Roll          int            `json:"roll,omitempty"`
	Summary       string         `json:"summary"`
	Effects       []EffectResult `json:"effects,omitempty"`
	PendingChoice *Choice        `json:"pendingChoice,omitempty"`
}

// actionResult assembles the feedback for an applied batch. Assumes lock
// held.
func (o *Orchestrator) actionResult(playerID uuid.UUID, roll int, batch *BatchResult) *ActionResult {
	res := &ActionResult{
		PlayerID:      playerID,
		Roll:          roll,
		PendingChoice: o.choices.Pending(),
	}
	if batch != nil {
		res.Effects = batch.Results
		res.Summary = summarizeBatch(batch)
	}
	if res.Summary == "" {
		res.Summary = "No effects applied"
	}
	return res
}

// summarizeBatch renders the confirmed outcomes of a batch into one line.
func summarizeBatch(batch *BatchResult) string {
	var parts []string
	for _, r := range batch.Results {
		if !r.Applied {
			parts = append(parts, "Failed: "+r.Error)
			continue
		}
		switch r.Effect.Kind {
		case EffectResourceChange:
			parts = append(parts, summarizeResource(r))
		case EffectCardDraw:
			parts = append(parts, fmt.Sprintf("Drew %d %s card%s", len(r.DrawnCards), r.Effect.CardType, plural(len(r.DrawnCards))))
		case EffectCardDiscard:
			parts = append(parts, fmt.Sprintf("Discarded %d %s card%s", len(r.DiscardedCards), r.Effect.CardType, plural(len(r.DiscardedCards))))
		case EffectChoice:
			parts = append(parts, "Decision required: "+r.Effect.Prompt)
		}
	}
	return strings.Join(parts, "; ")
}

func summarizeResource(r EffectResult) string {
	amount := r.AmountApplied
	switch r.Effect.Resource {
	case ResourceMoney:
		if amount < 0 {
			return fmt.Sprintf("Paid $%d", -amount)
		}
		return fmt.Sprintf("Received $%d", amount)
	case ResourceTime:
		if amount < 0 {
			return fmt.Sprintf("Saved %d day%s", -amount, plural(-amount))
		}
		return fmt.Sprintf("Spent %d day%s", amount, plural(amount))
	case ResourceScope:
		return fmt.Sprintf("Scope changed by %d", amount)
	}
	return r.Effect.Reason
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// Available action names returned by GetAvailableActions.
const (
	ActionRollDice      = "roll_dice"
	ActionResolveChoice = "resolve_choice"
	ActionManualEffect  = "manual_effect"
	ActionNegotiate     = "negotiate"
	ActionEndTurn       = "end_turn"
)

// GetAvailableActions lists what the player can legally do right now. The
// gateway uses this to drive button state instead of re-deriving turn rules.
func (o *Orchestrator) GetAvailableActions(playerID uuid.UUID) []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.validateActor(playerID); err != nil {
		return nil
	}
	s := o.store.State()
	player := s.Player(playerID)

	var actions []string
	if pending := o.choices.Pending(); pending != nil && pending.PlayerID == playerID {
		return []string{ActionResolveChoice}
	}
	if !s.HasRolled || player.Modifiers.CanReRoll {
		actions = append(actions, ActionRollDice)
	}
	for _, rec := range o.data.GetSpaceEffects(player.Space, player.VisitType) {
		if rec.IsManual() {
			actions = append(actions, ActionManualEffect)
			break
		}
	}
	if cfg, ok := o.data.GetGameConfigBySpace(player.Space); ok && o.negotiate.CanNegotiate(cfg) {
		if o.snapshots.HasSnapshot(playerID, player.Space) {
			actions = append(actions, ActionNegotiate)
		}
	}
	if ok, _ := o.rules.CanEndTurn(s); ok {
		actions = append(actions, ActionEndTurn)
	}
	return actions
}
