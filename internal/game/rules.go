package game

import (
	"groundwork/internal/data"
	"groundwork/internal/models"
)

// RulesService answers the win/end/eligibility questions the orchestrator
// asks. It never mutates state.
type RulesService struct {
	store *Store
	data  data.Provider

	// MaxTurns ends the game when the global turn counter reaches it.
	// 0 = unlimited.
	MaxTurns int
}

// NewRulesService wires a rules service to the store and tables.
func NewRulesService(store *Store, provider data.Provider, maxTurns int) *RulesService {
	return &RulesService{store: store, data: provider, MaxTurns: maxTurns}
}

// CheckWinCondition reports whether the player has won: they are moving
// onto (or sitting on) an ending space.
func (r *RulesService) CheckWinCondition(p *models.Player) bool {
	cfg, ok := r.data.GetGameConfigBySpace(p.Space)
	return ok && cfg.IsEndingSpace
}

// CheckGameEndConditions reports whether the game should end regardless of
// a winner, and why.
func (r *RulesService) CheckGameEndConditions() (bool, string) {
	if r.MaxTurns > 0 && r.store.Real().TurnCount >= r.MaxTurns {
		return true, "turn limit reached"
	}
	return false, ""
}

// CalculateProjectScope sums the scope contribution of the player's W
// cards.
func (r *RulesService) CalculateProjectScope(p *models.Player) int {
	scope := 0
	for _, id := range p.Hand {
		card, ok := r.data.GetCardByID(id)
		if ok && card.Type == models.CardTypeWork {
			scope += card.WorkScope
		}
	}
	return scope
}

// CanEndTurn reports whether the working state allows the current player to
// end the turn, and how many required actions remain if not.
func (r *RulesService) CanEndTurn(s *State) (bool, int) {
	remaining := s.RequiredActions - s.CompletedActions
	if remaining < 0 {
		remaining = 0
	}
	return remaining == 0, remaining
}
