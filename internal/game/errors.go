package game

import "errors"

// Validation and dependency errors surfaced by the orchestrator. Validation
// errors are rejected synchronously with no state mutated; a missing effect
// engine is fatal to the current operation and never silently degraded.
var (
	ErrNotYourTurn        = errors.New("not your turn")
	ErrWrongPhase         = errors.New("game is not in the PLAY phase")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrAlreadyMoved       = errors.New("you have already moved this turn")
	ErrAlreadyRolled      = errors.New("you have already rolled this turn")
	ErrActionsIncomplete  = errors.New("required actions not completed")
	ErrNoEffectEngine     = errors.New("effect engine is not wired")
	ErrConditionNotMet    = errors.New("effect condition not met")
	ErrNoSuchEffect       = errors.New("no manual effect matches that key")
	ErrNoSnapshot         = errors.New("no snapshot exists for this space")
	ErrNegotiationBlocked = errors.New("this space does not allow negotiation")
	ErrNoPendingChoice    = errors.New("no choice is awaiting resolution")
	ErrGameEnded          = errors.New("game has ended")
)
