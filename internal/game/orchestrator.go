// Package game implements the turn orchestration core: the state machine
// that sequences a player's turn (arrival effects → dice roll → effect
// resolution → movement choice → commit → next player), the effect
// pipeline that turns declarative table rows into typed effects, and the
// REAL/TEMP transactional state model that lets a turn be retried without
// corrupting committed history.
package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"groundwork/internal/data"
	"groundwork/internal/models"
)

// TurnState names the orchestrator's position in the turn state machine.
type TurnState string

const (
	TurnAwaitingRoll           TurnState = "AwaitingRoll"
	TurnEffectsResolving       TurnState = "EffectsResolving"
	TurnAwaitingMovementChoice TurnState = "AwaitingMovementChoice"
	TurnReadyToEnd             TurnState = "ReadyToEndTurn"
	TurnCommitting             TurnState = "Committing"
	TurnGameEnded              TurnState = "GameEnded"
)

// OnGameEndFunc is invoked once when the game ends. Winner is uuid.Nil when
// the game ended on the turn limit with no winner.
type OnGameEndFunc func(winner uuid.UUID, final *State)

// Config wires an orchestrator. Data is required; everything else has a
// usable default.
type Config struct {
	Data       data.Provider
	Notifier   Notifier
	Logger     *logrus.Logger
	Seed       uint64
	MaxTurns   int
	Negotiator Negotiator

	// TurnDuration force-ends an idle player's turn when positive.
	TurnDuration time.Duration
}

// Orchestrator owns turn sequencing for a single game instance. All public
// methods take the mutex; unexported helpers assume the lock is held.
type Orchestrator struct {
	ID uuid.UUID

	mu  sync.Mutex
	log *logrus.Entry

	store     *Store
	data      data.Provider
	notifier  Notifier
	choices   *ChoiceService
	resources *ResourceService
	cards     *CardService
	snapshots *SnapshotManager
	movement  *MovementResolver
	rules     *RulesService
	negotiate Negotiator
	rng       *rng

	// Engine applies effect batches. Nil engine fails every pipeline call
	// loudly (ErrNoEffectEngine) — never silently skipped.
	Engine EffectEngine

	turnState TurnState

	// OnCommit runs after every TEMP→REAL commit with the committed state;
	// OnGameEnd runs once at game end. Both are optional and must not
	// block (persistence hooks run their own goroutines).
	OnCommit  func(*State)
	OnGameEnd OnGameEndFunc

	turnDuration time.Duration
	turnTimer    *time.Timer
	turnEpoch    int // guards stale timer callbacks
}

// NewOrchestrator builds a fully wired orchestrator for the given players.
func NewOrchestrator(players []*models.Player, cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NotifierFunc(func(Event) {})
	}
	neg := cfg.Negotiator
	if neg == nil {
		neg = StandardNegotiator{}
	}
	id := uuid.New()
	log := logger.WithField("game", id)

	store := NewStore(players)
	o := &Orchestrator{
		ID:           id,
		log:          log,
		store:        store,
		data:         cfg.Data,
		notifier:     notifier,
		choices:      NewChoiceService(store, notifier, log),
		resources:    NewResourceService(store, log),
		cards:        NewCardService(store, cfg.Data, log, cfg.Seed),
		snapshots:    NewSnapshotManager(log),
		movement:     NewMovementResolver(cfg.Data, log),
		rules:        NewRulesService(store, cfg.Data, cfg.MaxTurns),
		negotiate:    neg,
		rng:          newRNG(cfg.Seed),
		turnState:    TurnAwaitingRoll,
		turnDuration: cfg.TurnDuration,
	}
	o.Engine = NewStandardEngine(o.resources, o.cards, o.choices, notifier, log)
	return o
}

// Store exposes the transactional state store (read paths for the gateway
// and tests).
func (o *Orchestrator) Store() *Store { return o.store }

// Rules exposes the rules service.
func (o *Orchestrator) Rules() *RulesService { return o.rules }

// TurnState returns the orchestrator's current position in the state
// machine.
func (o *Orchestrator) TurnState() TurnState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.turnState
}

// StartGame transitions SETUP→PLAY, builds the decks, and starts the first
// player's turn.
func (o *Orchestrator) StartGame() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	real := o.store.Real()
	if real.Initialized {
		return fmt.Errorf("game %s already started", o.ID)
	}
	if len(real.Players) == 0 {
		return fmt.Errorf("game %s has no players", o.ID)
	}
	o.cards.InitDecks()
	first := real.Players[0].ID
	o.store.Update(func(s *State) {
		s.Phase = PhasePlay
		s.Initialized = true
		s.CurrentPlayer = first
	})
	o.log.WithField("players", len(real.Players)).Info("game started")
	return o.startTurn(first)
}

// startTurn runs the turn-entry sequence for the player. Assumes lock held.
func (o *Orchestrator) startTurn(playerID uuid.UUID) error {
	if o.store.Real().Phase != PhasePlay {
		return ErrWrongPhase
	}

	// A choice left over from a previous step is implicitly cancelled.
	o.choices.ClearStale()

	if err := o.store.BeginTurn(); err != nil {
		return err
	}

	var player *models.Player
	o.store.Update(func(s *State) {
		s.CurrentPlayer = playerID
		s.HasRolled = false
		s.HasMoved = false
		s.CompletedActions = 0
		s.ArrivalInProgress = true
		s.PlayerTurnCounts[playerID]++

		player = s.Player(playerID)
		if player.VisitedSpaces[player.Space] {
			player.VisitType = models.VisitSubsequent
		} else {
			player.VisitType = models.VisitFirst
		}
		player.LastRoll = 0

		if cfg, ok := o.data.GetGameConfigBySpace(player.Space); ok {
			s.RequiredActions = cfg.RequiredActions
		} else {
			s.RequiredActions = 0
		}
	})

	turnNumber := o.store.State().TurnCount + 1
	o.log.WithFields(logrus.Fields{"turn": turnNumber, "player": playerID, "space": player.Space}).
		Infof("Turn %d started", turnNumber)
	o.notifier.Notify(Event{
		Type:     EventTurnStarted,
		PlayerID: playerID,
		Message:  fmt.Sprintf("Turn %d started", turnNumber),
		Payload:  map[string]interface{}{"turn": turnNumber, "space": player.Space},
	})

	// Pre-effect snapshot, only on the first arrival at this space. Later
	// retries must revert to this exact state, so it is never overwritten.
	if !o.snapshots.HasSnapshot(playerID, player.Space) {
		o.snapshots.Save(player, player.Space)
	}

	o.turnState = TurnEffectsResolving
	if _, err := o.processArrivalEffects(playerID); err != nil {
		o.store.Update(func(s *State) { s.ArrivalInProgress = false })
		return err
	}
	o.store.Update(func(s *State) { s.ArrivalInProgress = false })

	// Offer the movement choice up front when the space forks and movement
	// is not dice-dependent; dice-routed spaces resolve after the roll.
	if err := o.offerMovementChoice(playerID); err != nil {
		return err
	}

	o.turnState = TurnAwaitingRoll
	o.scheduleTurnTimer(playerID)
	return nil
}

// processArrivalEffects applies the automatic space-entry effects: auto
// triggers only, time (leaving-space) effects excluded, dice-conditioned
// rows naturally filtered out because no roll exists yet. Assumes lock
// held.
func (o *Orchestrator) processArrivalEffects(playerID uuid.UUID) (*BatchResult, error) {
	player, err := o.store.Player(playerID)
	if err != nil {
		return nil, err
	}
	var records []data.EffectRecord
	for _, rec := range o.data.GetSpaceEffects(player.Space, player.VisitType) {
		if rec.IsManual() || rec.IsTimeEffect() {
			continue
		}
		records = append(records, rec)
	}
	return o.applyRecords(playerID, records, 0, "arrival on "+player.Space)
}

// applyRecords builds typed effects from records and dispatches them to the
// effect engine. Assumes lock held.
func (o *Orchestrator) applyRecords(playerID uuid.UUID, records []data.EffectRecord, roll int, source string) (*BatchResult, error) {
	if len(records) == 0 {
		return &BatchResult{Success: true}, nil
	}
	player, err := o.store.Player(playerID)
	if err != nil {
		return nil, err
	}
	effects, err := BuildEffects(records, TriggerContext{Player: player, Roll: roll, Source: source})
	if err != nil {
		return nil, err
	}
	if len(effects) == 0 {
		return &BatchResult{Success: true}, nil
	}
	if o.Engine == nil {
		return nil, ErrNoEffectEngine
	}
	return o.Engine.ProcessEffects(playerID, effects, source)
}

// offerMovementChoice creates a movement choice when the space has more
// than one destination and movement is not dice-dependent. A single
// destination stays silent (auto-move at turn end). Assumes lock held.
func (o *Orchestrator) offerMovementChoice(playerID uuid.UUID) error {
	player, err := o.store.Player(playerID)
	if err != nil {
		return err
	}
	if o.movement.IsDiceRouted(player.Space, player.VisitType) {
		return nil
	}
	dests := o.movement.Destinations(player.Space, player.VisitType)
	if len(dests) <= 1 {
		return nil
	}
	if o.choices.Pending() != nil {
		return nil // another decision is already outstanding
	}
	_, err = o.choices.CreateChoice(playerID, ChoiceMovement, "Choose your next space", MovementOptions(dests))
	if err != nil {
		return err
	}
	o.turnState = TurnAwaitingMovementChoice
	return nil
}

// validateActor rejects actions from non-current players or outside PLAY.
// Assumes lock held.
func (o *Orchestrator) validateActor(playerID uuid.UUID) error {
	s := o.store.State()
	if s.Phase == PhaseEnd {
		return ErrGameEnded
	}
	if s.Phase != PhasePlay {
		return ErrWrongPhase
	}
	if s.CurrentPlayer != playerID {
		return ErrNotYourTurn
	}
	if s.Player(playerID) == nil {
		return ErrPlayerNotFound
	}
	return nil
}

// RollDice rolls for the player and processes dice-conditioned effects.
// Returns the rolled value.
func (o *Orchestrator) RollDice(playerID uuid.UUID) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	res, err := o.rollDice(playerID)
	if err != nil {
		return 0, err
	}
	return res.Roll, nil
}

// RollDiceWithFeedback rolls and returns a structured result for the UI.
func (o *Orchestrator) RollDiceWithFeedback(playerID uuid.UUID) (*ActionResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rollDice(playerID)
}

// rollDice implements the dice step. Assumes lock held.
func (o *Orchestrator) rollDice(playerID uuid.UUID) (*ActionResult, error) {
	if err := o.validateActor(playerID); err != nil {
		return nil, err
	}
	s := o.store.State()
	if s.HasMoved && !s.HasRolled {
		return nil, ErrAlreadyMoved
	}
	if s.HasRolled {
		player := s.Player(playerID)
		if !player.Modifiers.CanReRoll {
			return nil, ErrAlreadyRolled
		}
		// One-shot permission, consumed on use.
		o.store.Update(func(st *State) {
			st.Player(playerID).Modifiers.CanReRoll = false
		})
		o.log.WithField("player", playerID).Info("re-roll permission consumed")
	}

	roll := o.rng.d6()
	o.store.Update(func(st *State) {
		st.Player(playerID).LastRoll = roll
		st.HasRolled = true
		st.HasMoved = true
		st.CompletedActions++
	})
	o.notifier.Notify(Event{
		Type:     EventDiceRolled,
		PlayerID: playerID,
		Message:  fmt.Sprintf("Rolled a %d", roll),
		Payload:  map[string]interface{}{"roll": roll},
	})

	// Only dice-conditioned space effects run now; unconditional arrival
	// effects were already applied on entry. Dice-conditional card draws
	// apply immediately here, no manual trigger required.
	player, _ := o.store.Player(playerID)
	var records []data.EffectRecord
	for _, rec := range o.data.GetSpaceEffects(player.Space, player.VisitType) {
		if rec.IsTimeEffect() {
			continue
		}
		if strings.HasPrefix(strings.ToLower(rec.Condition), "dice_roll_") {
			records = append(records, rec)
		}
	}
	records = append(records, o.diceOutcomeRecords(player, roll)...)

	batch, err := o.applyRecords(playerID, records, roll, fmt.Sprintf("roll of %d on %s", roll, player.Space))
	if err != nil {
		return nil, err
	}

	// Dice-routed movement binds the destination to the rolled value.
	if o.movement.IsDiceRouted(player.Space, player.VisitType) {
		if dest, ok := o.movement.DiceDestination(player.Space, player.VisitType, roll); ok {
			o.store.Update(func(st *State) {
				st.Player(playerID).MoveIntent = dest
			})
			o.notifier.Notify(Event{
				Type:     EventPlayerMoved,
				PlayerID: playerID,
				Message:  fmt.Sprintf("Roll routes to %s", dest),
				Payload:  map[string]interface{}{"destination": dest, "roll": roll},
			})
		}
	}

	o.turnState = TurnReadyToEnd
	if o.choices.Pending() != nil {
		o.turnState = TurnAwaitingMovementChoice
	}
	return o.actionResult(playerID, roll, batch), nil
}

// diceOutcomeRecords converts the space's dice-outcome table rows for the
// rolled value into effect records. "Next Step" rows are movement, not
// effects, and are skipped here.
func (o *Orchestrator) diceOutcomeRecords(player *models.Player, roll int) []data.EffectRecord {
	var records []data.EffectRecord
	for _, outcome := range o.data.GetDiceEffects(player.Space, player.VisitType) {
		cell := strings.TrimSpace(outcome.Rolls[roll-1])
		if cell == "" {
			continue
		}
		switch outcome.OutcomeType {
		case data.OutcomeTime:
			records = append(records, data.EffectRecord{
				SpaceName:    player.Space,
				VisitType:    player.VisitType,
				EffectType:   "time",
				EffectAction: "add",
				EffectValue:  cell,
				Description:  fmt.Sprintf("Time outcome for roll of %d", roll),
			})
		case data.OutcomeFees:
			records = append(records, data.EffectRecord{
				SpaceName:    player.Space,
				VisitType:    player.VisitType,
				EffectType:   "money",
				EffectAction: "fee",
				EffectValue:  cell,
				Description:  fmt.Sprintf("Fee for roll of %d", roll),
			})
		case data.OutcomeCards:
			// Cell format "draw_e:2" or "draw_e".
			action, value := cell, ""
			if i := strings.IndexByte(cell, ':'); i >= 0 {
				action, value = cell[:i], cell[i+1:]
			}
			records = append(records, data.EffectRecord{
				SpaceName:    player.Space,
				VisitType:    player.VisitType,
				EffectType:   "cards",
				EffectAction: action,
				EffectValue:  value,
				Description:  fmt.Sprintf("Card outcome for roll of %d", roll),
			})
		}
	}
	return records
}

// TriggerManualEffect applies the manual effect matching the key (plain
// "cards" or compound "cards:draw_b").
func (o *Orchestrator) TriggerManualEffect(playerID uuid.UUID, effectKey string) error {
	_, err := o.TriggerManualEffectWithFeedback(playerID, effectKey)
	return err
}

// TriggerManualEffectWithFeedback applies the manual effect and returns a
// structured result.
func (o *Orchestrator) TriggerManualEffectWithFeedback(playerID uuid.UUID, effectKey string) (*ActionResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.validateActor(playerID); err != nil {
		return nil, err
	}
	player, err := o.store.Player(playerID)
	if err != nil {
		return nil, err
	}

	var match *data.EffectRecord
	for _, rec := range o.data.GetSpaceEffects(player.Space, player.VisitType) {
		if !rec.IsManual() {
			continue
		}
		if rec.EffectType == effectKey || rec.Key() == effectKey {
			r := rec
			match = &r
			break
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %q on %s", ErrNoSuchEffect, effectKey, player.Space)
	}

	// Re-check the guard condition; the button may reflect stale UI state.
	ok, err := EvaluateCondition(match.Condition, ConditionContext{Player: player, Roll: player.LastRoll})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrConditionNotMet, match.Condition)
	}

	batch, err := o.applyRecords(playerID, []data.EffectRecord{*match}, player.LastRoll, "manual "+effectKey)
	if err != nil {
		return nil, err
	}
	o.store.Update(func(s *State) { s.CompletedActions++ })

	// A manual action must not silently drop a pending movement decision:
	// if the space forks and no intent is staged, re-offer the choice.
	player, _ = o.store.Player(playerID)
	if player.MoveIntent == "" {
		if err := o.offerMovementChoice(playerID); err != nil {
			return nil, err
		}
	}
	return o.actionResult(playerID, player.LastRoll, batch), nil
}

// ResolveChoice resolves the pending choice with the given option. For
// movement choices the selection becomes the player's move intent,
// consumed at end of turn.
func (o *Orchestrator) ResolveChoice(choiceID uuid.UUID, optionID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	choice, err := o.choices.Resolve(choiceID, optionID)
	if err != nil {
		return err
	}
	if choice.Type == ChoiceMovement {
		o.store.Update(func(s *State) {
			s.Player(choice.PlayerID).MoveIntent = optionID
		})
		o.turnState = TurnReadyToEnd
	}
	return nil
}

// CanEndTurn reports whether the player may end the turn now and how many
// required actions remain.
func (o *Orchestrator) CanEndTurn(playerID uuid.UUID) (bool, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.validateActor(playerID); err != nil {
		return false, 0
	}
	return o.rules.CanEndTurn(o.store.State())
}

// EndTurnWithMovement applies leaving-space time effects, resolves
// movement, checks the win condition, commits TEMP→REAL, and advances to
// the next eligible player. force skips the required-action check.
func (o *Orchestrator) EndTurnWithMovement(playerID uuid.UUID, force bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.endTurn(playerID, force)
}

// endTurn implements the turn-ending sequence. Assumes lock held.
func (o *Orchestrator) endTurn(playerID uuid.UUID, force bool) error {
	if err := o.validateActor(playerID); err != nil {
		return err
	}
	if !force {
		if ok, remaining := o.rules.CanEndTurn(o.store.State()); !ok {
			return fmt.Errorf("%w: %d action(s) remaining", ErrActionsIncomplete, remaining)
		}
	}
	o.cancelTurnTimer()

	player, err := o.store.Player(playerID)
	if err != nil {
		return err
	}

	// Leaving-space time effects run before any movement.
	var timeRecords []data.EffectRecord
	for _, rec := range o.data.GetSpaceEffects(player.Space, player.VisitType) {
		if rec.IsTimeEffect() && !rec.IsManual() {
			timeRecords = append(timeRecords, rec)
		}
	}
	if _, err := o.applyRecords(playerID, timeRecords, player.LastRoll, "leaving "+player.Space); err != nil {
		return err
	}

	// Movement precedence: dice outcome, then staged intent, then the
	// single automatic destination, then no movement.
	player, _ = o.store.Player(playerID)
	dest := ""
	if o.movement.IsDiceRouted(player.Space, player.VisitType) && player.LastRoll > 0 {
		if d, ok := o.movement.DiceDestination(player.Space, player.VisitType, player.LastRoll); ok {
			dest = d
		}
	}
	if dest == "" && player.MoveIntent != "" {
		dest = player.MoveIntent
	}
	if dest == "" {
		if dests := o.movement.Destinations(player.Space, player.VisitType); len(dests) == 1 {
			dest = dests[0]
		}
	}

	o.turnState = TurnCommitting
	from := player.Space
	o.store.Update(func(s *State) {
		p := s.Player(playerID)
		p.VisitedSpaces[p.Space] = true
		p.MoveIntent = ""
		if dest != "" {
			p.Space = dest
		}
		s.HasMoved = true
	})
	if dest != "" {
		o.log.WithFields(logrus.Fields{"player": playerID, "from": from, "to": dest}).Debug("player moved")
		o.notifier.Notify(Event{
			Type:     EventPlayerMoved,
			PlayerID: playerID,
			Message:  fmt.Sprintf("Moved to %s", dest),
			Payload:  map[string]interface{}{"from": from, "to": dest},
		})
	}

	player, _ = o.store.Player(playerID)
	won := o.rules.CheckWinCondition(player)

	if err := o.store.Commit(); err != nil {
		return err
	}
	o.snapshots.Clear(playerID)
	if o.OnCommit != nil {
		o.OnCommit(o.store.Real())
	}

	if won {
		o.endGame(playerID)
		return nil
	}
	return o.nextPlayer(playerID)
}

// nextPlayer advances to the next eligible player. The ordering here is
// deliberate: every step depends on the turn counter not yet having
// advanced.
func (o *Orchestrator) nextPlayer(endingPlayer uuid.UUID) error {
	// 1. Expire timed cards before the counter moves, so a card "active
	//    for N turns" is measured in exact committed turns.
	o.expireTimedCards()

	// 2. Duration-based active effects for the ending turn.
	o.applyDurationEffects()

	// 3. The ending player's one-shot re-roll does not survive their turn.
	o.store.Update(func(s *State) {
		if p := s.Player(endingPlayer); p != nil {
			p.Modifiers.CanReRoll = false
		}
	})

	// 4. The +1 aligns the end log with the start log emitted this turn.
	turnNumber := o.store.State().TurnCount + 1
	o.log.Infof("Turn %d ended", turnNumber)

	// 5. Next player in array order with wraparound, consuming skip-turn
	//    modifiers one at a time. A loop, not recursion: consecutive skips
	//    across multiple players must not grow the stack.
	s := o.store.State()
	idx := 0
	for i, p := range s.Players {
		if p.ID == endingPlayer {
			idx = i
			break
		}
	}
	var next *models.Player
	for hops := 0; hops < len(s.Players)*16; hops++ {
		idx = (idx + 1) % len(s.Players)
		candidate := s.Players[idx]
		if candidate.Modifiers.SkipTurns <= 0 {
			next = candidate
			break
		}
		o.log.WithFields(logrus.Fields{"player": candidate.ID, "remaining": candidate.Modifiers.SkipTurns - 1}).
			Infof("%s skips a turn", candidate.Name)
		o.notifier.Notify(Event{
			Type:     EventTurnSkipped,
			PlayerID: candidate.ID,
			Message:  fmt.Sprintf("%s skips a turn", candidate.Name),
		})
		o.store.Update(func(st *State) {
			st.Player(candidate.ID).Modifiers.SkipTurns--
		})
	}
	if next == nil {
		return fmt.Errorf("no eligible next player after skip resolution")
	}

	// 6. Advance the global turn counter.
	o.store.Update(func(st *State) { st.TurnCount++ })

	// 7. New current player, fresh turn flags.
	o.store.Update(func(st *State) {
		st.CurrentPlayer = next.ID
		st.HasMoved = false
		st.HasRolled = false
		st.CompletedActions = 0
	})

	// 8. End-of-turn notification for the player who just finished.
	o.notifier.Notify(Event{
		Type:     EventTurnEnded,
		PlayerID: endingPlayer,
		Message:  fmt.Sprintf("Turn %d ended", turnNumber),
		Payload:  map[string]interface{}{"turn": turnNumber},
	})

	// Turn-limit check before handing the next player their turn.
	if over, reason := o.rules.CheckGameEndConditions(); over {
		o.log.Info("game over: " + reason)
		o.endGame(uuid.Nil)
		return nil
	}

	// 9. Start the new current player's turn.
	return o.startTurn(next.ID)
}

// expireTimedCards decrements every player's active-card counters and
// drops cards reaching zero. Runs strictly before the turn counter
// advances.
func (o *Orchestrator) expireTimedCards() {
	o.store.Update(func(s *State) {
		for _, p := range s.Players {
			kept := p.ActiveCards[:0]
			for _, ac := range p.ActiveCards {
				ac.TurnsLeft--
				if ac.TurnsLeft > 0 {
					kept = append(kept, ac)
				} else {
					o.log.WithFields(logrus.Fields{"player": p.ID, "card": ac.CardID}).Debug("timed card expired")
				}
			}
			p.ActiveCards = kept
		}
	})
}

// applyDurationEffects charges each player's surviving active cards for
// the ending turn.
func (o *Orchestrator) applyDurationEffects() {
	s := o.store.State()
	for _, p := range s.Players {
		for _, ac := range p.ActiveCards {
			card, ok := o.data.GetCardByID(ac.CardID)
			if !ok || card.PerTurnTime == 0 {
				continue
			}
			if _, err := o.resources.AddTime(p.ID, card.PerTurnTime, "active card "+ac.CardID); err != nil {
				o.log.WithField("card", ac.CardID).Warnf("duration effect failed: %v", err)
			}
		}
	}
}

// SetTurnModifier adds skip-turn counts to a player, consumed one at a
// time when the player would next become current.
func (o *Orchestrator) SetTurnModifier(playerID uuid.UUID, skipTurns int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if skipTurns <= 0 {
		return fmt.Errorf("skip-turn count must be positive")
	}
	if _, err := o.store.Player(playerID); err != nil {
		return err
	}
	o.store.Update(func(s *State) {
		s.Player(playerID).Modifiers.SkipTurns += skipTurns
	})
	return nil
}

// GrantReRoll gives a player the one-shot re-roll permission, cleared at
// their own turn end if unused.
func (o *Orchestrator) GrantReRoll(playerID uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := o.store.Player(playerID); err != nil {
		return err
	}
	o.store.Update(func(s *State) {
		s.Player(playerID).Modifiers.CanReRoll = true
	})
	return nil
}

// TryAgainOnSpace reverts the player to their pre-effect snapshot for the
// current space with a time penalty, discards TEMP, and restarts arrival
// processing from the reverted state. The snapshot survives, so the player
// can retry any number of times.
func (o *Orchestrator) TryAgainOnSpace(playerID uuid.UUID) (*ActionResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.validateActor(playerID); err != nil {
		return nil, err
	}
	player, err := o.store.Player(playerID)
	if err != nil {
		return nil, err
	}
	space := player.Space
	cfg, ok := o.data.GetGameConfigBySpace(space)
	if !ok || !o.negotiate.CanNegotiate(cfg) {
		return nil, fmt.Errorf("%w: %s", ErrNegotiationBlocked, space)
	}
	if !o.snapshots.HasSnapshot(playerID, space) {
		return nil, fmt.Errorf("%w (player %s on %s)", ErrNoSnapshot, playerID, space)
	}
	penalty := o.negotiate.PenaltyDays(cfg)

	// Drop the in-turn working copy, revert REAL, and rebuild TEMP fresh
	// from the reverted state.
	o.store.DiscardTemp()
	o.store.UpdateReal(func(s *State) {
		p := s.Player(playerID)
		o.snapshots.Revert(p, space, penalty)
		s.HasRolled = false
		s.HasMoved = false
		s.RequiredActions = cfg.RequiredActions
		s.CompletedActions = 0
		s.PendingChoice = nil
	})
	if err := o.store.BeginTurn(); err != nil {
		return nil, err
	}
	o.notifier.Notify(Event{
		Type:     EventSnapshotRevert,
		PlayerID: playerID,
		Message:  fmt.Sprintf("Trying again on %s (+%d day(s))", space, penalty),
		Payload:  map[string]interface{}{"space": space, "penaltyDays": penalty},
	})

	o.turnState = TurnEffectsResolving
	batch, err := o.processArrivalEffects(playerID)
	if err != nil {
		return nil, err
	}
	if err := o.offerMovementChoice(playerID); err != nil {
		return nil, err
	}
	if o.choices.Pending() == nil {
		o.turnState = TurnAwaitingRoll
	}
	res := o.actionResult(playerID, 0, batch)
	res.Summary = fmt.Sprintf("Reverted to arrival state on %s; %d day(s) penalty applied. %s", space, penalty, res.Summary)
	return res, nil
}

// PerformNegotiation delegates the negotiate action to the negotiation
// collaborator: permission and penalty come from it, the revert mechanics
// from the snapshot manager.
func (o *Orchestrator) PerformNegotiation(playerID uuid.UUID) (*ActionResult, error) {
	return o.TryAgainOnSpace(playerID)
}

// endGame transitions to END and reports the winner (uuid.Nil when the
// turn limit expired). Assumes lock held.
func (o *Orchestrator) endGame(winner uuid.UUID) {
	o.cancelTurnTimer()
	o.store.UpdateReal(func(s *State) {
		s.Phase = PhaseEnd
		s.Winner = winner
	})
	o.turnState = TurnGameEnded
	msg := "Game ended with no winner (turn limit)"
	if winner != uuid.Nil {
		if p := o.store.Real().Player(winner); p != nil {
			msg = fmt.Sprintf("%s wins", p.Name)
		}
	}
	o.log.Info(msg)
	o.notifier.Notify(Event{
		Type:     EventGameEnded,
		PlayerID: winner,
		Message:  msg,
		Payload:  map[string]interface{}{"turns": o.store.Real().TurnCount},
	})
	if o.OnGameEnd != nil {
		o.OnGameEnd(winner, o.store.Real())
	}
}

// scheduleTurnTimer force-ends an idle player's turn after the configured
// duration. Assumes lock held.
func (o *Orchestrator) scheduleTurnTimer(playerID uuid.UUID) {
	o.cancelTurnTimer()
	if o.turnDuration <= 0 {
		return
	}
	o.turnEpoch++
	epoch := o.turnEpoch
	o.turnTimer = time.AfterFunc(o.turnDuration, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.turnEpoch != epoch || o.store.Real().Phase != PhasePlay {
			return
		}
		o.log.WithField("player", playerID).Info("turn timer fired; forcing end of turn")
		if err := o.endTurn(playerID, true); err != nil {
			o.log.Warnf("forced end of turn failed: %v", err)
		}
	})
}

// cancelTurnTimer stops any pending turn timer. Assumes lock held.
func (o *Orchestrator) cancelTurnTimer() {
	o.turnEpoch++
	if o.turnTimer != nil {
		o.turnTimer.Stop()
		o.turnTimer = nil
	}
}
