// Package database persists committed game state and final results to
// Postgres. Writes happen off the turn path; a failed write is logged and
// dropped, never surfaced into game processing.
package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"groundwork/internal/game"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// Connect opens a pool against the given URL and verifies it.
func Connect(ctx context.Context, url string, log *logrus.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool, log: log}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// committedState is the persisted shape of a committed turn: enough to
// audit or replay, not the full in-memory structure.
type committedState struct {
	TurnCount     int                    `json:"turnCount"`
	CurrentPlayer uuid.UUID              `json:"currentPlayer"`
	Players       []persistedPlayer      `json:"players"`
	Decks         map[string]int         `json:"deckSizes"`
	Extra         map[string]interface{} `json:"extra,omitempty"`
}

type persistedPlayer struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Space        string    `json:"space"`
	Money        int       `json:"money"`
	TimeSpent    int       `json:"timeSpent"`
	ProjectScope int       `json:"projectScope"`
	HandSize     int       `json:"handSize"`
}

func snapshotOf(s *game.State) committedState {
	out := committedState{
		TurnCount:     s.TurnCount,
		CurrentPlayer: s.CurrentPlayer,
		Decks:         make(map[string]int, len(s.Decks)),
	}
	for t, deck := range s.Decks {
		out.Decks[t] = len(deck)
	}
	for _, p := range s.Players {
		out.Players = append(out.Players, persistedPlayer{
			ID:           p.ID,
			Name:         p.Name,
			Space:        p.Space,
			Money:        p.Money,
			TimeSpent:    p.TimeSpent,
			ProjectScope: p.ProjectScope,
			HandSize:     len(p.Hand),
		})
	}
	return out
}

// SaveCommittedState upserts the latest committed state for a game. Runs
// in its own goroutine so commit latency never includes a database round
// trip.
func (s *Store) SaveCommittedState(gameID uuid.UUID, state *game.State) {
	if s == nil || s.pool == nil {
		return
	}
	snap := snapshotOf(state)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		body, err := json.Marshal(snap)
		if err != nil {
			s.log.Warnf("database: marshal state for game %s: %v", gameID, err)
			return
		}
		_, err = s.pool.Exec(ctx, `
			INSERT INTO game_states (game_id, turn_count, state, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (game_id)
			DO UPDATE SET turn_count = $2, state = $3, updated_at = now()`,
			gameID, snap.TurnCount, body)
		if err != nil {
			s.log.Warnf("database: save state for game %s: %v", gameID, err)
		}
	}()
}

// SaveFinalResult records the game outcome. winner is uuid.Nil when the
// game ended on the turn limit.
func (s *Store) SaveFinalResult(gameID, winner uuid.UUID, final *game.State) {
	if s == nil || s.pool == nil {
		return
	}
	snap := snapshotOf(final)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		body, err := json.Marshal(snap)
		if err != nil {
			s.log.Warnf("database: marshal result for game %s: %v", gameID, err)
			return
		}
		var winnerArg interface{}
		if winner != uuid.Nil {
			winnerArg = winner
		}
		_, err = s.pool.Exec(ctx, `
			INSERT INTO game_results (game_id, winner_id, turn_count, final_state, ended_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (game_id)
			DO UPDATE SET winner_id = $2, turn_count = $3, final_state = $4, ended_at = now()`,
			gameID, winnerArg, snap.TurnCount, body)
		if err != nil {
			s.log.Warnf("database: save result for game %s: %v", gameID, err)
		}
	}()
}
