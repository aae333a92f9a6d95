// Package history streams game action records to Redis for the historian
// service. Recording is fire-and-forget: a dead or absent Redis never
// blocks or fails turn processing.
package history

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"groundwork/internal/game"
)

const actionStream = "game_actions"

// ActionRecord is one ordered entry in a game's action history.
type ActionRecord struct {
	GameID      uuid.UUID              `json:"gameId"`
	ActionIndex int64                  `json:"actionIndex"`
	ActorID     uuid.UUID              `json:"actorId"` // Nil for game-level events
	ActionType  string                 `json:"actionType"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Timestamp   int64                  `json:"timestamp"`
}

// Recorder publishes action records to a Redis stream. A Recorder with a
// nil client silently drops records, so callers never need to nil-check.
type Recorder struct {
	rdb *redis.Client
	log *logrus.Logger
	idx atomic.Int64
}

// NewRecorder connects a recorder to Redis. Empty addr returns a no-op
// recorder.
func NewRecorder(addr, password string, db int, log *logrus.Logger) *Recorder {
	if addr == "" {
		return &Recorder{log: log}
	}
	return &Recorder{
		rdb: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		log: log,
	}
}

// Ping verifies the Redis connection. No-op recorders always succeed.
func (r *Recorder) Ping(ctx context.Context) error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (r *Recorder) Close() error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

// Record publishes one action record asynchronously, assigning the next
// action index for ordering.
func (r *Recorder) Record(gameID, actorID uuid.UUID, actionType, message string, payload map[string]interface{}) {
	if r.rdb == nil {
		return
	}
	rec := ActionRecord{
		GameID:      gameID,
		ActionIndex: r.idx.Add(1),
		ActorID:     actorID,
		ActionType:  actionType,
		Payload:     payload,
		Message:     message,
		Timestamp:   time.Now().UnixMilli(),
	}
	go func(rec ActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		body, err := json.Marshal(rec)
		if err != nil {
			r.log.Warnf("history: marshal action %d for game %s: %v", rec.ActionIndex, rec.GameID, err)
			return
		}
		err = r.rdb.XAdd(ctx, &redis.XAddArgs{
			Stream: actionStream,
			Values: map[string]interface{}{"record": body},
		}).Err()
		if err != nil {
			r.log.Warnf("history: publish action %d (%s) for game %s: %v", rec.ActionIndex, rec.ActionType, rec.GameID, err)
		}
	}(rec)
}

// Notifier adapts the recorder to the game notifier interface, so every
// game event lands in the action stream without the orchestrator knowing
// about Redis.
func (r *Recorder) Notifier(gameID uuid.UUID) game.Notifier {
	return game.NotifierFunc(func(ev game.Event) {
		r.Record(gameID, ev.PlayerID, string(ev.Type), ev.Message, ev.Payload)
	})
}
