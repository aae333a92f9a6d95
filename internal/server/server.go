// Package server exposes the orchestrator over HTTP and websockets: a
// create-game endpoint that mints per-player tokens, and a websocket
// gateway that forwards player commands and fans game events back out.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"groundwork/internal/data"
	"groundwork/internal/database"
	"groundwork/internal/game"
	"groundwork/internal/history"
	"groundwork/internal/models"
)

// Server owns the live game sessions.
type Server struct {
	log      *logrus.Logger
	data     data.Provider
	db       *database.Store   // optional
	recorder *history.Recorder // optional
	secret   []byte

	maxTurns     int
	turnDuration time.Duration

	mu    sync.Mutex
	games map[uuid.UUID]*session
}

// session is one running game plus its connected clients.
type session struct {
	orch *game.Orchestrator

	mu    sync.Mutex
	conns map[uuid.UUID]*websocket.Conn
}

// Options configures a server.
type Options struct {
	Data         data.Provider
	DB           *database.Store
	Recorder     *history.Recorder
	JWTSecret    string
	MaxTurns     int
	TurnDuration time.Duration
}

// New builds a server.
func New(log *logrus.Logger, opts Options) *Server {
	return &Server{
		log:          log,
		data:         opts.Data,
		db:           opts.DB,
		recorder:     opts.Recorder,
		secret:       []byte(opts.JWTSecret),
		maxTurns:     opts.MaxTurns,
		turnDuration: opts.TurnDuration,
		games:        make(map[uuid.UUID]*session),
	}
}

// Routes registers the HTTP handlers.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/games", s.handleCreateGame)
	mux.HandleFunc("/ws", s.handleWS)
}

type createGameRequest struct {
	PlayerNames []string `json:"playerNames"`
}

type createGameResponse struct {
	GameID  uuid.UUID          `json:"gameId"`
	Players []createGamePlayer `json:"players"`
}

type createGamePlayer struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Token string    `json:"token"`
}

// handleCreateGame builds a game for the named players, starts it, and
// returns one scoped token per player.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.PlayerNames) == 0 {
		http.Error(w, "playerNames required", http.StatusBadRequest)
		return
	}

	start := s.data.StartingSpace()
	if start == "" {
		http.Error(w, "no starting space configured", http.StatusInternalServerError)
		return
	}
	players := make([]*models.Player, len(req.PlayerNames))
	for i, name := range req.PlayerNames {
		players[i] = models.NewPlayer(name, start)
	}

	sess := &session{conns: make(map[uuid.UUID]*websocket.Conn)}
	orch := game.NewOrchestrator(players, game.Config{
		Data:         s.data,
		Logger:       s.log,
		Seed:         uint64(time.Now().UnixNano()),
		MaxTurns:     s.maxTurns,
		TurnDuration: s.turnDuration,
		Notifier:     s.notifierFor(sess),
	})
	sess.orch = orch
	if s.db != nil {
		orch.OnCommit = func(state *game.State) { s.db.SaveCommittedState(orch.ID, state) }
		orch.OnGameEnd = func(winner uuid.UUID, final *game.State) { s.db.SaveFinalResult(orch.ID, winner, final) }
	}

	if err := orch.StartGame(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	s.games[orch.ID] = sess
	s.mu.Unlock()

	resp := createGameResponse{GameID: orch.ID}
	for _, p := range players {
		token, err := issueToken(s.secret, orch.ID, p.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.Players = append(resp.Players, createGamePlayer{ID: p.ID, Name: p.Name, Token: token})
	}
	s.log.WithFields(logrus.Fields{"game": orch.ID, "players": len(players)}).Info("game created")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// notifierFor fans game events out to every connected client of a session
// and into the history stream.
func (s *Server) notifierFor(sess *session) game.Notifier {
	broadcast := game.NotifierFunc(func(ev game.Event) {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		for pid, conn := range sess.conns {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := wsjson.Write(ctx, conn, map[string]interface{}{"event": ev}); err != nil {
				s.log.Debugf("dropping dead connection for player %s: %v", pid, err)
				conn.Close(websocket.StatusGoingAway, "write failed")
				delete(sess.conns, pid)
			}
			cancel()
		}
	})
	if s.recorder == nil {
		return broadcast
	}
	var once sync.Once
	var recording game.Notifier
	return game.NotifierFunc(func(ev game.Event) {
		broadcast.Notify(ev)
		once.Do(func() { recording = s.recorder.Notifier(sess.orch.ID) })
		recording.Notify(ev)
	})
}

// command is one inbound websocket message.
type command struct {
	Action   string    `json:"action"`
	ChoiceID uuid.UUID `json:"choiceId,omitempty"`
	OptionID string    `json:"optionId,omitempty"`
	Effect   string    `json:"effect,omitempty"`
	Force    bool      `json:"force,omitempty"`
}

// reply is one outbound websocket response to a command.
type reply struct {
	OK      bool               `json:"ok"`
	Error   string             `json:"error,omitempty"`
	Result  *game.ActionResult `json:"result,omitempty"`
	Actions []string           `json:"actions,omitempty"`
}

// handleWS authenticates the token and runs the per-connection command
// loop.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	gameID, playerID, err := parseToken(s.secret, r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	s.mu.Lock()
	sess, ok := s.games[gameID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.log.Warnf("websocket accept failed: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "session ended")

	sess.mu.Lock()
	if old, exists := sess.conns[playerID]; exists {
		old.Close(websocket.StatusPolicyViolation, "replaced by new connection")
	}
	sess.conns[playerID] = conn
	sess.mu.Unlock()
	s.log.WithFields(logrus.Fields{"game": gameID, "player": playerID}).Info("player connected")

	defer func() {
		sess.mu.Lock()
		if sess.conns[playerID] == conn {
			delete(sess.conns, playerID)
		}
		sess.mu.Unlock()
	}()

	ctx := r.Context()
	for {
		var cmd command
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			return
		}
		resp := s.dispatch(sess, playerID, cmd)
		writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := wsjson.Write(writeCtx, conn, resp)
		cancel()
		if err != nil {
			return
		}
	}
}

// dispatch routes one command to the orchestrator.
func (s *Server) dispatch(sess *session, playerID uuid.UUID, cmd command) reply {
	orch := sess.orch
	switch cmd.Action {
	case "roll_dice":
		res, err := orch.RollDiceWithFeedback(playerID)
		return replyFor(res, err)
	case "resolve_choice":
		err := orch.ResolveChoice(cmd.ChoiceID, cmd.OptionID)
		return replyFor(nil, err)
	case "manual_effect":
		res, err := orch.TriggerManualEffectWithFeedback(playerID, cmd.Effect)
		return replyFor(res, err)
	case "try_again":
		res, err := orch.TryAgainOnSpace(playerID)
		return replyFor(res, err)
	case "end_turn":
		err := orch.EndTurnWithMovement(playerID, cmd.Force)
		return replyFor(nil, err)
	case "actions":
		return reply{OK: true, Actions: orch.GetAvailableActions(playerID)}
	default:
		return reply{Error: "unknown action " + cmd.Action}
	}
}

func replyFor(res *game.ActionResult, err error) reply {
	if err != nil {
		return reply{Error: err.Error()}
	}
	return reply{OK: true, Result: res}
}
