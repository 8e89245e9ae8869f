// Package gateway is the realtime transport layer: it accepts websocket
// connections, decodes inbound protocol events, dispatches them to the
// right room session, and fans outbound events back to every connection
// subscribed to the room.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jacdylngab/quizwire/internal/room"
	"github.com/jacdylngab/quizwire/internal/store"
)

// Config holds the gameplay knobs the gateway applies around the session
// state machine.
type Config struct {
	// MinPlayers gates start_game.
	MinPlayers int
	// QuestionsPerGame is the sample size drawn from the bank at start.
	QuestionsPerGame int
	// AdvanceDelay is applied between a next-question or game-over
	// directive and its broadcast, so clients see the last answer state
	// before the screen changes. Zero broadcasts synchronously.
	AdvanceDelay time.Duration
}

// DefaultConfig mirrors the server defaults.
func DefaultConfig() Config {
	return Config{
		MinPlayers:       2,
		QuestionsPerGame: 5,
		AdvanceDelay:     time.Second,
	}
}

// Gateway routes protocol events between connections and room sessions.
type Gateway struct {
	log      *logrus.Logger
	store    store.GameRecordStore
	registry *room.Registry
	cfg      Config

	// mu guards the subscription maps only. Session state is serialized
	// by each session's own mutex.
	mu     sync.RWMutex
	rooms  map[string]map[uuid.UUID]*Conn
	byConn map[uuid.UUID]string
}

// New builds a Gateway around the given record store and session registry.
func New(logger *logrus.Logger, st store.GameRecordStore, registry *room.Registry, cfg Config) *Gateway {
	if cfg.MinPlayers <= 0 {
		cfg.MinPlayers = 2
	}
	if cfg.QuestionsPerGame <= 0 {
		cfg.QuestionsPerGame = 5
	}
	return &Gateway{
		log:      logger,
		store:    st,
		registry: registry,
		cfg:      cfg,
		rooms:    make(map[string]map[uuid.UUID]*Conn),
		byConn:   make(map[uuid.UUID]string),
	}
}

// HandleMessage decodes one inbound frame and dispatches it. Malformed
// frames produce a unicast error rather than a silent drop.
func (g *Gateway) HandleMessage(ctx context.Context, c *Conn, raw []byte) {
	var ev InboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		g.log.WithField("conn", c.ID).Warnf("invalid json frame: %v", err)
		c.WriteError("Invalid message format.")
		return
	}
	g.HandleEvent(ctx, c, ev)
}

// HandleEvent applies one protocol event from the given connection.
func (g *Gateway) HandleEvent(ctx context.Context, c *Conn, ev InboundEvent) {
	if ev.GameID == "" {
		c.WriteError("Missing game_id.")
		return
	}

	switch ev.Type {
	case EventJoin:
		g.handleJoin(ctx, c, ev)
	case EventStartGame:
		g.handleStart(ctx, c, ev)
	case EventQuestion:
		g.handleAnswer(ctx, c, ev)
	case EventScoreUpdate:
		g.handleScore(ctx, c, ev)
	default:
		g.log.WithFields(logrus.Fields{"conn": c.ID, "type": ev.Type}).Warn("unknown event type")
		c.WriteError("Unknown event type.")
	}
}

func (g *Gateway) handleJoin(ctx context.Context, c *Conn, ev InboundEvent) {
	if ev.Username == "" {
		c.WriteError("Missing username.")
		return
	}

	exists, err := g.store.GameExists(ctx, ev.GameID)
	if err != nil {
		g.log.WithField("game", ev.GameID).Errorf("record lookup failed: %v", err)
		c.WriteError("Something went wrong, try again.")
		return
	}
	if !exists {
		c.WriteError(errorMessage(store.ErrRoomNotFound))
		return
	}

	session := g.registry.GetOrCreate(ev.GameID)
	standings, err := session.Join(c.ID, ev.Username)
	if err != nil {
		c.WriteError(errorMessage(err))
		return
	}

	// A connection switching rooms leaves its old room first, so it stops
	// receiving that room's broadcasts and its old session does not wait on
	// a player who is no longer there.
	if prev, ok := g.roomOf(c); ok && prev != ev.GameID {
		g.leave(ctx, c)
	}
	g.subscribe(ev.GameID, c)
	g.log.WithFields(logrus.Fields{
		"game":     ev.GameID,
		"username": ev.Username,
		"conn":     c.ID,
	}).Info("player joined")

	g.broadcast(ev.GameID, map[string]interface{}{
		"type":    EventUpdatePlayers,
		"players": standings,
	})
}

func (g *Gateway) handleStart(ctx context.Context, c *Conn, ev InboundEvent) {
	session, ok := g.registry.Get(ev.GameID)
	if !ok {
		c.WriteError(errorMessage(store.ErrRoomNotFound))
		return
	}

	bank, err := g.store.Questions(ctx)
	if err != nil {
		g.log.WithField("game", ev.GameID).Errorf("question bank fetch failed: %v", err)
		c.WriteError("Something went wrong, try again.")
		return
	}

	first, err := session.Start(g.cfg.MinPlayers, g.cfg.QuestionsPerGame, bank)
	if err != nil {
		c.WriteError(errorMessage(err))
		return
	}

	g.log.WithFields(logrus.Fields{"game": ev.GameID, "players": session.PlayerCount()}).Info("game started")
	g.broadcast(ev.GameID, map[string]interface{}{
		"type":     EventGameStarted,
		"question": first,
	})
}

func (g *Gateway) handleAnswer(ctx context.Context, c *Conn, ev InboundEvent) {
	session, ok := g.registry.Get(ev.GameID)
	if !ok {
		c.WriteError(errorMessage(store.ErrRoomNotFound))
		return
	}

	adv, err := session.RecordAnswer(ev.Username)
	if err != nil {
		c.WriteError(errorMessage(err))
		return
	}

	g.applyAdvance(ctx, ev.GameID, adv)
}

// applyAdvance broadcasts a round directive: the next question, or the
// game-over signal with its record and registry teardown. The zero directive
// is a no-op.
func (g *Gateway) applyAdvance(ctx context.Context, code string, adv room.Advance) {
	switch {
	case adv.Next != nil:
		next := *adv.Next
		g.after(func() {
			g.broadcast(code, map[string]interface{}{
				"type":     EventNextQuestion,
				"question": next,
			})
		})
	case adv.GameOver:
		g.log.WithField("game", code).Info("game over")
		if err := g.store.DeleteGame(ctx, code); err != nil {
			g.log.WithField("game", code).Errorf("failed to delete game record: %v", err)
		}
		g.registry.Remove(code)
		g.after(func() {
			g.broadcast(code, map[string]interface{}{
				"type": EventGameOver,
			})
		})
	}
}

func (g *Gateway) handleScore(_ context.Context, c *Conn, ev InboundEvent) {
	session, ok := g.registry.Get(ev.GameID)
	if !ok {
		c.WriteError(errorMessage(store.ErrRoomNotFound))
		return
	}

	standings, err := session.RecordScore(ev.Username)
	if err != nil {
		c.WriteError(errorMessage(err))
		return
	}

	g.broadcast(ev.GameID, map[string]interface{}{
		"type":    EventUpdatePlayers,
		"players": standings,
	})
}

// HandleDisconnect runs the transport-level disconnect flow for a closed
// connection. Empty sessions are reaped from the registry; the persisted
// room record is kept so the code stays joinable.
func (g *Gateway) HandleDisconnect(c *Conn) {
	g.leave(context.Background(), c)
}

// leave removes the connection from whichever room holds it, runs the
// session disconnect, and broadcasts the fallout: updated standings, plus
// any round directive when the leaver was the last player the round was
// waiting on.
func (g *Gateway) leave(ctx context.Context, c *Conn) {
	code, ok := g.unsubscribe(c)
	if !ok {
		return
	}

	session, ok := g.registry.Get(code)
	if !ok {
		return
	}

	standings, adv, removed, empty := session.Disconnect(c.ID)
	if !removed {
		return
	}

	g.log.WithFields(logrus.Fields{"game": code, "conn": c.ID}).Info("player disconnected")
	if empty {
		g.registry.Remove(code)
		return
	}
	g.broadcast(code, map[string]interface{}{
		"type":    EventUpdatePlayers,
		"players": standings,
	})
	g.applyAdvance(ctx, code, adv)
}

// roomOf reports which room, if any, the connection is subscribed to.
func (g *Gateway) roomOf(c *Conn) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	code, ok := g.byConn[c.ID]
	return code, ok
}

// subscribe adds the connection to the room's broadcast set.
func (g *Gateway) subscribe(code string, c *Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rooms[code] == nil {
		g.rooms[code] = make(map[uuid.UUID]*Conn)
	}
	g.rooms[code][c.ID] = c
	g.byConn[c.ID] = code
}

// unsubscribe removes the connection and returns the room it was in.
func (g *Gateway) unsubscribe(c *Conn) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	code, ok := g.byConn[c.ID]
	if !ok {
		return "", false
	}
	delete(g.byConn, c.ID)
	if members, ok := g.rooms[code]; ok {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(g.rooms, code)
		}
	}
	return code, true
}

// broadcast sends msg to every connection subscribed to the room. Writes
// are non-blocking; no lock is held across a websocket write.
func (g *Gateway) broadcast(code string, msg map[string]interface{}) {
	g.mu.RLock()
	conns := make([]*Conn, 0, len(g.rooms[code]))
	for _, c := range g.rooms[code] {
		conns = append(conns, c)
	}
	g.mu.RUnlock()

	for _, c := range conns {
		c.Write(msg)
	}
}

// after runs fn after the configured advance delay. A zero delay runs it
// synchronously, which tests rely on.
func (g *Gateway) after(fn func()) {
	if g.cfg.AdvanceDelay <= 0 {
		fn()
		return
	}
	time.AfterFunc(g.cfg.AdvanceDelay, fn)
}

// errorMessage maps protocol errors to the human-readable text sent in
// error events.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, room.ErrDuplicateConnection):
		return "You have already joined this game."
	case errors.Is(err, room.ErrUsernameTaken):
		return "That name is already taken."
	case errors.Is(err, room.ErrNotEnoughPlayers):
		return "Not enough players to start the game."
	case errors.Is(err, room.ErrGameInProgress):
		return "The game is already in progress."
	case errors.Is(err, room.ErrGameNotStarted):
		return "The game has not started yet."
	case errors.Is(err, room.ErrUnknownPlayer):
		return "You are not in this game."
	case errors.Is(err, room.ErrNoQuestions):
		return "No questions are available."
	case errors.Is(err, store.ErrRoomNotFound):
		return "The game ID you entered does not exist!"
	default:
		return "Something went wrong, try again."
	}
}
