// Package room holds the in-memory state for active trivia sessions: the
// per-room state machine, the registry of live sessions, and the room-code
// generator. Sessions perform no I/O; every mutating operation returns the
// payload the caller should broadcast.
package room

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jacdylngab/quizwire/internal/store"
)

// Phase is the lifecycle stage of a session.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseInProgress
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseInProgress:
		return "in_progress"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// PlayerScore is one row of the standings.
type PlayerScore struct {
	Username string
	Score    int
}

// Standings is an ordered list of players with scores. It marshals to a
// JSON object whose keys keep slice order, because clients render the
// standings in the order received (join order in the lobby, rank order
// after score updates).
type Standings []PlayerScore

func (s Standings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ps := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(ps.Username)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		score, err := json.Marshal(ps.Score)
		if err != nil {
			return nil, err
		}
		buf.Write(score)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Advance is the directive returned once every player has acted on the
// current question: either the next question to broadcast, or the game-over
// signal. The zero value means "round still open". Both RecordAnswer and
// Disconnect can produce one, since a departing player may be the last one
// the round was waiting on.
type Advance struct {
	Next     *store.Question
	GameOver bool
}

// Session is the state machine for one room. All exported methods serialize
// through the session mutex, so concurrent events on the same room cannot
// interleave.
type Session struct {
	Code string

	mu          sync.Mutex
	phase       Phase
	order       []string // usernames in join order
	scores      map[string]int
	connections map[uuid.UUID]string // connection id -> username
	remaining   []store.Question
	answered    map[string]struct{}
	rng         *rand.Rand
}

// NewSession creates an empty lobby-phase session for the given room code.
func NewSession(code string) *Session {
	return &Session{
		Code:        code,
		phase:       PhaseLobby,
		scores:      make(map[string]int),
		connections: make(map[uuid.UUID]string),
		answered:    make(map[string]struct{}),
	}
}

// Phase returns the current lifecycle stage.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// PlayerCount returns the number of joined players.
func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Join adds a player in the lobby phase. On success the full standings, in
// join order, are returned for broadcast.
func (s *Session) Join(connID uuid.UUID, username string) (Standings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLobby {
		return nil, ErrGameInProgress
	}
	if _, exists := s.connections[connID]; exists {
		return nil, ErrDuplicateConnection
	}
	if _, exists := s.scores[username]; exists {
		return nil, ErrUsernameTaken
	}

	s.connections[connID] = username
	s.scores[username] = 0
	s.order = append(s.order, username)

	return s.standingsJoinOrder(), nil
}

// Start moves the session into play. It draws a random sample of perGame
// questions without replacement from the bank, removes one as the opening
// question, and returns that question for the game_started broadcast.
func (s *Session) Start(minPlayers, perGame int, bank []store.Question) (store.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLobby {
		return store.Question{}, ErrGameInProgress
	}
	if len(s.order) < minPlayers {
		return store.Question{}, ErrNotEnoughPlayers
	}
	if len(bank) == 0 {
		return store.Question{}, ErrNoQuestions
	}

	sample := make([]store.Question, len(bank))
	copy(sample, bank)
	s.random().Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})
	if perGame > 0 && perGame < len(sample) {
		sample = sample[:perGame]
	}

	first := sample[0]
	s.remaining = sample[1:]
	s.answered = make(map[string]struct{})
	s.phase = PhaseInProgress

	return first, nil
}

// RecordAnswer marks a player as having acted on the current question. Once
// every joined player has acted it either advances the round (returning the
// next question, drawn pseudo-randomly from the remaining set) or, with no
// questions left, signals game over. The game-over signal fires exactly
// once; the session is terminal afterwards.
func (s *Session) RecordAnswer(username string) (Advance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return Advance{}, ErrGameNotStarted
	}
	if _, exists := s.scores[username]; !exists {
		return Advance{}, ErrUnknownPlayer
	}

	s.answered[username] = struct{}{}
	return s.advanceIfRoundDone(), nil
}

// advanceIfRoundDone closes the round if every joined player has now acted:
// it draws the next question pseudo-randomly from the remaining set, or with
// none left marks the session finished and signals game over. Callers hold
// the lock.
func (s *Session) advanceIfRoundDone() Advance {
	if s.phase != PhaseInProgress || len(s.order) == 0 || len(s.answered) < len(s.order) {
		return Advance{}
	}

	if len(s.remaining) == 0 {
		s.phase = PhaseFinished
		return Advance{GameOver: true}
	}

	s.answered = make(map[string]struct{})
	idx := s.random().Intn(len(s.remaining))
	next := s.remaining[idx]
	s.remaining = append(s.remaining[:idx], s.remaining[idx+1:]...)
	return Advance{Next: &next}
}

// RecordScore awards a point to the player and returns the standings sorted
// by descending score. Ties keep join order; the sort is stable over the
// join-ordered slice, so the tie-break is explicit rather than incidental.
func (s *Session) RecordScore(username string) (Standings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.scores[username]; !exists {
		return nil, ErrUnknownPlayer
	}
	s.scores[username]++

	standings := s.standingsJoinOrder()
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
	return standings, nil
}

// Disconnect removes the connection and its player, if any. It returns the
// updated standings for broadcast, the round directive to apply (the leaver
// may have been the only player the round was still waiting on), whether a
// player was actually removed, and whether the session is now empty. Unknown
// connection ids are a no-op.
func (s *Session) Disconnect(connID uuid.UUID) (standings Standings, adv Advance, removed, empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username, exists := s.connections[connID]
	if !exists {
		return nil, Advance{}, false, len(s.order) == 0
	}

	delete(s.connections, connID)
	delete(s.scores, username)
	delete(s.answered, username)
	for i, name := range s.order {
		if name == username {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return s.standingsJoinOrder(), s.advanceIfRoundDone(), true, len(s.order) == 0
}

// standingsJoinOrder builds the standings in join order. Callers hold the lock.
func (s *Session) standingsJoinOrder() Standings {
	standings := make(Standings, 0, len(s.order))
	for _, username := range s.order {
		standings = append(standings, PlayerScore{Username: username, Score: s.scores[username]})
	}
	return standings
}

// random returns the session RNG, defaulting to a lazily seeded source.
// Callers hold the lock. Tests may inject a deterministic source with SeedRand.
func (s *Session) random() *rand.Rand {
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return s.rng
}

// SeedRand fixes the session's random source, for deterministic tests.
func (s *Session) SeedRand(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(rand.NewSource(seed))
}
