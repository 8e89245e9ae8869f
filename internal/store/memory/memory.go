// Package memory provides an in-memory GameRecordStore, used by tests and
// as the default driver for local development.
package memory

import (
	"context"
	"sync"

	"github.com/jacdylngab/quizwire/internal/store"
)

// Store is a thread-safe, map-backed implementation of store.GameRecordStore.
type Store struct {
	mu        sync.Mutex
	games     map[string]struct{}
	questions []store.Question
}

// New returns an empty Store. Seed the question bank with SeedQuestions.
func New() *Store {
	return &Store{
		games: make(map[string]struct{}),
	}
}

func (s *Store) CreateGame(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[code]; exists {
		return store.ErrCodeExists
	}
	s.games[code] = struct{}{}
	return nil
}

func (s *Store) GameExists(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.games[code]
	return exists, nil
}

func (s *Store) DeleteGame(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, code)
	return nil
}

func (s *Store) Questions(_ context.Context) ([]store.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qs := make([]store.Question, len(s.questions))
	copy(qs, s.questions)
	return qs, nil
}

func (s *Store) SeedQuestions(_ context.Context, qs []store.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) > 0 {
		return nil
	}
	s.questions = make([]store.Question, len(qs))
	copy(s.questions, qs)
	return nil
}
