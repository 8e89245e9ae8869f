// Package redis implements GameRecordStore on a Redis instance. Room-code
// records are plain keys claimed with SETNX; the question bank is a single
// JSON value.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jacdylngab/quizwire/internal/store"
)

const (
	gameKeyPrefix = "quizwire:game:"
	questionsKey  = "quizwire:questions"
)

// Store is a Redis-backed implementation of store.GameRecordStore.
type Store struct {
	rdb *goredis.Client
}

// Connect creates a client for the given address and database index and
// verifies connectivity with a ping.
func Connect(ctx context.Context, addr string, db int) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &Store{rdb: rdb}, nil
}

// Close shuts down the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) CreateGame(ctx context.Context, code string) error {
	ok, err := s.rdb.SetNX(ctx, gameKeyPrefix+code, 1, 0).Result()
	if err != nil {
		return fmt.Errorf("create game %s: %w", code, err)
	}
	if !ok {
		return store.ErrCodeExists
	}
	return nil
}

func (s *Store) GameExists(ctx context.Context, code string) (bool, error) {
	n, err := s.rdb.Exists(ctx, gameKeyPrefix+code).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) DeleteGame(ctx context.Context, code string) error {
	return s.rdb.Del(ctx, gameKeyPrefix+code).Err()
}

func (s *Store) Questions(ctx context.Context) ([]store.Question, error) {
	data, err := s.rdb.Get(ctx, questionsKey).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var qs []store.Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	return qs, nil
}

func (s *Store) SeedQuestions(ctx context.Context, qs []store.Question) error {
	data, err := json.Marshal(qs)
	if err != nil {
		return fmt.Errorf("encode question bank: %w", err)
	}
	return s.rdb.SetNX(ctx, questionsKey, data, 0).Err()
}
