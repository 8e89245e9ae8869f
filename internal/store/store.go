// Package store defines the persistence port for game-session records and
// the trivia question bank. Everything else about a game (players, scores,
// round progress) lives in memory only and never touches a driver.
package store

import (
	"context"
	"errors"
)

var (
	// ErrRoomNotFound is returned when no record exists for a room code.
	ErrRoomNotFound = errors.New("store: room not found")
	// ErrCodeExists is returned when creating a game with a code that is
	// already taken.
	ErrCodeExists = errors.New("store: room code already exists")
)

// Question is one fixed-choice trivia question. Options holds up to four
// entries; Answer matches exactly one of them.
type Question struct {
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// GameRecordStore persists the minimal durable state of the coordinator:
// the existence of a room code, and the question bank.
type GameRecordStore interface {
	// CreateGame persists a room-code record. Returns ErrCodeExists if the
	// code is already taken.
	CreateGame(ctx context.Context, code string) error

	// GameExists reports whether a record exists for the given code.
	GameExists(ctx context.Context, code string) (bool, error)

	// DeleteGame removes the record for a finished game. Deleting a code
	// with no record is not an error.
	DeleteGame(ctx context.Context, code string) error

	// Questions returns the full question bank.
	Questions(ctx context.Context) ([]Question, error)

	// SeedQuestions stores the given bank if, and only if, the store holds
	// no questions yet.
	SeedQuestions(ctx context.Context, qs []Question) error
}
