package room

import "errors"

// Recoverable protocol errors. The gateway maps each of these to a unicast
// error event for the connection that triggered it; none of them mutates
// session state.
var (
	ErrDuplicateConnection = errors.New("room: connection already joined a game")
	ErrUsernameTaken       = errors.New("room: username already taken")
	ErrNotEnoughPlayers    = errors.New("room: not enough players to start")
	ErrGameInProgress      = errors.New("room: game already in progress")
	ErrGameNotStarted      = errors.New("room: game has not started")
	ErrUnknownPlayer       = errors.New("room: player not in this game")
	ErrNoQuestions         = errors.New("room: question bank is empty")
)
