package room

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacdylngab/quizwire/internal/store"
)

func testBank(n int) []store.Question {
	bank := make([]store.Question, n)
	for i := range bank {
		bank[i] = store.Question{
			Prompt:  fmt.Sprintf("question %d", i),
			Options: []string{"a", "b", "c", "d"},
			Answer:  "a",
		}
	}
	return bank
}

// joinPlayers joins the given usernames and returns their connection ids.
func joinPlayers(t *testing.T, s *Session, usernames ...string) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, len(usernames))
	for _, username := range usernames {
		id := uuid.New()
		_, err := s.Join(id, username)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestJoinAddsPlayersInOrder(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")

	standings, err := s.Join(uuid.New(), "alice")
	require.NoError(t, err)
	require.Len(t, standings, 1)

	standings, err = s.Join(uuid.New(), "bob")
	require.NoError(t, err)
	require.Len(t, standings, 2)

	standings, err = s.Join(uuid.New(), "carol")
	require.NoError(t, err)
	require.Len(t, standings, 3)

	assert.Equal(t, Standings{
		{Username: "alice", Score: 0},
		{Username: "bob", Score: 0},
		{Username: "carol", Score: 0},
	}, standings)
	assert.Equal(t, 3, s.PlayerCount())
}

func TestJoinDuplicateConnection(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	connID := uuid.New()

	_, err := s.Join(connID, "alice")
	require.NoError(t, err)

	_, err = s.Join(connID, "bob")
	assert.ErrorIs(t, err, ErrDuplicateConnection)
	assert.Equal(t, 1, s.PlayerCount())
}

func TestJoinUsernameTaken(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	joinPlayers(t, s, "alice")

	_, err := s.Join(uuid.New(), "alice")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Equal(t, 1, s.PlayerCount())
}

func TestJoinRejectedOnceStarted(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	joinPlayers(t, s, "alice", "bob")

	_, err := s.Start(2, 5, testBank(6))
	require.NoError(t, err)

	_, err = s.Join(uuid.New(), "carol")
	assert.ErrorIs(t, err, ErrGameInProgress)
}

func TestStartNotEnoughPlayers(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	joinPlayers(t, s, "alice")

	_, err := s.Start(2, 5, testBank(6))
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Equal(t, PhaseLobby, s.Phase())
}

func TestStartEmptyBank(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	joinPlayers(t, s, "alice", "bob")

	_, err := s.Start(2, 5, nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Equal(t, PhaseLobby, s.Phase())
}

// TestStartSamplesWithoutReplacement plays a whole game and checks that
// exactly perGame distinct questions are served, each at most once. The
// round order itself is random and deliberately not asserted.
func TestStartSamplesWithoutReplacement(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	s.SeedRand(42)
	joinPlayers(t, s, "alice", "bob")

	bank := testBank(8)
	first, err := s.Start(2, 5, bank)
	require.NoError(t, err)
	require.Equal(t, PhaseInProgress, s.Phase())

	served := map[string]bool{first.Prompt: true}
	for {
		_, err := s.RecordAnswer("alice")
		require.NoError(t, err)
		adv, err := s.RecordAnswer("bob")
		require.NoError(t, err)
		if adv.GameOver {
			break
		}
		require.NotNil(t, adv.Next)
		assert.False(t, served[adv.Next.Prompt], "question %q served twice", adv.Next.Prompt)
		served[adv.Next.Prompt] = true
	}

	assert.Len(t, served, 5)
	assert.Equal(t, PhaseFinished, s.Phase())
}

func TestRecordAnswerWaitsForAllPlayers(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	joinPlayers(t, s, "alice", "bob", "carol")

	_, err := s.Start(2, 5, testBank(6))
	require.NoError(t, err)

	adv, err := s.RecordAnswer("alice")
	require.NoError(t, err)
	assert.Zero(t, adv)

	// Repeat answers from the same player must not count twice.
	adv, err = s.RecordAnswer("alice")
	require.NoError(t, err)
	assert.Zero(t, adv)

	adv, err = s.RecordAnswer("bob")
	require.NoError(t, err)
	assert.Zero(t, adv)

	adv, err = s.RecordAnswer("carol")
	require.NoError(t, err)
	require.NotNil(t, adv.Next)
	assert.False(t, adv.GameOver)

	// answeredThisRound must be cleared for the new round.
	adv, err = s.RecordAnswer("alice")
	require.NoError(t, err)
	assert.Zero(t, adv)
}

func TestRecordAnswerBeforeStart(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	joinPlayers(t, s, "alice")

	_, err := s.RecordAnswer("alice")
	assert.ErrorIs(t, err, ErrGameNotStarted)
}

func TestRecordAnswerUnknownPlayer(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	joinPlayers(t, s, "alice", "bob")
	_, err := s.Start(2, 5, testBank(6))
	require.NoError(t, err)

	_, err = s.RecordAnswer("mallory")
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestGameOverSignalsExactlyOnce(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	joinPlayers(t, s, "alice", "bob")

	// A one-question game: the first question is the whole sample.
	_, err := s.Start(2, 1, testBank(3))
	require.NoError(t, err)

	_, err = s.RecordAnswer("alice")
	require.NoError(t, err)
	adv, err := s.RecordAnswer("bob")
	require.NoError(t, err)
	assert.True(t, adv.GameOver)

	// The session is terminal; nothing can signal game over again.
	_, err = s.RecordAnswer("alice")
	assert.ErrorIs(t, err, ErrGameNotStarted)
}

func TestRecordScoreSortsWithJoinOrderTieBreak(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	joinPlayers(t, s, "alice", "bob", "carol")

	_, err := s.Start(2, 5, testBank(6))
	require.NoError(t, err)

	_, err = s.RecordScore("bob")
	require.NoError(t, err)
	standings, err := s.RecordScore("bob")
	require.NoError(t, err)
	assert.Equal(t, Standings{
		{Username: "bob", Score: 2},
		{Username: "alice", Score: 0},
		{Username: "carol", Score: 0},
	}, standings)

	// carol ties alice at 1; alice joined first, so alice ranks ahead.
	_, err = s.RecordScore("carol")
	require.NoError(t, err)
	standings, err = s.RecordScore("alice")
	require.NoError(t, err)
	assert.Equal(t, Standings{
		{Username: "bob", Score: 2},
		{Username: "alice", Score: 1},
		{Username: "carol", Score: 1},
	}, standings)
}

func TestRecordScoreUnknownPlayer(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	joinPlayers(t, s, "alice", "bob")

	_, err := s.RecordScore("mallory")
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestDisconnectUnknownIsNoop(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	joinPlayers(t, s, "alice")

	_, _, removed, empty := s.Disconnect(uuid.New())
	assert.False(t, removed)
	assert.False(t, empty)
	assert.Equal(t, 1, s.PlayerCount())
}

func TestDisconnectRemovesExactlyThatPlayer(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	ids := joinPlayers(t, s, "alice", "bob", "carol")

	standings, _, removed, empty := s.Disconnect(ids[1])
	assert.True(t, removed)
	assert.False(t, empty)
	assert.Equal(t, Standings{
		{Username: "alice", Score: 0},
		{Username: "carol", Score: 0},
	}, standings)
}

func TestDisconnectReportsEmpty(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	ids := joinPlayers(t, s, "alice")

	_, _, removed, empty := s.Disconnect(ids[0])
	assert.True(t, removed)
	assert.True(t, empty)
}

// TestDisconnectCompletesRound covers the leaver being the last player the
// round was waiting on: the remaining players have all answered, so the
// disconnect itself must advance the round.
func TestDisconnectCompletesRound(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	ids := joinPlayers(t, s, "alice", "bob", "carol")

	_, err := s.Start(2, 5, testBank(6))
	require.NoError(t, err)

	_, err = s.RecordAnswer("alice")
	require.NoError(t, err)
	_, err = s.RecordAnswer("bob")
	require.NoError(t, err)

	_, adv, removed, empty := s.Disconnect(ids[2])
	assert.True(t, removed)
	assert.False(t, empty)
	require.NotNil(t, adv.Next)
	assert.False(t, adv.GameOver)

	// The new round waits on both remaining players.
	next, err := s.RecordAnswer("alice")
	require.NoError(t, err)
	assert.Zero(t, next)
}

func TestDisconnectOnLastQuestionFinishesGame(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	ids := joinPlayers(t, s, "alice", "bob")

	_, err := s.Start(2, 1, testBank(3))
	require.NoError(t, err)

	_, err = s.RecordAnswer("alice")
	require.NoError(t, err)

	_, adv, removed, _ := s.Disconnect(ids[1])
	assert.True(t, removed)
	assert.True(t, adv.GameOver)
	assert.Equal(t, PhaseFinished, s.Phase())
}

func TestDisconnectDuringLobbyYieldsNoDirective(t *testing.T) {
	s := NewSession("ABCD1234EFGH5678")
	ids := joinPlayers(t, s, "alice", "bob")

	_, adv, removed, _ := s.Disconnect(ids[0])
	assert.True(t, removed)
	assert.Zero(t, adv)
}

func TestStandingsMarshalPreservesOrder(t *testing.T) {
	standings := Standings{
		{Username: "bob", Score: 2},
		{Username: "alice", Score: 1},
		{Username: "carol", Score: 1},
	}
	data, err := json.Marshal(standings)
	require.NoError(t, err)
	assert.Equal(t, `{"bob":2,"alice":1,"carol":1}`, string(data))
}
