package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacdylngab/quizwire/internal/room"
	"github.com/jacdylngab/quizwire/internal/store"
	"github.com/jacdylngab/quizwire/internal/store/memory"
)

func newTestRouter(t *testing.T) (*httprouter.Router, *memory.Store) {
	t.Helper()
	st := memory.New()
	require.NoError(t, st.SeedQuestions(context.Background(), store.DefaultBank))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv, err := NewServer(logger, st, room.NewCodeGenerator(st))
	require.NoError(t, err)

	router := httprouter.New()
	srv.Register(router)
	return router, st
}

func TestHomeRendersMessage(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/?message=nope", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nope")
}

func TestNewGameRedirectsToLobby(t *testing.T) {
	router, st := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/new/", nil))

	require.Equal(t, http.StatusSeeOther, w.Code)
	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/join/"), "unexpected redirect %q", loc)

	code := strings.TrimSuffix(strings.TrimPrefix(loc, "/join/"), "/")
	assert.Len(t, code, room.DefaultCodeLength)

	exists, err := st.GameExists(context.Background(), code)
	require.NoError(t, err)
	assert.True(t, exists)
}

// racingStore rejects the first CreateGame with ErrCodeExists, as if a
// concurrent request claimed the generated code first.
type racingStore struct {
	*memory.Store
	collided bool
}

func (s *racingStore) CreateGame(ctx context.Context, code string) error {
	if !s.collided {
		s.collided = true
		return store.ErrCodeExists
	}
	return s.Store.CreateGame(ctx, code)
}

func TestNewGameRetriesOnCodeCollision(t *testing.T) {
	st := &racingStore{Store: memory.New()}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv, err := NewServer(logger, st, room.NewCodeGenerator(st))
	require.NoError(t, err)
	router := httprouter.New()
	srv.Register(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/new/", nil))

	require.Equal(t, http.StatusSeeOther, w.Code)
	require.True(t, st.collided)

	code := strings.TrimSuffix(strings.TrimPrefix(w.Header().Get("Location"), "/join/"), "/")
	exists, err := st.GameExists(context.Background(), code)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestJoinQueryUnknownCode(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/join/?game_id=NOPE", nil))

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/?message=")
}

func TestJoinQueryKnownCode(t *testing.T) {
	router, st := newTestRouter(t)
	require.NoError(t, st.CreateGame(context.Background(), "ABCD1234EFGH5678"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/join/?game_id=ABCD1234EFGH5678", nil))

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/join/ABCD1234EFGH5678/", w.Header().Get("Location"))
}

func TestLobbyPageIncludesGameID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/join/ABCD1234EFGH5678/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ABCD1234EFGH5678")
}

func TestAPIQuestions(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/questions/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var qs []store.Question
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &qs))
	require.Len(t, qs, len(store.DefaultBank))
	for _, q := range qs {
		assert.NotEmpty(t, q.Prompt)
		assert.NotEmpty(t, q.Options)
		assert.Contains(t, q.Options, q.Answer)
	}
}

func TestQRKnownGame(t *testing.T) {
	router, st := newTestRouter(t)
	require.NoError(t, st.CreateGame(context.Background(), "ABCD1234EFGH5678"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/qr/ABCD1234EFGH5678", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestQRUnknownGame(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/qr/NOPE", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
