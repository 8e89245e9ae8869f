package room

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacdylngab/quizwire/internal/store"
	"github.com/jacdylngab/quizwire/internal/store/memory"
)

// collidingStore reports the first n lookups as taken, to force retries.
type collidingStore struct {
	store.GameRecordStore
	collisions int
	lookups    int
}

func (s *collidingStore) GameExists(_ context.Context, _ string) (bool, error) {
	s.lookups++
	return s.lookups <= s.collisions, nil
}

func TestGenerateLengthAndCharset(t *testing.T) {
	gen := NewCodeGenerator(memory.New())

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, DefaultCodeLength)
	for _, r := range code {
		assert.Truef(t, strings.ContainsRune(codeAlphabet, r), "unexpected rune %q in code %q", r, code)
	}
}

func TestGenerateCustomLength(t *testing.T) {
	gen := NewCodeGenerator(memory.New())
	gen.Length = 6

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	st := &collidingStore{collisions: 3}
	gen := NewCodeGenerator(st)

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, DefaultCodeLength)
	assert.Equal(t, 4, st.lookups)
}

func TestGenerateGivesUpEventually(t *testing.T) {
	st := &collidingStore{collisions: maxCodeAttempts + 1}
	gen := NewCodeGenerator(st)

	_, err := gen.Generate(context.Background())
	assert.Error(t, err)
}
