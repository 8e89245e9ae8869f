package room

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/jacdylngab/quizwire/internal/store"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultCodeLength matches the 16-character codes players share to join.
const DefaultCodeLength = 16

// maxCodeAttempts bounds the collision-retry loop so a (practically
// impossible) saturated code space cannot spin forever.
const maxCodeAttempts = 100

// CodeGenerator produces unique room codes, collision-checked against the
// record store.
type CodeGenerator struct {
	Store  store.GameRecordStore
	Length int

	// Rand may be set by tests for deterministic output. Nil means the
	// package-level source.
	Rand *rand.Rand
}

// NewCodeGenerator returns a generator with the default code length.
func NewCodeGenerator(s store.GameRecordStore) *CodeGenerator {
	return &CodeGenerator{Store: s, Length: DefaultCodeLength}
}

// Generate draws random alphanumeric codes until one is not present in the
// record store, and returns it. The code is not reserved; callers persist
// it with CreateGame.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	length := g.Length
	if length <= 0 {
		length = DefaultCodeLength
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := g.randomCode(length)
		exists, err := g.Store.GameExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check room code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("no unique room code found after %d attempts", maxCodeAttempts)
}

func (g *CodeGenerator) randomCode(length int) string {
	intn := rand.Intn
	if g.Rand != nil {
		intn = g.Rand.Intn
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = codeAlphabet[intn(len(codeAlphabet))]
	}
	return string(buf)
}
