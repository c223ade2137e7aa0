// internal/game/score.go
//
// Scoring and guess generation for Mastermind.
// Responsibilities:
//   - Score a guess against the secret (exact "red" and partial "white").
//   - Produce pseudo-random guesses for the guesser side.
//
// Notes:
//   - Scoring is the classic two-pass algorithm with per-color counters,
//     so repeated colors never earn more partial credit than the secret holds.
package game

import (
	"crypto/rand"
	"encoding/hex"
	mrand "math/rand/v2"
)

// Score compares guess with secret.
//
// Pass 1:
//   - Count exact matches.
//   - Count remaining (non-exact) secret colors by color code.
//
// Pass 2:
//   - For each non-exact guess color: if the secret still has an unmatched
//     peg of that color, count a partial match and consume it.
//
// exact+partial never exceeds Slots; exact == Slots only for identical rows.
func Score(guess, secret Sequence) (exact, partial int) {
	var left [NumColors]int

	// First pass: exact matches and leftover secret colors.
	for i := 0; i < Slots; i++ {
		if guess[i] == secret[i] {
			exact++
		} else {
			left[secret[i]%NumColors]++
		}
	}

	// Second pass: partial matches for the rest.
	for i := 0; i < Slots; i++ {
		if guess[i] == secret[i] {
			continue
		}
		c := guess[i] % NumColors
		if left[c] > 0 {
			partial++
			left[c]--
		}
	}
	return exact, partial
}

// Generator produces one guess per round.
type Generator interface {
	Next() Sequence
}

// RandomGenerator draws every slot uniformly from all colors.
type RandomGenerator struct {
	rng *mrand.Rand
}

// NewRandomGenerator seeds a generator. The same seed yields the same guesses.
func NewRandomGenerator(seed uint64) *RandomGenerator {
	return &RandomGenerator{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next returns a fresh random guess.
func (g *RandomGenerator) Next() Sequence {
	var s Sequence
	for i := range s {
		s[i] = Color(g.rng.IntN(NumColors))
	}
	return s
}

// NewID returns a compact 16-hex-char game identifier.
func NewID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
