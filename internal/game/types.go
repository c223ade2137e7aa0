// internal/game/types.go
//
// Core type definitions for the Mastermind game.
// Defines:
//   - Color: one peg color, an integer code in [0, NumColors).
//   - Sequence: a fixed-length row of Slots colors (a guess or the secret).
//   - Judgment: the judge's verdict on one guess.
//   - Outcome: how a game ended, and the process exit code it maps to.

package game

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Slots is the number of pegs in a sequence.
	Slots = 5
	// NumColors is the number of distinct peg colors.
	NumColors = 8
	// MaxRounds is the default number of guesses the judge accepts.
	MaxRounds = 35
)

// Color is a peg color code. Only equality is meaningful.
type Color uint8

// Color codes in alphabet order; the letter used on the command line is
// the first letter of the name, except black which is 's' (schwarz).
const (
	Beige Color = iota
	DarkBlue
	Green
	Orange
	Red
	Black
	Violet
	White
)

// alphabet maps Color codes to their command line letter.
const alphabet = "bdgorsvw"

var colorNames = [NumColors]string{"beige", "darkblue", "green", "orange", "red", "black", "violet", "white"}

// String returns the color name, or a numeric form for out-of-range codes.
func (c Color) String() string {
	if int(c) < NumColors {
		return colorNames[c]
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

// Letter returns the single-letter form used by ParseSequence.
func (c Color) Letter() byte {
	return alphabet[int(c)%NumColors]
}

// Sequence is an ordered row of Slots colors.
type Sequence [Slots]Color

// ErrBadSequence is returned by ParseSequence for malformed input.
var ErrBadSequence = errors.New("bad color sequence")

// ParseSequence reads a sequence written as Slots color letters, e.g. "rgbbw".
func ParseSequence(s string) (Sequence, error) {
	var seq Sequence
	if len(s) != Slots {
		return seq, fmt.Errorf("%w: has to be %d chars long, got %d", ErrBadSequence, Slots, len(s))
	}
	for i := 0; i < Slots; i++ {
		j := strings.IndexByte(alphabet, s[i])
		if j < 0 {
			return seq, fmt.Errorf("%w: bad color '%c'", ErrBadSequence, s[i])
		}
		seq[i] = Color(j)
	}
	return seq, nil
}

// String renders the sequence in the letter form accepted by ParseSequence.
func (s Sequence) String() string {
	var b [Slots]byte
	for i, c := range s {
		b[i] = c.Letter()
	}
	return string(b[:])
}

// Judgment is the judge's reply to one guess.
type Judgment struct {
	Exact       int  // "red": right color, right slot
	Partial     int  // "white": right color, wrong slot
	ParityError bool // guess failed the parity check
	GameLost    bool // last permitted round and not a perfect match
}

// Outcome is the terminal state of a game.
type Outcome int

const (
	Won Outcome = iota
	ParityError
	GameLost
	MultipleErrors
	TransportFailure
	Cancelled
)

var outcomeNames = map[Outcome]string{
	Won:              "won",
	ParityError:      "parity_error",
	GameLost:         "game_lost",
	MultipleErrors:   "multiple_errors",
	TransportFailure: "transport_failure",
	Cancelled:        "cancelled",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// ExitCode maps an outcome to the process exit status.
// Cancellation is a requested shutdown and counts as success.
func (o Outcome) ExitCode() int {
	switch o {
	case Won, Cancelled:
		return 0
	case ParityError:
		return 2
	case GameLost:
		return 3
	case MultipleErrors:
		return 4
	default:
		return 1
	}
}
