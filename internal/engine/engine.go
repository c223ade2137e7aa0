// internal/engine/engine.go
//
// Round engines for both sides of a Mastermind game.
// Responsibilities:
//   - Judge: receive guesses, check parity, score, send judgments, and
//     decide the game outcome.
//   - Guesser: generate guesses, send them, and read back judgments.
//
// Notes:
//   - Exchange is strictly alternating: one guess, one judgment, per round.
//   - The judge is authoritative. The guesser keeps playing until its own
//     round limit or until the judge closes the connection; it never stops
//     on a judgment flag.
//   - Cancellation arrives through ctx and is checked at the top of every
//     round and inside every transfer.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/transport"
)

// Options bound a game.
type Options struct {
	MaxRounds int           // rounds before the guesser loses
	Delay     time.Duration // pause between rounds
}

// DefaultOptions matches the classic game: 35 rounds, one second apart.
func DefaultOptions() Options {
	return Options{MaxRounds: game.MaxRounds, Delay: time.Second}
}

// Round is one completed guess/judgment exchange.
type Round struct {
	Number   int
	Guess    game.Sequence
	Judgment game.Judgment
}

// Result describes how a game ended.
type Result struct {
	Outcome game.Outcome
	Rounds  int           // completed exchanges
	Last    game.Judgment // last judgment exchanged, zero if none
	Err     error         // transport or cancellation cause, if any
}

// Observer is told about every round and the final result.
type Observer interface {
	RoundPlayed(r Round)
	GameFinished(res Result)
}

// Observers fans out to several observers.
type Observers []Observer

func (obs Observers) RoundPlayed(r Round) {
	for _, o := range obs {
		o.RoundPlayed(r)
	}
}

func (obs Observers) GameFinished(res Result) {
	for _, o := range obs {
		o.GameFinished(res)
	}
}

// failure maps a transfer error to its terminal outcome.
func failure(rounds int, last game.Judgment, err error) Result {
	o := game.TransportFailure
	if errors.Is(err, transport.ErrCancelled) {
		o = game.Cancelled
	}
	return Result{Outcome: o, Rounds: rounds, Last: last, Err: err}
}

// pause waits d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// judgmentOutcome reads the outcome a judgment announces, as the judge
// would decide it.
func judgmentOutcome(j game.Judgment) (game.Outcome, bool) {
	switch {
	case j.ParityError && j.GameLost:
		return game.MultipleErrors, true
	case j.ParityError:
		return game.ParityError, true
	case j.GameLost:
		return game.GameLost, true
	case j.Exact == game.Slots:
		return game.Won, true
	}
	return 0, false
}
