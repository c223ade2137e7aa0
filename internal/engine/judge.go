package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/protocol"
	"github.com/robalobadob/mastermind/internal/transport"
)

// Judge holds the secret and referees one game.
type Judge struct {
	conn   *transport.Conn
	secret game.Sequence
	opts   Options
	obs    Observer
	log    zerolog.Logger
}

// NewJudge prepares a judge for one game over conn. obs may be nil.
func NewJudge(conn *transport.Conn, secret game.Sequence, opts Options, obs Observer) *Judge {
	if obs == nil {
		obs = Observers(nil)
	}
	return &Judge{
		conn:   conn,
		secret: secret,
		opts:   opts,
		obs:    obs,
		log:    log.With().Str("component", "judge").Logger(),
	}
}

// Play runs rounds until the game ends and reports the outcome.
func (j *Judge) Play(ctx context.Context) Result {
	var last game.Judgment
	for round := 1; round <= j.opts.MaxRounds; round++ {
		if round > 1 {
			if err := pause(ctx, j.opts.Delay); err != nil {
				return j.finish(Result{Outcome: game.Cancelled, Rounds: round - 1, Last: last, Err: err})
			}
		} else if err := ctx.Err(); err != nil {
			return j.finish(Result{Outcome: game.Cancelled, Err: err})
		}

		raw, err := j.conn.ReceiveExact(ctx, protocol.GuessSize)
		if err != nil {
			return j.finish(failure(round-1, last, err))
		}
		g := protocol.DecodeGuess([protocol.GuessSize]byte(raw))
		j.log.Debug().Int("round", round).Hex("raw", raw).Msg("guess received")

		// The score goes out even when parity fails.
		exact, partial := game.Score(g.Seq, j.secret)
		verdict := game.Judgment{
			Exact:       exact,
			Partial:     partial,
			ParityError: !g.ParityOK(),
			GameLost:    round == j.opts.MaxRounds && exact != game.Slots,
		}

		out := protocol.EncodeJudgment(verdict)
		if err := j.conn.SendExact(ctx, []byte{out}); err != nil {
			return j.finish(failure(round-1, last, err))
		}
		last = verdict

		j.log.Info().
			Int("round", round).
			Stringer("guess", g.Seq).
			Int("red", exact).
			Int("white", partial).
			Msg("round judged")
		j.obs.RoundPlayed(Round{Number: round, Guess: g.Seq, Judgment: verdict})

		if o, done := judgmentOutcome(verdict); done {
			return j.finish(Result{Outcome: o, Rounds: round, Last: verdict})
		}
	}
	// The last round always sets GameLost unless it was won.
	panic(fmt.Sprintf("engine: judge passed round %d without an outcome", j.opts.MaxRounds))
}

func (j *Judge) finish(res Result) Result {
	ev := j.log.Info()
	switch res.Outcome {
	case game.Won:
		ev = ev.Int("rounds", res.Rounds)
	case game.ParityError, game.MultipleErrors, game.TransportFailure:
		ev = j.log.Warn().Err(res.Err)
	}
	ev.Stringer("outcome", res.Outcome).Msg("game over")
	j.obs.GameFinished(res)
	return res
}
