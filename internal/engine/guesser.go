package engine

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/protocol"
	"github.com/robalobadob/mastermind/internal/transport"
)

// Guesser plays against a remote judge.
type Guesser struct {
	conn *transport.Conn
	gen  game.Generator
	opts Options
	obs  Observer
	log  zerolog.Logger
}

// NewGuesser prepares a guesser for one game over conn. obs may be nil.
func NewGuesser(conn *transport.Conn, gen game.Generator, opts Options, obs Observer) *Guesser {
	if obs == nil {
		obs = Observers(nil)
	}
	return &Guesser{
		conn: conn,
		gen:  gen,
		opts: opts,
		obs:  obs,
		log:  log.With().Str("component", "guesser").Logger(),
	}
}

// Play sends guesses until its round limit, a transport failure, or
// cancellation. A judge that ends the game closes the connection, which
// shows up here as a transport failure on the next exchange; Result.Last
// then holds the judgment that ended it.
func (g *Guesser) Play(ctx context.Context) Result {
	var last game.Judgment
	for round := 1; round <= g.opts.MaxRounds; round++ {
		if round > 1 {
			if err := pause(ctx, g.opts.Delay); err != nil {
				return g.finish(Result{Outcome: game.Cancelled, Rounds: round - 1, Last: last, Err: err})
			}
		} else if err := ctx.Err(); err != nil {
			return g.finish(Result{Outcome: game.Cancelled, Err: err})
		}

		guess := g.gen.Next()
		msg := protocol.EncodeGuess(guess)
		if err := g.conn.SendExact(ctx, msg[:]); err != nil {
			return g.finish(failure(round-1, last, err))
		}
		g.log.Debug().Int("round", round).Hex("raw", msg[:]).Msg("guess sent")

		raw, err := g.conn.ReceiveExact(ctx, protocol.JudgmentSize)
		if err != nil {
			return g.finish(failure(round-1, last, err))
		}
		last = protocol.DecodeJudgment(raw[0])

		g.log.Info().
			Int("round", round).
			Stringer("guess", guess).
			Int("red", last.Exact).
			Int("white", last.Partial).
			Bool("parity_error", last.ParityError).
			Bool("game_lost", last.GameLost).
			Msg("judgment received")
		g.obs.RoundPlayed(Round{Number: round, Guess: guess, Judgment: last})
	}

	// Out of rounds with the connection still up: take the judge's word.
	o, ok := judgmentOutcome(last)
	if !ok {
		o = game.GameLost
	}
	return g.finish(Result{Outcome: o, Rounds: g.opts.MaxRounds, Last: last})
}

func (g *Guesser) finish(res Result) Result {
	judged, ended := judgmentOutcome(res.Last)
	switch {
	case res.Outcome == game.TransportFailure && ended:
		// The judge hangs up right after its final judgment.
		g.log.Info().
			Stringer("outcome", res.Outcome).
			Stringer("judge_outcome", judged).
			Int("rounds", res.Rounds).
			Msg("judge ended the game")
	case res.Outcome == game.TransportFailure:
		g.log.Warn().Err(res.Err).Stringer("outcome", res.Outcome).Int("rounds", res.Rounds).Msg("game over")
	default:
		g.log.Info().Stringer("outcome", res.Outcome).Int("rounds", res.Rounds).Msg("game over")
	}
	g.obs.GameFinished(res)
	return res
}
