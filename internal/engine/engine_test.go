package engine

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/protocol"
	"github.com/robalobadob/mastermind/internal/transport"
)

var secret = game.Sequence{game.Red, game.Green, game.DarkBlue, game.DarkBlue, game.Orange}

var miss = game.Sequence{game.White, game.White, game.White, game.White, game.White}

// recorder keeps everything an Observer is told.
type recorder struct {
	rounds []Round
	final  []Result
}

func (r *recorder) RoundPlayed(rd Round)    { r.rounds = append(r.rounds, rd) }
func (r *recorder) GameFinished(res Result) { r.final = append(r.final, res) }

// startJudge runs a judge on one end of a pipe and returns the other end.
func startJudge(t *testing.T, ctx context.Context, maxRounds int, obs Observer) (net.Conn, <-chan Result) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })

	results := make(chan Result, 1)
	go func() {
		j := NewJudge(transport.New(server, nil), secret, Options{MaxRounds: maxRounds}, obs)
		res := j.Play(ctx)
		server.Close()
		results <- res
	}()
	return client, results
}

// startGuesser runs a guesser on one end of a pipe and returns the other end.
func startGuesser(t *testing.T, ctx context.Context, opts Options, gen game.Generator) (net.Conn, <-chan Result) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close() })

	results := make(chan Result, 1)
	go func() {
		g := NewGuesser(transport.New(client, nil), gen, opts, nil)
		res := g.Play(ctx)
		client.Close()
		results <- res
	}()
	return server, results
}

// exchange sends one raw guess and reads the judgment.
func exchange(t *testing.T, c net.Conn, msg [protocol.GuessSize]byte) game.Judgment {
	t.Helper()
	_ = c.SetDeadline(time.Now().Add(2 * time.Second))
	_, err := c.Write(msg[:])
	require.NoError(t, err, "write guess")
	var b [protocol.JudgmentSize]byte
	_, err = io.ReadFull(c, b[:])
	require.NoError(t, err, "read judgment")
	return protocol.DecodeJudgment(b[0])
}

func wait(t *testing.T, results <-chan Result) Result {
	t.Helper()
	select {
	case res := <-results:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("game did not finish")
		return Result{}
	}
}

func TestJudgeGameLost(t *testing.T) {
	rec := &recorder{}
	c, results := startJudge(t, context.Background(), 3, rec)

	for round := 1; round <= 3; round++ {
		j := exchange(t, c, protocol.EncodeGuess(miss))
		assert.False(t, j.ParityError, "round %d", round)
		assert.Equal(t, round == 3, j.GameLost, "round %d", round)
	}

	res := wait(t, results)
	assert.Equal(t, game.GameLost, res.Outcome)
	assert.Equal(t, 3, res.Rounds)
	assert.True(t, res.Last.GameLost)
	assert.Len(t, rec.rounds, 3)
	assert.Len(t, rec.final, 1)
}

func TestJudgeParityError(t *testing.T) {
	c, results := startJudge(t, context.Background(), game.MaxRounds, nil)

	msg := protocol.EncodeGuess(game.Sequence{game.Red, game.DarkBlue, game.Green, game.Green, game.Orange})
	msg[1] ^= 0x80
	j := exchange(t, c, msg)

	assert.True(t, j.ParityError)
	assert.False(t, j.GameLost)
	// Scores are still computed on a parity fault.
	assert.Equal(t, 2, j.Exact)
	assert.Equal(t, 2, j.Partial)

	res := wait(t, results)
	assert.Equal(t, game.ParityError, res.Outcome)
	assert.Equal(t, 1, res.Rounds)

	// The judge has hung up; nothing more is read.
	_ = c.SetDeadline(time.Now().Add(time.Second))
	_, err := c.Write(msg[:])
	assert.Error(t, err, "judge accepted a second guess after a parity error")
}

func TestJudgeMultipleErrors(t *testing.T) {
	c, results := startJudge(t, context.Background(), 1, nil)

	msg := protocol.EncodeGuess(miss)
	msg[1] ^= 0x80
	j := exchange(t, c, msg)
	assert.True(t, j.ParityError)
	assert.True(t, j.GameLost)

	assert.Equal(t, game.MultipleErrors, wait(t, results).Outcome)
}

func TestJudgeWon(t *testing.T) {
	c, results := startJudge(t, context.Background(), game.MaxRounds, nil)

	first := exchange(t, c, protocol.EncodeGuess(miss))
	assert.Equal(t, game.Judgment{}, first)

	j := exchange(t, c, protocol.EncodeGuess(secret))
	assert.Equal(t, game.Judgment{Exact: game.Slots}, j)

	res := wait(t, results)
	assert.Equal(t, game.Won, res.Outcome)
	assert.Equal(t, 2, res.Rounds)
}

func TestJudgeWinOnLastRound(t *testing.T) {
	c, results := startJudge(t, context.Background(), 1, nil)

	j := exchange(t, c, protocol.EncodeGuess(secret))
	assert.False(t, j.GameLost, "winning last-round judgment has GameLost set")
	assert.Equal(t, game.Won, wait(t, results).Outcome)
}

func TestJudgeShortGuessIsTransportFailure(t *testing.T) {
	c, results := startJudge(t, context.Background(), game.MaxRounds, nil)

	_ = c.SetDeadline(time.Now().Add(time.Second))
	_, err := c.Write([]byte{0x01})
	require.NoError(t, err)
	c.Close()

	res := wait(t, results)
	assert.Equal(t, game.TransportFailure, res.Outcome)
	assert.ErrorIs(t, res.Err, transport.ErrTransport)
	assert.Zero(t, res.Rounds)
}

func TestJudgeCancelledWhileReceiving(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, results := startJudge(t, ctx, game.MaxRounds, nil)

	time.Sleep(20 * time.Millisecond)
	cancel()

	res := wait(t, results)
	assert.Equal(t, game.Cancelled, res.Outcome, "err %v", res.Err)
	assert.ErrorIs(t, res.Err, transport.ErrCancelled)
	assert.Zero(t, res.Outcome.ExitCode())
}

func TestJudgeCancelledWhileSending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c, results := startJudge(t, ctx, game.MaxRounds, nil)

	// Deliver a guess, then never read the judgment.
	msg := protocol.EncodeGuess(miss)
	_ = c.SetDeadline(time.Now().Add(2 * time.Second))
	_, err := c.Write(msg[:])
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	cancel()

	res := wait(t, results)
	assert.Equal(t, game.Cancelled, res.Outcome, "err %v", res.Err)
	assert.ErrorIs(t, res.Err, transport.ErrCancelled)
	assert.Zero(t, res.Rounds)
}

func TestPauseInterruptedByCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	assert.ErrorIs(t, pause(ctx, time.Minute), context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second, "pause ignored cancellation")
}

// script hands out a fixed list of guesses, then repeats the last one.
type script []game.Sequence

func (s *script) Next() game.Sequence {
	g := (*s)[0]
	if len(*s) > 1 {
		*s = (*s)[1:]
	}
	return g
}

func TestGuesserAgainstJudge(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	judge := NewJudge(transport.New(server, nil), secret, Options{MaxRounds: 10}, nil)
	judgeDone := make(chan Result, 1)
	go func() {
		res := judge.Play(context.Background())
		server.Close()
		judgeDone <- res
	}()

	var logs bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&logs)
	t.Cleanup(func() { log.Logger = prev })

	rec := &recorder{}
	gen := &script{miss, secret}
	g := NewGuesser(transport.New(client, nil), gen, Options{MaxRounds: 10}, rec)
	res := g.Play(context.Background())

	judged := wait(t, judgeDone)
	assert.Equal(t, game.Won, judged.Outcome)
	assert.Equal(t, 2, judged.Rounds)

	// The guesser only learns the game is over when the judge hangs up.
	assert.Equal(t, game.TransportFailure, res.Outcome)
	assert.Equal(t, 2, res.Rounds)
	assert.Equal(t, game.Slots, res.Last.Exact)
	require.Len(t, rec.rounds, 2)
	assert.Equal(t, miss, rec.rounds[0].Guess)

	// A hang-up after a final judgment is reported as the judge's decision.
	out := logs.String()
	assert.Contains(t, out, `"message":"judge ended the game"`)
	assert.Contains(t, out, `"judge_outcome":"won"`)
	assert.NotContains(t, out, `"level":"warn"`)
}

func TestGuesserHangUpWithoutVerdictWarns(t *testing.T) {
	var logs bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&logs)
	t.Cleanup(func() { log.Logger = prev })

	peer, results := startGuesser(t, context.Background(), Options{MaxRounds: 10}, &script{miss})
	peer.Close()

	res := wait(t, results)
	assert.Equal(t, game.TransportFailure, res.Outcome)
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.NotContains(t, logs.String(), "judge ended the game")
}

func TestGuesserRoundLimit(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	go func() {
		j := NewJudge(transport.New(server, nil), secret, Options{MaxRounds: 2}, nil)
		j.Play(context.Background())
		server.Close()
	}()

	gen := &script{miss}
	g := NewGuesser(transport.New(client, nil), gen, Options{MaxRounds: 2}, nil)
	res := g.Play(context.Background())
	assert.Equal(t, game.GameLost, res.Outcome)
	assert.True(t, res.Last.GameLost)
}

func TestGuesserCancelled(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		peer   func(t *testing.T, c net.Conn)
		rounds int
	}{
		{
			name: "while sending",
			opts: Options{MaxRounds: 10},
			peer: func(t *testing.T, c net.Conn) {},
		},
		{
			name: "while receiving",
			opts: Options{MaxRounds: 10},
			peer: func(t *testing.T, c net.Conn) {
				var b [protocol.GuessSize]byte
				_, err := io.ReadFull(c, b[:])
				require.NoError(t, err)
			},
		},
		{
			name: "during pause",
			opts: Options{MaxRounds: 10, Delay: time.Minute},
			peer: func(t *testing.T, c net.Conn) {
				var b [protocol.GuessSize]byte
				_, err := io.ReadFull(c, b[:])
				require.NoError(t, err)
				_, err = c.Write([]byte{protocol.EncodeJudgment(game.Judgment{})})
				require.NoError(t, err)
			},
			rounds: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			peer, results := startGuesser(t, ctx, tt.opts, &script{miss})
			_ = peer.SetDeadline(time.Now().Add(2 * time.Second))

			tt.peer(t, peer)
			time.Sleep(20 * time.Millisecond)
			cancel()

			res := wait(t, results)
			assert.Equal(t, game.Cancelled, res.Outcome, "err %v", res.Err)
			assert.Equal(t, tt.rounds, res.Rounds)
			assert.Zero(t, res.Outcome.ExitCode())
		})
	}
}
