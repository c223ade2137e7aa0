// mastermind-server is the judge: it holds the secret, accepts one guesser
// and referees a single game over the TCP connection.
//
// Usage: mastermind-server [flags] <port> <secret>
//
// Exit status: 0 won (or interrupted), 2 parity error, 3 game lost,
// 4 parity error on the last round, 1 anything else.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/config"
	"github.com/robalobadob/mastermind/internal/engine"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/httpserver"
	"github.com/robalobadob/mastermind/internal/logger"
	"github.com/robalobadob/mastermind/internal/metrics"
	"github.com/robalobadob/mastermind/internal/store"
	"github.com/robalobadob/mastermind/internal/transport"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	config.LoadEnv()
	cfg, err := config.ParseServer("mastermind-server", args, os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mastermind-server: %v\n", err)
		return 1
	}

	closeLog, err := logger.Init(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mastermind-server: log level: %v\n", err)
		return 1
	}
	defer closeLog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New("judge")
	st := store.NewMemoryStore()
	if cfg.StatusAddr != "" {
		srv := httpserver.New(st, m.Handler())
		go func() {
			if err := srv.Serve(ctx, cfg.StatusAddr); err != nil {
				log.Error().Err(err).Str("addr", cfg.StatusAddr).Msg("status server exited")
			}
		}()
	}

	c, err := acceptOne(ctx, cfg.Addr())
	if err != nil {
		if ctx.Err() != nil {
			log.Info().Msg("interrupted while waiting for a guesser")
			return game.Cancelled.ExitCode()
		}
		log.Error().Err(err).Str("addr", cfg.Addr()).Msg("accept guesser")
		return 1
	}

	conn := transport.New(c, m)
	id := game.NewID()
	tracker := store.NewTracker(ctx, st, id, cfg.Game.MaxRounds)
	log.Info().Str("gameId", id).Str("remote", c.RemoteAddr().String()).Msg("guesser connected")

	judge := engine.NewJudge(conn, cfg.Secret, cfg.Game, engine.Observers{m, tracker})
	res := judge.Play(ctx)
	_ = conn.Close()
	return res.Outcome.ExitCode()
}

// acceptOne listens on addr and returns the first connection. The
// listener is closed before returning, so only one game is ever played.
func acceptOne(ctx context.Context, addr string) (net.Conn, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	log.Info().Str("addr", ln.Addr().String()).Msg("waiting for guesser")

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	return ln.Accept()
}
