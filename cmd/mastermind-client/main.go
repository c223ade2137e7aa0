// mastermind-client is the guesser: it connects to a judge and plays
// random guesses until the judge ends the game or its rounds run out.
//
// Usage: mastermind-client [flags] <host> <port>
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
	"github.com/robalobadob/mastermind/internal/logger"
	"github.com/robalobadob/mastermind/internal/transport"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	config.LoadEnv()
	cfg, err := config.ParseClient("mastermind-client", args, os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mastermind-client: %v\n", err)
		return 1
	}

	closeLog, err := logger.Init(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mastermind-client: log level: %v\n", err)
		return 1
	}
	defer closeLog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", cfg.Addr())
	if err != nil {
		if ctx.Err() != nil {
			return game.Cancelled.ExitCode()
		}
		log.Error().Err(err).Str("addr", cfg.Addr()).Msg("connect to judge")
		return 1
	}
	log.Info().Str("addr", cfg.Addr()).Uint64("seed", cfg.Seed).Msg("connected to judge")

	conn := transport.New(c, nil)
	g := engine.NewGuesser(conn, game.NewRandomGenerator(cfg.Seed), cfg.Game, nil)
	res := g.Play(ctx)
	_ = conn.Close()
	return res.Outcome.ExitCode()
}
