// internal/config/config.go
//
// Command line and environment configuration for both binaries.
//
// Precedence, lowest to highest:
//  1. Built-in defaults (35 rounds, 1s pacing, info logging).
//  2. Environment, optionally seeded from a .env file (godotenv).
//  3. Flags.
//
// Environment variables:
//
//	MASTERMIND_MAX_ROUNDS=35
//	MASTERMIND_DELAY=1s
//	MASTERMIND_STATUS_ADDR=:9090   (judge only)
//	LOG_LEVEL=info
//	LOG_FORMAT=console|json
//	LOG_FILE=/var/log/mastermind.log
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/robalobadob/mastermind/internal/engine"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/logger"
)

// ErrUsage marks bad arguments or flags.
var ErrUsage = errors.New("usage")

// ErrHelp is returned when --help was requested.
var ErrHelp = pflag.ErrHelp

// Common holds settings shared by both sides.
type Common struct {
	Game engine.Options
	Log  logger.Config
}

// Server configures the judge.
type Server struct {
	Common
	Port       int
	Secret     game.Sequence
	StatusAddr string
}

// Client configures the guesser.
type Client struct {
	Common
	Host string
	Port int
	Seed uint64
}

// LoadEnv reads a .env file into the environment if one exists. Variables
// that are already set win.
func LoadEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// ParseServer parses `<port> <secret>` plus flags.
func ParseServer(name string, args []string, out io.Writer) (*Server, error) {
	cfg := &Server{}
	fs := newFlagSet(name, out, "<port> <secret>")
	common := bindCommon(fs, &cfg.Common)
	fs.StringVar(&cfg.StatusAddr, "status-addr", os.Getenv("MASTERMIND_STATUS_ADDR"), "serve /health, /game and /metrics on this address")

	if err := fs.Parse(args); err != nil {
		return nil, parseErr(err)
	}
	if err := common.finish(fs); err != nil {
		return nil, err
	}
	if fs.NArg() != 2 {
		return nil, fmt.Errorf("%w: %s <port> <secret>", ErrUsage, name)
	}

	port, err := parsePort(fs.Arg(0))
	if err != nil {
		return nil, err
	}
	secret, err := game.ParseSequence(fs.Arg(1))
	if err != nil {
		return nil, fmt.Errorf("%w: <secret>: %w", ErrUsage, err)
	}
	cfg.Port, cfg.Secret = port, secret
	return cfg, nil
}

// ParseClient parses `<host> <port>` plus flags.
func ParseClient(name string, args []string, out io.Writer) (*Client, error) {
	cfg := &Client{}
	fs := newFlagSet(name, out, "<host> <port>")
	common := bindCommon(fs, &cfg.Common)
	fs.Uint64Var(&cfg.Seed, "seed", 0, "seed for the guess generator (0 uses the clock)")

	if err := fs.Parse(args); err != nil {
		return nil, parseErr(err)
	}
	if err := common.finish(fs); err != nil {
		return nil, err
	}
	if fs.NArg() != 2 {
		return nil, fmt.Errorf("%w: %s <host> <port>", ErrUsage, name)
	}

	host := strings.TrimSpace(fs.Arg(0))
	if host == "" {
		return nil, fmt.Errorf("%w: <host> is empty", ErrUsage)
	}
	port, err := parsePort(fs.Arg(1))
	if err != nil {
		return nil, err
	}
	cfg.Host, cfg.Port = host, port
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	return cfg, nil
}

// Addr is the host:port the guesser dials.
func (c *Client) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr is the address the judge listens on.
func (s *Server) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func newFlagSet(name string, out io.Writer, positional string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: %s [flags] %s\n\nFlags:\n", name, positional)
		fs.PrintDefaults()
	}
	return fs
}

// commonFlags holds raw flag values until they are validated.
type commonFlags struct {
	dst       *Common
	maxRounds int
	delay     time.Duration
	level     string
	format    string
	file      string
	// envErrs holds unparseable environment defaults by flag name.
	envErrs map[string]error
}

func bindCommon(fs *pflag.FlagSet, dst *Common) *commonFlags {
	c := &commonFlags{dst: dst, envErrs: map[string]error{}}
	def := engine.DefaultOptions()

	rounds, err := envInt("MASTERMIND_MAX_ROUNDS", def.MaxRounds)
	if err != nil {
		c.envErrs["max-rounds"] = err
	}
	delay, err := envDuration("MASTERMIND_DELAY", def.Delay)
	if err != nil {
		c.envErrs["delay"] = err
	}
	fs.IntVar(&c.maxRounds, "max-rounds", rounds, "rounds before the game is lost")
	fs.DurationVar(&c.delay, "delay", delay, "pause between rounds")
	fs.StringVar(&c.level, "log-level", getEnv("LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.StringVar(&c.format, "log-format", getEnv("LOG_FORMAT", "console"), "console or json")
	fs.StringVar(&c.file, "log-file", os.Getenv("LOG_FILE"), "also write logs to this rotating file")
	return c
}

func (c *commonFlags) finish(fs *pflag.FlagSet) error {
	// A flag on the command line replaces a broken environment value.
	for _, name := range []string{"max-rounds", "delay"} {
		if err := c.envErrs[name]; err != nil && !fs.Changed(name) {
			return err
		}
	}
	if c.maxRounds < 1 {
		return fmt.Errorf("%w: --max-rounds must be at least 1, got %d", ErrUsage, c.maxRounds)
	}
	if c.delay < 0 {
		return fmt.Errorf("%w: --delay must not be negative", ErrUsage)
	}
	var json bool
	switch c.format {
	case "console":
	case "json":
		json = true
	default:
		return fmt.Errorf("%w: --log-format must be console or json, got %q", ErrUsage, c.format)
	}

	c.dst.Game = engine.Options{MaxRounds: c.maxRounds, Delay: c.delay}
	c.dst.Log = logger.DefaultConfig()
	c.dst.Log.Level = c.level
	c.dst.Log.JSON = json
	c.dst.Log.FilePath = c.file
	return nil
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: <port> %q is not a number", ErrUsage, s)
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("%w: <port> must be in 1-65535, got %d", ErrUsage, p)
	}
	return p, nil
}

func parseErr(err error) error {
	if errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUsage, err)
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt returns k as an int, def if unset, or ErrUsage if malformed.
func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q is not a number", ErrUsage, k, v)
	}
	return n, nil
}

// envDuration returns k as a duration, def if unset, or ErrUsage if malformed.
func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q is not a duration", ErrUsage, k, v)
	}
	return d, nil
}
