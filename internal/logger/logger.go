// internal/logger/logger.go
//
// Process-wide zerolog setup shared by the judge and the guesser.
// Responsibilities:
//   - Parse the level and install it globally.
//   - Human-readable console output on stderr, or raw JSON lines.
//   - Optional rotating log file next to the console output.
//
// After Init, packages log through github.com/rs/zerolog/log.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how much is logged.
type Config struct {
	Level      string // debug, info, warn, error
	JSON       bool   // raw JSON instead of console formatting
	FilePath   string // rotating log file, empty to disable
	MaxSize    int    // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultConfig logs info and above to the console only.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

// Init installs the global logger. It returns a closer for the log file,
// which is a no-op when no file is configured.
func Init(cfg Config, stderr io.Writer) (io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if stderr == nil {
		stderr = os.Stderr
	}
	var console io.Writer = stderr
	if !cfg.JSON {
		console = zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05"}
	}

	var closer io.Closer = nopCloser{}
	out := console
	if cfg.FilePath != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		closer = file
		out = zerolog.MultiLevelWriter(console, file)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
