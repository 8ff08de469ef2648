// Package logging builds the single zerolog.Logger shared by cmd/server and
// pkg/game, so every component logs through the same sink and level instead
// of each constructing its own.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a console-formatted zerolog.Logger at the named level. An
// unrecognized level falls back to info, matching the teacher's tolerance
// for a bad -default-gamemode flag (log and fall back rather than refuse to
// start).
func New(level string, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if out == nil {
		out = os.Stdout
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
	if err != nil {
		logger.Warn().Str("level", level).Msg("unrecognized log level, falling back to info")
	}
	return logger
}
