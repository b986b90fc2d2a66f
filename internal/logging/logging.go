// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a zerolog logger writing to w (os.Stderr when nil).
// Debug mode uses the human-readable console writer; otherwise output is JSON.
// An unknown level falls back to info.
func New(w io.Writer, level string, debug bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if debug {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if debug && lvl > zerolog.DebugLevel {
		lvl = zerolog.DebugLevel
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
