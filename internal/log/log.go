// Package log holds the process-wide structured logger.
package log

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stderr).With().Timestamp().Logger()
	current.Store(&l)
}

// Setup replaces the process logger. Output is human-readable console
// lines unless json is set.
func Setup(level string, json bool) error {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("parse log level %q: %w", level, err)
		}
		lvl = parsed
	}

	var w io.Writer = os.Stderr
	if !json {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}
	SetOutput(w, lvl)
	return nil
}

// SetOutput points the logger at w. Tests use it with io.Discard or a buffer.
func SetOutput(w io.Writer, level zerolog.Level) {
	l := zerolog.New(w).Level(level).With().Timestamp().Logger()
	current.Store(&l)
}

// L returns the process logger.
func L() *zerolog.Logger {
	return current.Load()
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(name string) zerolog.Logger {
	return L().With().Str("component", name).Logger()
}
