// Package logging configures the process-wide zerolog logger.
//
// Output goes to stderr by default because stdout carries MCP frames when the
// gateway runs on the stdio transport.
package logging

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs a console logger on w as the global zerolog logger and
// routes the standard library logger through it. Debug lowers the level to
// debug; otherwise info and above are written.
func Setup(debug bool, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: w != io.Writer(os.Stderr)}).
		Level(level).
		With().
		Timestamp().
		Logger()
	log.Logger = logger

	stdlog.SetFlags(0)
	stdlog.SetOutput(logger.With().Str("source", "stdlib").Logger())
	return logger
}

// ParseDebug reports whether value switches on debug output. It accepts
// true, 1 and yes in any case.
func ParseDebug(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// Component returns a child of the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
