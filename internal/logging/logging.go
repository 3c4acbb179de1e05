// Package logging configures the global zerolog logger once at startup.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger. Level comes from the argument, or
// REVIEWTRIAGE_LOG_LEVEL, or defaults to info. Pretty console output is
// used when stderr is a terminal-ish target and REVIEWTRIAGE_LOG_JSON is
// not set.
func Setup(level string) {
	if level == "" {
		level = os.Getenv("REVIEWTRIAGE_LOG_LEVEL")
	}

	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	zerolog.TimeFieldFormat = time.RFC3339

	if os.Getenv("REVIEWTRIAGE_LOG_JSON") == "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
}
