// Package testutil holds logging helpers shared by package tests.
package testutil

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitTestLogger writes human-readable logs to stderr at the level named by
// LOG_LEVEL, or at defaultLevel when it is unset. Call it from TestMain.
func InitTestLogger(defaultLevel zerolog.Level) {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(ParseLogLevel(defaultLevel))
}

// ParseLogLevel parses LOG_LEVEL or returns defaultLevel
func ParseLogLevel(defaultLevel zerolog.Level) zerolog.Level {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		return defaultLevel
	}
	return level
}

// CaptureLogs sends JSON log lines at level and above to the returned buffer
// until the test ends. Tests using it must not run in parallel.
func CaptureLogs(t testing.TB, level zerolog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()

	log.Logger = zerolog.New(zerolog.SyncWriter(&buf))
	zerolog.SetGlobalLevel(level)
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}
