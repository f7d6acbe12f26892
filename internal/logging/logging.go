// Package logging configures the zerolog console logger shared by the
// library's verbose mode and the darwinctl CLI.
package logging

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "DARWIN_LOG_LEVEL"
	EnvLogTimestamp = "DARWIN_LOG_TIMESTAMP"
	EnvLogNoColor   = "DARWIN_LOG_NOCOLOR"
)

// New returns a console logger tagged with the component name. Defaults
// are debug level with timestamps; the DARWIN_LOG_* environment
// variables override level, timestamps, and color.
func New(component string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    envBool(EnvLogNoColor, false),
	}
	ctx := zerolog.New(output).Level(envLevel()).With().Str("component", component)
	if envBool(EnvLogTimestamp, true) {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

func envLevel() zerolog.Level {
	raw := strings.TrimSpace(os.Getenv(EnvLogLevel))
	if raw == "" {
		return zerolog.DebugLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.DebugLevel
	}
	return level
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
