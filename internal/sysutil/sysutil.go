// Package sysutil sets up process-wide state for the CLI commands.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps LOG_LEVEL to a zerolog level. Blank or unknown values,
// and the levels that would silence the service entirely, fall back to info.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel || lvl == zerolog.Disabled {
		return zerolog.InfoLevel
	}
	return lvl
}

// ConfigureLogging installs the global logger: JSON lines on w (stderr when
// nil), or the console writer when pretty is set. Every entry carries the
// service name.
func ConfigureLogging(w io.Writer, level string, pretty bool, service string) {
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = zerolog.New(w).With().Timestamp().Str("service", service).Logger()
}
