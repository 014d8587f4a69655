// Package logger builds the zerolog loggers used by the command line tools.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ParseLevel maps an empty string to info and rejects unknown levels.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("logger: invalid level %q", level)
	}
	return parsed, nil
}

// New returns a timestamped logger writing to out (stderr when nil).
// Console output is human readable; json emits one object per line.
func New(level, format string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatConsole:
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("logger: invalid format %q (want console or json)", format)
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Logger().
		Level(lvl), nil
}
