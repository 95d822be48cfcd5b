// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Supported log formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Setup replaces the global logger with one writing to stderr at the given
// level and format.
func Setup(level, format string) error {
	l, err := New(os.Stderr, level, format)
	if err != nil {
		return err
	}
	log.Logger = l
	return nil
}

// New builds a logger writing to w. Debug level adds caller information.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	var lvl zerolog.Level
	switch level {
	case zerolog.LevelDebugValue:
		lvl = zerolog.DebugLevel
	case zerolog.LevelInfoValue:
		lvl = zerolog.InfoLevel
	case zerolog.LevelWarnValue:
		lvl = zerolog.WarnLevel
	case zerolog.LevelErrorValue:
		lvl = zerolog.ErrorLevel
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log level %q", level)
	}

	var out io.Writer
	switch format {
	case FormatJSON:
		out = w
	case FormatText:
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}

	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if lvl == zerolog.DebugLevel {
		ctx = ctx.Caller().Int("pid", os.Getpid())
	}
	return ctx.Logger(), nil
}
