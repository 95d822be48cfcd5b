// Package progress appends timestamped checkpoint lines to the run log.
package progress

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TimeFormat renders timestamps as YYYY-Mon-DD-HH:MM:SS.
const TimeFormat = "2006-Jan-02-15:04:05"

const separator = " : "

// Entry is one line of the progress log.
type Entry struct {
	Timestamp time.Time
	Message   string
}

// Log appends entries to a single file. It is not safe for concurrent writers.
type Log struct {
	path   string
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithLogger mirrors every message to a console logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// New returns a Log writing to path. The file is created on first write.
func New(path string, opts ...Option) *Log {
	l := &Log{path: path, now: time.Now, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the log file path.
func (l *Log) Path() string { return l.path }

// Log appends "<timestamp> : <message>" to the file.
func (l *Log) Log(msg string) error {
	l.logger.Info().Msg(msg)

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating log dir: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening progress log: %w", err)
	}
	defer f.Close()

	line := MarshalEntry(Entry{Timestamp: l.now(), Message: msg})
	if _, err := io.WriteString(f, line+"\n"); err != nil {
		return fmt.Errorf("writing progress log: %w", err)
	}
	return nil
}

// MarshalEntry renders an Entry as a log line without the trailing newline.
func MarshalEntry(e Entry) string {
	return e.Timestamp.Format(TimeFormat) + separator + e.Message
}

// UnmarshalEntry parses a log line. Timestamps are read in the local zone.
func UnmarshalEntry(line string) (Entry, error) {
	ts, msg, ok := strings.Cut(line, separator)
	if !ok {
		return Entry{}, fmt.Errorf("missing %q separator", strings.TrimSpace(separator))
	}
	t, err := time.ParseInLocation(TimeFormat, ts, time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", ts, err)
	}
	return Entry{Timestamp: t, Message: msg}, nil
}

// Read returns all entries in the file at path.
// Returns an empty slice if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening progress log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	for i := 1; sc.Scan(); i++ {
		line := sc.Text()
		if line == "" {
			continue
		}
		e, err := UnmarshalEntry(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading progress log: %w", err)
	}
	return entries, nil
}
