package progress

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2023, 9, 8, 9, 16, 35, 0, time.Local)

func fixedClock() time.Time { return testTime }

func TestLog_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code_log.txt")
	l := New(path, WithClock(fixedClock))

	require.NoError(t, l.Log("Preliminaries complete. Initiating ETL process."))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2023-Sep-08-09:16:35 : Preliminaries complete. Initiating ETL process.\n", string(data))
}

func TestLog_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code_log.txt")
	require.NoError(t, os.WriteFile(path, []byte("2020-Jan-01-00:00:00 : earlier run\n"), 0o644))

	l := New(path, WithClock(fixedClock))
	require.NoError(t, l.Log("first"))
	require.NoError(t, l.Log("second"))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "earlier run", entries[0].Message)
	assert.Equal(t, "first", entries[1].Message)
	assert.Equal(t, "second", entries[2].Message)
	assert.True(t, testTime.Equal(entries[2].Timestamp))
}

func TestLog_CreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "code_log.txt")
	require.NoError(t, New(path).Log("hello"))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLog_MirrorsToLogger(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "code_log.txt")
	l := New(path, WithLogger(zerolog.New(&buf)))

	require.NoError(t, l.Log("Data saved to CSV file."))
	assert.Contains(t, buf.String(), `"message":"Data saved to CSV file."`)
	assert.Contains(t, buf.String(), `"level":"info"`)
}

func TestLog_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	// A regular file where a directory is expected.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := New(filepath.Join(blocker, "code_log.txt")).Log("x")
	assert.Error(t, err)
}

func TestTimestampFormat(t *testing.T) {
	line := MarshalEntry(Entry{Timestamp: time.Date(2024, 12, 1, 23, 5, 9, 0, time.UTC), Message: "m"})
	assert.Equal(t, "2024-Dec-01-23:05:09 : m", line)
}

func TestUnmarshalEntry(t *testing.T) {
	e, err := UnmarshalEntry("2023-Sep-08-09:16:35 : Data loaded to Database as table. Running the query.")
	require.NoError(t, err)
	assert.True(t, testTime.Equal(e.Timestamp))
	assert.Equal(t, "Data loaded to Database as table. Running the query.", e.Message)

	_, err = UnmarshalEntry("no separator here")
	assert.Error(t, err)

	_, err = UnmarshalEntry("2023-09-08 : bad timestamp")
	assert.Error(t, err)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "missing.txt"))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestReadEntries_BadLine(t *testing.T) {
	_, err := readEntries(strings.NewReader("2023-Sep-08-09:16:35 : ok\ngarbage\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
