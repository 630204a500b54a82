package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	level, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "storytype.log")
	log, closer, err := New(Options{Path: path, Level: "warn"})
	require.NoError(t, err)

	log.Info().Msg("dropped")
	log.Warn().Int("score", 3).Msg("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "warn", entry["level"])
	assert.EqualValues(t, 3, entry["score"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, zerolog.DebugLevel, FormatConsole)
	log.Debug().Str("user", "ada").Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "user=ada")
}

func TestNewWithoutPathDiscards(t *testing.T) {
	_, closer, err := New(Options{})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
}
