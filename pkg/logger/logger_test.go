package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return New(Config{Level: level, Format: "json", Output: buf})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestScopedFields(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf, "debug").
		WithComponent("gatherer").
		WithSource("wayback").
		WithError(errors.New("connection refused"))

	log.Debug().Msg("source lookup failed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "gatherer", entry["component"])
	assert.Equal(t, "wayback", entry["source"])
	assert.Equal(t, "connection refused", entry["error"])
	assert.Equal(t, "source lookup failed", entry["message"])
}

func TestWithAnalysis(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, "info").WithRequestID("req-1").WithAnalysis("abc", "url").Info().Msg("done")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "abc", entry["analysis_id"])
	assert.Equal(t, "url", entry["input_type"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf, "warn")

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("loud"))
}
