package logger

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNew_WritesRotatingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fire.log")
	log, closer := New(Options{Level: "warn", File: path})

	log.Info("dropped")
	log.Warn("fire detected", "event_id", "evt-1")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "fire detected", rec["msg"])
	assert.Equal(t, "evt-1", rec["event_id"])
	assert.Equal(t, "WARN", rec["level"])
}

func TestNew_StdoutOnly(t *testing.T) {
	t.Parallel()

	log, closer := New(Options{Level: "debug"})
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))
	assert.NoError(t, closer.Close())
}
