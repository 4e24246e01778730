package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/styleai-api/internal/config"
	"github.com/phrazzld/styleai-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseLogEntries splits JSON-lines output into decoded entries.
func parseLogEntries(t *testing.T, out string) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestSetup(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	l, err := logger.Setup(config.ServerConfig{LogLevel: "info", Port: 8080})

	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Same(t, l, slog.Default(), "Setup should install the logger as default")
}

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		level       string
		wantDebug   bool
		wantInfo    bool
		wantWarning bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true, wantWarning: true},
		{level: "info", wantDebug: false, wantInfo: true, wantWarning: true},
		{level: "WARN", wantDebug: false, wantInfo: false, wantWarning: true},
		{level: "bogus", wantDebug: false, wantInfo: true, wantWarning: true},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := logger.New(&buf, tc.level)

			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")

			out := buf.String()
			assert.Equal(t, tc.wantDebug, strings.Contains(out, "debug message"))
			assert.Equal(t, tc.wantInfo, strings.Contains(out, "info message"))
			assert.Equal(t, tc.wantWarning, strings.Contains(out, "warn message"))
		})
	}
}

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, "info")

	l.Info("task created", "task_id", "abc")

	entries := parseLogEntries(t, buf.String())
	require.Len(t, entries, 1)
	assert.Equal(t, "task created", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["task_id"])
	assert.Equal(t, "INFO", entries[0]["level"])
}

func TestParseLevel(t *testing.T) {
	level, ok := logger.ParseLevel("error")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelError, level)

	level, ok = logger.ParseLevel("fatal")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, "debug").With("trace_id", "trace-123")

	ctx := logger.WithLogger(context.Background(), l)
	logger.FromContext(ctx).Info("from context")

	entries := parseLogEntries(t, buf.String())
	require.Len(t, entries, 1)
	assert.Equal(t, "trace-123", entries[0]["trace_id"])

	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), logger.FromContext(context.Background()))
}
