package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var (
	_ Logger = (*SchedulerLogger)(nil)
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = NoOpLogger{}
)

func newBufferLogger(level LogLevel) (*SchedulerLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	cfg.Output = &buf
	return NewLogger(cfg), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		err  bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"loud", LogLevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSchedulerLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarn)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown", "k", 1)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
	assert.Equal(t, float64(1), lines[0]["k"])
}

func TestSchedulerLogger_ComponentAndContext(t *testing.T) {
	base, buf := newBufferLogger(LogLevelInfo)
	l := base.WithComponent("engine").WithContext("run", "r1")
	l.Info("hello")
	base.Info("plain")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "engine", lines[0]["component"])
	assert.Equal(t, "r1", lines[0]["run"])
	_, ok := lines[1]["component"]
	assert.False(t, ok, "base logger must not inherit clone context")
}

func TestSchedulerLogger_LogPhase(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.LogPhase("fill", 3, time.Millisecond, nil)
	l.LogPhase("fill", 4, time.Millisecond, errors.New("stuck"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "Scheduling phase completed", lines[0]["msg"])
	assert.Equal(t, true, lines[0]["success"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "stuck", lines[1]["error"])
}

func TestSchedulerLogger_LogSwapOnlyAtDebug(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.LogSwap("Org - A", "Org - B", 3, 1, true)
	assert.Empty(t, buf.String())

	l, buf = newBufferLogger(LogLevelDebug)
	l.LogSwap("Org - A", "Org - B", 3, 1, true)
	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Org - B", lines[0]["donor"])
	assert.Equal(t, float64(1), lines[0]["new_score"])
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestSchedulerLogger_StartTimer(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	done := l.StartTimer("schedule")
	done()

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Operation completed", lines[0]["msg"])
	assert.Equal(t, "schedule", lines[0]["operation"])
}

func TestConstructors(t *testing.T) {
	assert.NotNil(t, NewDefaultSlogLogger())

	l := NewSlogLogger(LogLevelDebug, "", false)
	assert.Equal(t, LogLevelDebug, l.level)

	assert.NotNil(t, NewLogger(nil))
}

func TestSchedulerLogger_AddSourcePointsAtCaller(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Output = &buf
	cfg.AddSource = true
	l := NewLogger(cfg)

	l.Info("hello")
	l.LogPhase("fill", 1, time.Millisecond, nil)
	l.StartTimer("schedule")()

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)
	for _, line := range lines {
		src, ok := line["source"].(map[string]any)
		require.True(t, ok, "missing source in %v", line)
		assert.True(t, strings.HasSuffix(src["file"].(string), "logger_test.go"), src["file"])
	}
}

func TestSchedulerLogger_NoSourceByDefault(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.Info("hello")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	_, ok := lines[0]["source"]
	assert.False(t, ok)
}
