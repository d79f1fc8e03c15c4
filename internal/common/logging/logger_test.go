package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T, level LogLevel) (Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger, err := NewZapLogger(LogConfig{Level: level, Output: buf})
	require.NoError(t, err)
	return logger, buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"nonsense", InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "input %q", tt.input)
	}
}

func TestZapAdapter_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(t, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
	assert.Contains(t, out, "boom")
}

func TestZapAdapter_WithFields(t *testing.T) {
	logger, buf := newBufferLogger(t, InfoLevel)

	logger.WithFields(String("component", "dispatcher")).Info("delivery complete", Int("sent", 2))

	out := buf.String()
	assert.Contains(t, out, "delivery complete")
	assert.Contains(t, out, "dispatcher")
	assert.Contains(t, out, "2")
}

func TestGlobalLogger(t *testing.T) {
	logger, buf := newBufferLogger(t, InfoLevel)
	prev := GetGlobalLogger()
	SetGlobalLogger(logger)
	defer SetGlobalLogger(prev)

	Info("through the global logger")
	assert.Contains(t, buf.String(), "through the global logger")
}
