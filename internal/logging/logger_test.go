package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]LogLevel{
		"":        LogLevelInfo,
		"debug":   LogLevelDebug,
		" Info ":  LogLevelInfo,
		"warning": LogLevelWarn,
		"ERROR":   LogLevelError,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestZapLoggerFiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewZapLogger(LogLevelWarn, &buf)
	ctx := context.Background()

	logger.Debug(ctx, "hidden debug")
	logger.Info(ctx, "hidden info")
	logger.Warn(ctx, "visible warn", Field("path", "a.txt"))

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "visible warn")
	require.Contains(t, out, "a.txt")
}

func TestZapLoggerIncludesTraceAndError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewZapLogger(LogLevelDebug, &buf).WithFields(Field("component", "tools"))
	ctx := WithTraceID(context.Background(), "trace-123")

	logger.Error(ctx, "call failed", errors.New("boom"), Field("tool", "shell"))

	out := buf.String()
	require.Contains(t, out, "call failed")
	require.Contains(t, out, "trace-123")
	require.Contains(t, out, "boom")
	require.Contains(t, out, "tools")
	require.Contains(t, out, "shell")
}

func TestNilWriterDiscards(t *testing.T) {
	t.Parallel()

	logger := NewZapLogger(LogLevelDebug, nil)
	require.NotPanics(t, func() {
		logger.Info(context.Background(), "nothing")
	})
}

func TestTraceIDs(t *testing.T) {
	t.Parallel()

	require.Empty(t, TraceID(context.Background()))
	require.Empty(t, TraceID(nil))

	id := NewTraceID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.NotEqual(t, id, NewTraceID())
}
