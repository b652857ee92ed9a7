package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLevel verifies level names are mapped and unknown names rejected.
func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		"INFO":   zapcore.InfoLevel,
		" warn ": zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
		"fatal":  zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	got, ok := ParseLevel("loud")
	require.False(t, ok)
	require.Equal(t, zapcore.InfoLevel, got)
}

// TestContextLogger checks that named loggers travel through the context.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), New(&buf))
	ctx = WithName(ctx, "monitor")
	ctx = WithKV(ctx, "source", "simulated")

	InfoKV(ctx, "Sample handled", "celsius", 21.5)

	line := buf.String()
	require.Contains(t, line, "monitor")
	require.Contains(t, line, "Sample handled")
	require.Contains(t, line, `"source": "simulated"`)
	require.Contains(t, line, `"celsius": 21.5`)
}

// TestFromContext_Fallback ensures a bare context yields the global logger.
func TestFromContext_Fallback(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}
