package notify

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/tempwatch/internal/domain/alert"
	"github.com/oshokin/tempwatch/internal/logger"
	"github.com/oshokin/tempwatch/internal/notify/notifytest"
)

// TestMulti delivers to every sink and skips nil ones.
func TestMulti(t *testing.T) {
	t.Parallel()

	first := notifytest.NewRecorder(4)
	second := notifytest.NewRecorder(4)

	var called int

	sink := Multi(first, nil, second, SinkFunc(func(context.Context, alert.Alert) { called++ }))

	a := alert.New("Hot", "Too hot", "/", 31, 30, time.Now())
	sink.EmitAlert(context.Background(), a)

	require.Equal(t, []alert.Alert{a}, first.Drain())
	require.Equal(t, []alert.Alert{a}, second.Drain())
	require.Equal(t, 1, called)
}

// TestLogSink writes the alert fields.
func TestLogSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := logger.ToContext(context.Background(), logger.New(&buf))
	a := alert.New("High temperature", "Too hot", "/", 31.5, 30, time.Now())

	LogSink{}.EmitAlert(ctx, a)

	require.Contains(t, buf.String(), "High temperature")
	require.Contains(t, buf.String(), a.ID.String())
	require.Contains(t, buf.String(), "31.5")
}
