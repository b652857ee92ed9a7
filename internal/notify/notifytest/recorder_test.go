package notifytest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/tempwatch/internal/domain/alert"
)

// TestRecorder_DropsWhenFull never blocks the caller.
func TestRecorder_DropsWhenFull(t *testing.T) {
	t.Parallel()

	r := NewRecorder(1)
	r.EmitAlert(context.Background(), alert.Alert{Title: "one"})
	r.EmitAlert(context.Background(), alert.Alert{Title: "two"})

	got := r.Drain()
	require.Len(t, got, 1)
	require.Equal(t, "one", got[0].Title)
	require.Empty(t, r.Drain())
}
