package temperature

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestMonitor_ReferenceSequence walks the documented sample sequence.
func TestMonitor_ReferenceSequence(t *testing.T) {
	t.Parallel()

	m := NewMonitor(30, 20)
	require.Equal(t, Below, m.State())
	require.InDelta(t, 20.0, m.Latest(), 0)

	samples := []float64{20, 25, 31, 32, 29, 33}
	alerts := make([]bool, 0, len(samples))
	flags := make([]bool, 0, len(samples))

	for _, s := range samples {
		tr := m.Observe(s)
		alerts = append(alerts, tr.Alert)
		flags = append(flags, m.AlertSent())
	}

	require.Equal(t, []bool{false, false, true, false, false, true}, alerts)
	require.Equal(t, []bool{false, false, true, true, false, true}, flags)
	require.InDelta(t, 33.0, m.Latest(), 0)
}

// TestMonitor_Transitions covers each edge of the state machine.
func TestMonitor_Transitions(t *testing.T) {
	t.Parallel()

	m := NewMonitor(30, 20)

	tr := m.Observe(10)
	require.Equal(t, Transition{From: Below, To: Below, Sample: 10}, tr)

	tr = m.Observe(30)
	require.Equal(t, Transition{From: Below, To: AboveAlerted, Sample: 30, Alert: true}, tr)

	tr = m.Observe(45)
	require.Equal(t, Transition{From: AboveAlerted, To: AboveAlerted, Sample: 45}, tr)

	tr = m.Observe(29.99)
	require.Equal(t, Transition{From: AboveAlerted, To: Below, Sample: 29.99}, tr)
}

// TestMonitor_OneAlertPerExcursion checks the invariants on random sequences.
func TestMonitor_OneAlertPerExcursion(t *testing.T) {
	t.Parallel()

	const threshold = 30.0

	r := rand.New(rand.NewPCG(7, 11)) //nolint:gosec // Deterministic test data.

	for range 50 {
		m := NewMonitor(threshold, 20)

		var (
			excursions int
			alerts     int
			above      bool
		)

		for range 200 {
			s := 20 + r.Float64()*20

			if s >= threshold && !above {
				excursions++
			}

			above = s >= threshold

			if m.Observe(s).Alert {
				alerts++
			}

			require.Equal(t, above, m.AlertSent())
		}

		require.Equal(t, excursions, alerts)
	}
}

// TestMonitor_Snapshot copies the state into a Reading.
func TestMonitor_Snapshot(t *testing.T) {
	t.Parallel()

	m := NewMonitor(30, 20)
	m.Observe(31)

	at := time.Unix(1700000000, 0)
	r := m.Snapshot("simulated", at)

	require.Equal(t, Reading{
		Celsius:   31,
		Threshold: 30,
		State:     AboveAlerted,
		AlertSent: true,
		Source:    "simulated",
		Timestamp: at,
	}, r)
	require.Equal(t, "above_alerted", r.State.String())
	require.Equal(t, "below", Below.String())
}
