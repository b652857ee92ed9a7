package monitor

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/domain/temperature"
	"github.com/oshokin/tempwatch/internal/notify/notifytest"
	"github.com/oshokin/tempwatch/internal/sensor"
)

var errTestSource = errors.New("test source failure")

// sliceSource emits a fixed list of samples and then waits for cancellation.
type sliceSource struct {
	samples []float64
	err     error
}

// Name implements sensor.Source.
func (s *sliceSource) Name() string { return "slice" }

// Run emits every sample, then blocks until ctx is done.
func (s *sliceSource) Run(ctx context.Context, emit func(float64)) error {
	if s.err != nil {
		return s.err
	}

	for _, v := range s.samples {
		emit(v)
	}

	<-ctx.Done()

	return nil
}

// TestService_ReferenceSequence raises exactly two alerts for the documented sequence.
func TestService_ReferenceSequence(t *testing.T) {
	t.Parallel()

	recorder := notifytest.NewRecorder(8)
	at := time.Unix(1700000000, 0)
	svc := New(config.Default(), recorder, WithClock(func() time.Time { return at }))

	initial := svc.Latest()
	require.InDelta(t, 20.0, initial.Celsius, 0)
	require.Equal(t, temperature.Below, initial.State)
	require.True(t, initial.Timestamp.IsZero())

	ctx := context.Background()
	alertsAfter := make([]int, 0, 6)

	for _, s := range []float64{20, 25, 31, 32, 29, 33} {
		svc.HandleSample(ctx, s)
		alertsAfter = append(alertsAfter, len(recorder.Alerts()))
	}

	require.Equal(t, []int{0, 0, 1, 1, 1, 2}, alertsAfter)

	alerts := recorder.Drain()
	require.InDelta(t, 31.0, alerts[0].Celsius, 0)
	require.InDelta(t, 33.0, alerts[1].Celsius, 0)
	require.Equal(t, config.DefaultAlertTitle, alerts[0].Title)
	require.Equal(t, config.DefaultAlertMessage, alerts[0].Message)
	require.Equal(t, config.DefaultAlertAction, alerts[0].Action)
	require.InDelta(t, 30.0, alerts[0].Threshold, 0)
	require.NotEqual(t, alerts[0].ID, alerts[1].ID)

	latest := svc.Latest()
	require.InDelta(t, 33.0, latest.Celsius, 0)
	require.True(t, latest.AlertSent)
	require.Equal(t, at, latest.Timestamp)
}

// TestService_Run drives a source and publishes readings to subscribers.
func TestService_Run(t *testing.T) {
	t.Parallel()

	recorder := notifytest.NewRecorder(8)
	svc := New(config.Default(), recorder)

	ctx, cancel := context.WithCancel(context.Background())
	readings := svc.Subscribe(ctx)
	require.InDelta(t, 20.0, (<-readings).Celsius, 0)

	done := make(chan error, 1)

	go func() {
		done <- svc.Run(ctx, &sliceSource{samples: []float64{35}})
	}()

	a := <-recorder.Alerts()
	require.InDelta(t, 35.0, a.Celsius, 0)

	reading := <-readings
	require.Equal(t, "slice", reading.Source)
	require.Equal(t, temperature.AboveAlerted, reading.State)

	// A second source for the same monitor is refused.
	require.ErrorIs(t, svc.Run(ctx, &sliceSource{}), ErrAlreadyRunning)

	cancel()
	require.NoError(t, <-done)
}

// TestService_RunSourceError wraps source failures.
func TestService_RunSourceError(t *testing.T) {
	t.Parallel()

	svc := New(config.Default(), nil)

	err := svc.Run(context.Background(), &sliceSource{err: errTestSource})
	require.ErrorIs(t, err, errTestSource)
}

// TestService_Simulated runs the real simulator with fake time and checks
// that alerts match excursions and stop with the owner's lifetime.
func TestService_Simulated(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		cfg := config.Default()
		cfg.Monitor.Threshold = 21

		recorder := notifytest.NewRecorder(1000)
		svc := New(cfg, recorder)

		source := sensor.NewSimulated(
			sensor.WithSeed(20),
			sensor.WithInterval(5*time.Second),
			sensor.WithRand(rand.New(rand.NewPCG(3, 4))), //nolint:gosec // Deterministic test data.
		)

		ctx, cancel := context.WithCancel(context.Background())
		readings := svc.Subscribe(ctx)
		<-readings

		var (
			previous   = 20.0
			above      bool
			excursions int
		)

		done := make(chan error, 1)

		go func() {
			done <- svc.Run(ctx, source)
		}()

		for range 200 {
			time.Sleep(5 * time.Second)
			synctest.Wait()

			reading := <-readings
			require.LessOrEqual(t, reading.Celsius-previous, 2.0)
			require.GreaterOrEqual(t, reading.Celsius-previous, -2.0)

			if reading.Celsius >= cfg.Monitor.Threshold && !above {
				excursions++
			}

			above = reading.Celsius >= cfg.Monitor.Threshold
			require.Equal(t, above, reading.AlertSent)

			previous = reading.Celsius
		}

		cancel()
		require.NoError(t, <-done)
		require.Len(t, recorder.Drain(), excursions)
	})
}
