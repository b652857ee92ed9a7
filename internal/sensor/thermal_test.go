package sensor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/tempwatch/internal/config"
)

// writeSensor creates a fake sensor file holding value.
func writeSensor(t *testing.T, dir, value string) string {
	t.Helper()

	path := filepath.Join(dir, "temp")
	require.NoError(t, os.WriteFile(path, []byte(value), config.DefaultFilePermissions))

	return path
}

// TestReadCelsius parses millidegrees and rejects garbage and non-finite values.
func TestReadCelsius(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	got, err := readCelsius(writeSensor(t, dir, "31500\n"))
	require.NoError(t, err)
	require.InDelta(t, 31.5, got, 1e-9)

	_, err = readCelsius(writeSensor(t, dir, "  \n"))
	require.ErrorIs(t, err, errEmptyReading)

	_, err = readCelsius(writeSensor(t, dir, "hot"))
	require.Error(t, err)

	for _, value := range []string{"NaN", "inf", "-Inf"} {
		_, err = readCelsius(writeSensor(t, dir, value))
		require.ErrorIs(t, err, errNonFinite, value)
	}

	_, err = readCelsius(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestThermal_Run polls the sensor and skips failed reads.
func TestThermal_Run(t *testing.T) {
	t.Parallel()

	path := writeSensor(t, t.TempDir(), "24000")

	synctest.Test(t, func(t *testing.T) {
		src := NewThermal(path, time.Second)
		require.Equal(t, ThermalName, src.Name())
		require.Equal(t, path, src.Path())

		ctx, cancel := context.WithCancel(context.Background())
		c := new(collector)
		done := make(chan error, 1)

		go func() {
			done <- src.Run(ctx, c.emit)
		}()

		time.Sleep(3*time.Second + time.Millisecond)
		synctest.Wait()
		require.Equal(t, []float64{24, 24, 24}, c.snapshot())

		require.NoError(t, os.WriteFile(path, []byte("broken"), config.DefaultFilePermissions))
		time.Sleep(2 * time.Second)
		synctest.Wait()
		require.Len(t, c.snapshot(), 3)

		require.NoError(t, os.WriteFile(path, []byte("35250"), config.DefaultFilePermissions))
		time.Sleep(time.Second)
		synctest.Wait()
		require.Equal(t, []float64{24, 24, 24, 35.25}, c.snapshot())

		cancel()
		require.NoError(t, <-done)
	})
}

// TestSelect prefers a readable sensor and falls back to simulation.
func TestSelect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Sensor.Path = writeSensor(t, dir, "22000")
	require.Equal(t, ThermalName, Select(ctx, cfg).Name())

	cfg.Simulation.Force = true
	require.Equal(t, SimulatedName, Select(ctx, cfg).Name())

	cfg = config.Default()
	cfg.Sensor.Path = filepath.Join(dir, "absent")
	require.Equal(t, SimulatedName, Select(ctx, cfg).Name())
}
