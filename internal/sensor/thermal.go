package sensor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/logger"
)

// ThermalName is the Name of the hardware-backed source.
const ThermalName = "thermal"

var (
	// errEmptyReading is returned for a sensor file without a value.
	errEmptyReading = errors.New("empty sensor reading")
	// errNonFinite is returned for NaN and infinite sensor values.
	errNonFinite = errors.New("sensor reading is not a finite number")
)

// Thermal polls a sysfs-style file holding millidegrees Celsius.
type Thermal struct {
	path     string
	interval time.Duration
}

// NewThermal returns a hardware-backed source reading path every interval.
func NewThermal(path string, interval time.Duration) *Thermal {
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}

	return &Thermal{
		path:     filepath.Clean(path),
		interval: interval,
	}
}

// Name implements Source.
func (t *Thermal) Name() string {
	return ThermalName
}

// Path returns the sensor file location.
func (t *Thermal) Path() string {
	return t.path
}

// Run reads the sensor every interval and emits each successful reading.
// Failed reads are logged and skipped.
func (t *Thermal) Run(ctx context.Context, emit func(celsius float64)) error {
	ctx = logger.WithKV(ctx, "sensor_path", t.path)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}

			celsius, err := readCelsius(t.path)
			if err != nil {
				logger.WarnKV(ctx, "Sensor read failed", "error", err)

				continue
			}

			emit(celsius)
		}
	}
}

// readCelsius parses one millidegree value from path.
func readCelsius(path string) (float64, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("read sensor: %w", err)
	}

	raw := strings.TrimSpace(string(contents))
	if raw == "" {
		return 0, errEmptyReading
	}

	milli, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse sensor value %q: %w", raw, err)
	}

	if math.IsNaN(milli) || math.IsInf(milli, 0) {
		return 0, fmt.Errorf("parse sensor value %q: %w", raw, errNonFinite)
	}

	return milli / 1000, nil
}
