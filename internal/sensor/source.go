package sensor

import (
	"context"
	"errors"

	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/logger"
)

// Source produces temperature samples in degrees Celsius.
type Source interface {
	// Name identifies the source in logs and readings.
	Name() string
	// Run calls emit for every sample until ctx is done. emit is called
	// sequentially from a single goroutine and never after Run returns.
	Run(ctx context.Context, emit func(celsius float64)) error
}

// ErrNoSensor is returned by discovery when no hardware sensor exists.
var ErrNoSensor = errors.New("no temperature sensor available")

// Select picks the sample source for the lifetime of the process.
// Hardware is preferred; the simulator is used when none is usable or when
// simulation is forced. Missing hardware is not an error.
func Select(ctx context.Context, cfg *config.Config) Source {
	simulated := func() Source {
		return NewSimulated(
			WithSeed(cfg.Simulation.Seed),
			WithMaxStep(cfg.Simulation.MaxStep),
			WithInterval(cfg.Simulation.Interval),
		)
	}

	if cfg.Simulation.Force {
		logger.Info(ctx, "Simulation forced by configuration")

		return simulated()
	}

	path := cfg.Sensor.Path
	if path == "" {
		discovered, err := discover()
		if err != nil {
			logger.InfoKV(ctx, "No hardware sensor found, using simulation", "reason", err.Error())

			return simulated()
		}

		path = discovered
	}

	if _, err := readCelsius(path); err != nil {
		logger.InfoKV(ctx, "Hardware sensor is not readable, using simulation", "path", path, "error", err)

		return simulated()
	}

	logger.InfoKV(ctx, "Using hardware sensor", "path", path, "poll_interval", cfg.Sensor.PollInterval.String())

	return NewThermal(path, cfg.Sensor.PollInterval)
}
