package sensor

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/oshokin/tempwatch/internal/config"
)

// SimulatedName is the Name of the random-walk source.
const SimulatedName = "simulated"

// Simulated emits a bounded random walk on a fixed interval.
type Simulated struct {
	seed     float64
	maxStep  float64
	interval time.Duration
	rand     *rand.Rand
}

// SimulatedOption configures a Simulated source.
type SimulatedOption func(*Simulated)

// WithSeed sets the starting temperature.
func WithSeed(seed float64) SimulatedOption {
	return func(s *Simulated) {
		s.seed = seed
	}
}

// WithMaxStep bounds the absolute change between two samples.
func WithMaxStep(step float64) SimulatedOption {
	return func(s *Simulated) {
		if step >= 0 {
			s.maxStep = step
		}
	}
}

// WithInterval sets the delay between two samples.
func WithInterval(interval time.Duration) SimulatedOption {
	return func(s *Simulated) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithRand replaces the random generator, mostly for deterministic tests.
func WithRand(r *rand.Rand) SimulatedOption {
	return func(s *Simulated) {
		if r != nil {
			s.rand = r
		}
	}
}

// NewSimulated returns a random-walk source with the default seed, step and interval.
func NewSimulated(opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		seed:     config.DefaultSeed,
		maxStep:  config.DefaultMaxStep,
		interval: config.DefaultSimulationInterval,
		//nolint:gosec // Simulated weather does not need a secure generator.
		rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name implements Source.
func (s *Simulated) Name() string {
	return SimulatedName
}

// Run emits a new sample every interval until ctx is done.
func (s *Simulated) Run(ctx context.Context, emit func(celsius float64)) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	current := s.seed

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// A tick and a cancellation can be ready together.
			if ctx.Err() != nil {
				return nil
			}

			current = s.step(current)
			emit(current)
		}
	}
}

// step applies one uniform perturbation in [-maxStep, +maxStep].
func (s *Simulated) step(current float64) float64 {
	return current + (s.rand.Float64()*2-1)*s.maxStep
}
