// Package monitor owns one temperature monitor instance.
//
// Service wires a sample source to the threshold state machine, publishes
// every reading to observers and hands one alert per excursion to a sink.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/tempwatch/internal/broadcast"
	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/domain/alert"
	"github.com/oshokin/tempwatch/internal/domain/temperature"
	"github.com/oshokin/tempwatch/internal/logger"
	"github.com/oshokin/tempwatch/internal/notify"
	"github.com/oshokin/tempwatch/internal/sensor"
)

// ErrAlreadyRunning is returned when Run is called while a source is active.
var ErrAlreadyRunning = errors.New("monitor is already running")

// Service is the explicit owned state of one monitor.
type Service struct {
	// machine is mutated only by HandleSample.
	machine *temperature.Monitor
	// readings carries the latest reading to observers.
	readings *broadcast.Property[temperature.Reading]
	// sink receives alerts.
	sink notify.Sink
	// alertText is the fixed notification text.
	alertText config.Alert
	// source is the name of the active source.
	source string
	// now returns the observation time.
	now func() time.Time
	// running guards against two sources for one monitor.
	running chan struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the observation clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a monitor in the Below state holding the configured initial sample.
func New(cfg *config.Config, sink notify.Sink, opts ...Option) *Service {
	if sink == nil {
		sink = notify.LogSink{}
	}

	machine := temperature.NewMonitor(cfg.Monitor.Threshold, cfg.Monitor.InitialCelsius)

	s := &Service{
		machine:   machine,
		readings:  broadcast.NewProperty(machine.Snapshot("", time.Time{})),
		sink:      sink,
		alertText: cfg.Alert,
		now:       time.Now,
		running:   make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Latest returns the current reading.
func (s *Service) Latest() temperature.Reading {
	return s.readings.Value()
}

// Subscribe streams the current reading and every later one until ctx is done.
func (s *Service) Subscribe(ctx context.Context) <-chan temperature.Reading {
	return s.readings.Subscribe(ctx)
}

// Threshold returns the alert threshold.
func (s *Service) Threshold() float64 {
	return s.machine.Threshold()
}

// HandleSample is the sample-arrival handler. It must not be called
// concurrently with itself.
func (s *Service) HandleSample(ctx context.Context, celsius float64) temperature.Reading {
	transition := s.machine.Observe(celsius)
	at := s.now()
	reading := s.machine.Snapshot(s.source, at)

	s.readings.Update(reading)

	logger.DebugKV(ctx, "Sample handled",
		"celsius", celsius,
		"state", transition.To.String(),
	)

	if transition.From != transition.To && !transition.Alert {
		logger.InfoKV(ctx, "Temperature back below threshold", "celsius", celsius, "threshold", s.machine.Threshold())
	}

	if transition.Alert {
		s.sink.EmitAlert(ctx, alert.New(
			s.alertText.Title,
			s.alertText.Message,
			s.alertText.Action,
			celsius,
			s.machine.Threshold(),
			at,
		))
	}

	return reading
}

// Run feeds samples from source into HandleSample until ctx is done.
// Only one source may run per monitor.
func (s *Service) Run(ctx context.Context, source sensor.Source) error {
	select {
	case s.running <- struct{}{}:
	default:
		return ErrAlreadyRunning
	}

	defer func() {
		<-s.running
	}()

	s.source = source.Name()
	ctx = logger.WithKV(ctx, "source", s.source)

	logger.InfoKV(ctx, "Monitor started",
		"threshold", s.machine.Threshold(),
		"initial_celsius", s.machine.Latest(),
	)

	err := source.Run(ctx, func(celsius float64) {
		s.HandleSample(ctx, celsius)
	})
	if err != nil {
		return fmt.Errorf("run %s source: %w", s.source, err)
	}

	logger.Info(ctx, "Monitor stopped")

	return nil
}
