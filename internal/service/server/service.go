package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/tempwatch/internal/api/web"
	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/logger"
	"github.com/oshokin/tempwatch/internal/notify"
	repo "github.com/oshokin/tempwatch/internal/repository/preferences"
	"github.com/oshokin/tempwatch/internal/sensor"
	"github.com/oshokin/tempwatch/internal/service/avatar"
	"github.com/oshokin/tempwatch/internal/service/monitor"
	"github.com/oshokin/tempwatch/internal/service/preferences"
)

// dataDirPermissions is used when creating the data directory.
const dataDirPermissions = 0o750

// app holds the long-lived services of one server process.
// It is unexported to keep the transports decoupled from the wiring.
type app struct {
	cfg *config.Config
	// store persists the profile through a single writer goroutine.
	store *preferences.Store
	// avatars installs imported profile pictures into the data directory.
	avatars *avatar.Importer
	// hub pushes readings and alerts to WebSocket observers.
	hub *web.Hub
	// monitor owns the threshold state machine.
	monitor *monitor.Service
	// source is chosen once at startup.
	source sensor.Source
}

// newApp builds every service from cfg. Nothing runs until run is called.
func newApp(ctx context.Context, cfg *config.Config, sink notify.Sink, opts ...monitor.Option) (*app, error) {
	if err := os.MkdirAll(cfg.DataDir, dataDirPermissions); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store, err := preferences.NewStore(ctx, repo.NewFileRepository(cfg.PreferencesPath()))
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}

	hub := web.NewHub()

	return &app{
		cfg:     cfg,
		store:   store,
		avatars: avatar.NewImporter(cfg.DataDir, cfg.Avatar.MaxBytes),
		hub:     hub,
		monitor: monitor.New(cfg, notify.Multi(notify.LogSink{}, hub, sink), opts...),
		source:  sensor.Select(ctx, cfg),
	}, nil
}

// run starts the background loops and blocks until ctx is done or the
// monitor fails. It waits for every loop to exit before returning.
func (a *app) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	storeDone := make(chan struct{})
	hubDone := make(chan struct{})
	followDone := make(chan struct{})

	go func() {
		defer close(storeDone)

		a.store.Run(ctx)
	}()

	go func() {
		defer close(hubDone)

		a.hub.Run(ctx)
	}()

	readings := a.monitor.Subscribe(ctx)

	go func() {
		defer close(followDone)

		a.hub.Follow(ctx, readings)
	}()

	err := a.monitor.Run(ctx, a.source)
	if err != nil {
		logger.ErrorKV(ctx, "Monitor failed", "error", err)
	}

	cancel()
	<-followDone
	<-hubDone
	<-storeDone

	return err
}

// preferencesPath reports where the profile is stored, for logging.
func (a *app) preferencesPath() string {
	path, err := filepath.Abs(a.cfg.PreferencesPath())
	if err != nil {
		return a.cfg.PreferencesPath()
	}

	return path
}

// shutdownTimeout bounds graceful shutdown of a transport.
func (a *app) shutdownTimeout() time.Duration {
	return a.cfg.Timeout
}
