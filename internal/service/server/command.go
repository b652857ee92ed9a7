package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"

	monitorapi "github.com/oshokin/tempwatch/internal/api/grpc/monitor"
	"github.com/oshokin/tempwatch/internal/api/web"
	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/logger"
	"github.com/oshokin/tempwatch/internal/notify"
	"github.com/oshokin/tempwatch/internal/service/common"
	"github.com/oshokin/tempwatch/internal/service/instance"
	"github.com/oshokin/tempwatch/internal/version"
)

// Options controls the tempwatch-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// HTTPAddress provides an optional listen address override for the HTTP surface.
	HTTPAddress string
	// DataDir overrides the directory holding preferences and the profile picture.
	DataDir string
	// LogLevel overrides the configured log level.
	LogLevel string
	// ForceSimulation skips hardware discovery.
	ForceSimulation bool
	// SkipInstanceCheck allows several servers per host, e.g. in tests.
	SkipInstanceCheck bool
	// Sink receives alerts in addition to the log and WebSocket observers.
	Sink notify.Sink
}

// headerReadTimeout bounds how long the HTTP server waits for request headers.
const headerReadTimeout = 10 * time.Second

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the monitor with its gRPC and HTTP surfaces and blocks until
// the context is canceled or a surface fails.
//
//nolint:funlen // Startup and shutdown read best as one sequence.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "tempwatch-server")

	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return err
	}

	if !opts.SkipInstanceCheck {
		if err = instance.EnsureSingle(); err != nil {
			return fmt.Errorf("check running instances: %w", err)
		}
	}

	// Determine listen addresses: CLI arguments override config.
	listenAddress, err := resolveListenAddress(cfg.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	httpAddress, err := resolveListenAddress(cfg.HTTPAddress, opts.HTTPAddress)
	if err != nil {
		return fmt.Errorf("resolve http address: %w", err)
	}

	a, err := newApp(ctx, cfg, opts.Sink)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	lc := net.ListenConfig{}

	grpcListener, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	httpListener, err := lc.Listen(ctx, "tcp", httpAddress)
	if err != nil {
		_ = grpcListener.Close()

		return fmt.Errorf("listen on %s: %w", httpAddress, err)
	}

	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(int(cfg.Avatar.MaxBytes)+grpcEnvelopeSize),
		grpc.ChainUnaryInterceptor(unaryLogger),
		grpc.ChainStreamInterceptor(streamLogger),
	)
	monitorapi.RegisterMonitorServiceServer(grpcServer, monitorapi.NewServer(a.monitor, a.store, a.avatars))

	httpServer := &http.Server{
		Handler:           web.NewHandler(a.monitor, a.store, a.hub),
		ReadHeaderTimeout: headerReadTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.InfoKV(ctx, "Tempwatch server listening", append([]any{
		"listen_address", grpcListener.Addr().String(),
		"http_address", httpListener.Addr().String(),
		"preferences_file", a.preferencesPath(),
		"source", a.source.Name(),
	}, version.KV()...)...)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 3)

	go func() {
		errs <- a.run(runCtx)
	}()

	go func() {
		if serveErr := grpcServer.Serve(grpcListener); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			errs <- fmt.Errorf("serve gRPC: %w", serveErr)

			return
		}

		errs <- nil
	}()

	go func() {
		if serveErr := httpServer.Serve(httpListener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errs <- fmt.Errorf("serve HTTP: %w", serveErr)

			return
		}

		errs <- nil
	}()

	// The first result decides the outcome: nil means the monitor stopped on
	// cancellation or a server was stopped from outside.
	var (
		firstErr error
		pending  = 3
	)

	select {
	case <-ctx.Done():
	case firstErr = <-errs:
		pending--
	}

	logger.Info(ctx, "Shutting down servers")
	cancel()

	stopGRPC(ctx, grpcServer, a.shutdownTimeout())

	shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(ctx), a.shutdownTimeout())
	defer cancelShutdown()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.WarnKV(ctx, "HTTP server shutdown failed", "error", shutdownErr)
	}

	// Collect the remaining results so no goroutine outlives Run.
	for range pending {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}

	logger.Info(ctx, "Tempwatch server stopped")

	return firstErr
}

// grpcEnvelopeSize is headroom above the picture size for message framing.
const grpcEnvelopeSize = 64 << 10

// loadConfig reads settings and applies the command line overrides.
func loadConfig(ctx context.Context, opts *Options) (*config.Config, error) {
	cfg, usedDefaults, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if usedDefaults {
		logger.InfoKV(ctx, "Settings file not found, using defaults", "path", opts.ConfigPath)
	}

	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	if opts.ForceSimulation {
		cfg.Simulation.Force = true
	}

	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}

	if !logger.SetLevelName(level) {
		logger.WarnKV(ctx, "Unknown log level, keeping current", "level", level, "current", logger.Level().String())
	}

	return cfg, nil
}

// stopGRPC stops the server gracefully and forces it once timeout elapses.
// Streams such as WatchTemperature only end when their clients go away.
func stopGRPC(ctx context.Context, s *grpc.Server, timeout time.Duration) {
	stopped := make(chan struct{})

	go func() {
		s.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-stopped:
	case <-timer.C:
		logger.Warn(ctx, "Graceful gRPC shutdown timed out, forcing")
		s.Stop()
		<-stopped
	}

	logger.Info(ctx, "GRPC server stopped")
}

// unaryLogger logs every unary call with the actor the client attached.
func unaryLogger(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	started := time.Now()
	resp, err := handler(ctx, req)

	logCall(ctx, info.FullMethod, started, err)

	return resp, err
}

// streamLogger logs every stream once it ends.
func streamLogger(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	started := time.Now()
	err := handler(srv, ss)

	logCall(ss.Context(), info.FullMethod, started, err)

	return err
}

func logCall(ctx context.Context, method string, started time.Time, err error) {
	actor := "unknown"
	if a, ok := common.ActorFromContext(ctx); ok {
		actor = a.String()
	}

	if err != nil {
		logger.WarnKV(ctx, "GRPC call failed", "method", method, "actor", actor, "error", err)

		return
	}

	logger.DebugKV(ctx, "GRPC call served", "method", method, "actor", actor, "duration", time.Since(started))
}

// resolveListenAddress determines the listen address for a server.
// If override is provided, uses it directly. Otherwise the configured
// address is used after validation.
func resolveListenAddress(configAddr, override string) (string, error) {
	// Use override address if provided (e.g., ":9090", "0.0.0.0:8080").
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}
