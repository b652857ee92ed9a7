package integration

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/notify/notifytest"
	"github.com/oshokin/tempwatch/internal/service/common"
	"github.com/oshokin/tempwatch/internal/service/server"
)

// simulationInterval keeps the simulated sensor fast enough for tests.
const simulationInterval = 20 * time.Millisecond

// testServer is a running tempwatch server with its on-disk state.
type testServer struct {
	cfgPath  string
	cfg      *config.Config
	alerts   *notifytest.Recorder
	grpcAddr string
	httpAddr string
	stop     func()
}

// reservePort returns a free loopback address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// writeConfig stores a settings file using a forced fast simulation.
func writeConfig(t *testing.T, dataDir string, threshold float64) (string, *config.Config) {
	t.Helper()

	cfg := config.Default()
	cfg.ServerAddress = reservePort(t)
	cfg.HTTPAddress = reservePort(t)
	cfg.DataDir = dataDir
	cfg.Timeout = 3 * time.Second
	cfg.Monitor.Threshold = threshold
	cfg.Simulation.Force = true
	cfg.Simulation.Interval = simulationInterval

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(cfgPath, cfg))

	return cfgPath, cfg
}

// startServer runs server.Run with cfgPath until the returned stop is called.
func startServer(t *testing.T, cfgPath string, cfg *config.Config) *testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	alerts := notifytest.NewRecorder(64)
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{
			ConfigPath:        cfgPath,
			SkipInstanceCheck: true,
			Sink:              alerts,
		})
	}()

	s := &testServer{
		cfgPath:  cfgPath,
		cfg:      cfg,
		alerts:   alerts,
		grpcAddr: cfg.ServerAddress,
		httpAddr: cfg.HTTPAddress,
	}

	stopped := false
	s.stop = func() {
		if stopped {
			return
		}

		stopped = true

		cancel()
		require.NoError(t, <-done)
	}

	t.Cleanup(s.stop)

	// Wait for the gRPC surface to answer.
	c := s.dial(t)

	require.Eventually(t, func() bool {
		_, err := c.GetTemperature(context.Background())

		return err == nil
	}, 10*time.Second, 20*time.Millisecond)

	return s
}

// dial connects a client that is closed at the end of the test.
func (s *testServer) dial(t *testing.T) *common.Client {
	t.Helper()

	c, err := common.Dial(context.Background(), s.grpcAddr,
		common.WithCallTimeout(2*time.Second),
		common.WithActor(common.Actor{Hostname: "test-host", Username: "test-user"}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

// pngBytes encodes a tiny picture.
func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}
