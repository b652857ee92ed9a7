package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/logger"
	"github.com/oshokin/tempwatch/internal/service/server"
	"github.com/oshokin/tempwatch/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// httpAddress overrides the HTTP surface address.
	httpAddress string
	// dataDir overrides where preferences and the profile picture live.
	dataDir string
	// logLevel overrides the configured log level.
	logLevel string
	// simulate skips hardware sensor discovery.
	simulate bool

	// rootCmd represents the base command for running the monitor server.
	rootCmd = &cobra.Command{
		Use:   "tempwatch-server [listen-address]",
		Short: "Monitor the ambient temperature and serve readings over gRPC and HTTP.",
		Long: `Starts the temperature monitor and the servers that expose it.

A hardware thermal sensor is used when one is readable, otherwise readings come
from a bounded random walk. One alert is raised every time the temperature
reaches the threshold and is cleared only once it drops strictly below it.

The gRPC address can be provided as argument to override config (e.g., :9090).
The HTTP surface serves JSON endpoints and a WebSocket feed on --http-addr.
The user profile is persisted as JSON in the data directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			defer logger.Sync()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:      configPath,
				ListenAddress:   listenAddress,
				HTTPAddress:     httpAddress,
				DataDir:         dataDir,
				LogLevel:        logLevel,
				ForceSimulation: simulate,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the tempwatch-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVar(&httpAddress, "http-addr", "", "HTTP listen address (overrides config)")
	rootCmd.Flags().StringVarP(&dataDir, "data-dir", "d", "", "directory for preferences and the profile picture")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&simulate, "simulate", false, "use the simulated sensor even if hardware is present")
}
