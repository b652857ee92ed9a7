package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/logger"
	"github.com/oshokin/tempwatch/internal/service/client"
	"github.com/oshokin/tempwatch/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// serverAddress overrides the configured gRPC address.
	serverAddress string
	// timeout overrides the configured per-call timeout.
	timeout time.Duration
	// logLevel controls diagnostics printed to stderr.
	logLevel string

	// rootCmd is the base command; the work happens in subcommands.
	rootCmd = &cobra.Command{
		Use:   "tempwatch-ctl",
		Short: "Query and configure a running tempwatch server.",
		Long: `Command line client for tempwatch-server.

Reads the current temperature, follows it live, shows the personalised
conversation and edits the user profile (display name and picture).
Server address and timeout come from the configuration file unless
overridden with flags.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if logLevel != "" && !logger.SetLevelName(logLevel) {
				logger.Logger().Warnw("Unknown log level, keeping current", "level", logLevel)
			}
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the latest temperature reading.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, client.Status)
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Print every reading until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, client.Watch)
		},
	}

	profileCmd = &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the user profile.",
	}

	profileShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the stored profile.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, client.ShowProfile)
		},
	}

	profileSetUsernameCmd = &cobra.Command{
		Use:   "set-username <name>",
		Short: "Change the display name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, opts *client.Options) error {
				return client.SetUsername(ctx, opts, args[0])
			})
		},
	}

	profileSetImageCmd = &cobra.Command{
		Use:   "set-image <path>",
		Short: "Upload a picture and use it as the profile picture.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, opts *client.Options) error {
				return client.SetImage(ctx, opts, args[0])
			})
		},
	}

	messagesCmd = &cobra.Command{
		Use:   "messages",
		Short: "Print the conversation shown on the main surface.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, client.Messages)
		},
	}
)

// run executes action with a signal-scoped context and the shared flags.
func run(cmd *cobra.Command, action func(context.Context, *client.Options) error) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	defer logger.Sync()

	return action(ctx, &client.Options{
		ConfigPath:    configPath,
		ServerAddress: serverAddress,
		Timeout:       timeout,
		Out:           cmd.OutOrStdout(),
	})
}

// Execute runs the tempwatch-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&serverAddress, "server", "s", "", "gRPC server address (overrides config)")
	flags.DurationVarP(&timeout, "timeout", "t", 0, "per-call timeout (overrides config)")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	profileCmd.AddCommand(profileShowCmd, profileSetUsernameCmd, profileSetImageCmd)
	rootCmd.AddCommand(statusCmd, watchCmd, profileCmd, messagesCmd)
}
