package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/domain/chat"
	"github.com/oshokin/tempwatch/internal/domain/profile"
	"github.com/oshokin/tempwatch/internal/domain/temperature"
	"github.com/oshokin/tempwatch/internal/logger"
	"github.com/oshokin/tempwatch/internal/service/common"
)

// Options configures how the control tool reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Timeout overrides the per-call timeout from config when positive.
	Timeout time.Duration
	// Out receives the command output; os.Stdout when nil.
	Out io.Writer
}

// errImageTooLarge is returned before uploading a picture the server would reject.
var errImageTooLarge = errors.New("image exceeds the configured size limit")

// session connects to the server, runs call and closes the connection.
func session(ctx context.Context, opts *Options, call func(context.Context, *common.Client, *config.Config) error) error {
	// Load settings; the control tool works without a settings file.
	cfg, _, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// Use server address from options if provided, otherwise use config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	timeout := cfg.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	dialOptions := []common.Option{common.WithCallTimeout(timeout)}

	// Identify current user and hostname for the server log.
	if actor, actorErr := common.DetectActor(); actorErr == nil {
		dialOptions = append(dialOptions, common.WithActor(actor))
	} else {
		logger.DebugKV(ctx, "Unable to detect actor", "error", actorErr)
	}

	client, err := common.Dial(ctx, serverAddress, dialOptions...)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected", "server_address", serverAddress)

	return call(ctx, client, cfg)
}

// Status prints the latest reading.
func Status(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "tempwatch-ctl")

	return session(ctx, opts, func(ctx context.Context, c *common.Client, _ *config.Config) error {
		reading, err := c.GetTemperature(ctx)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(output(opts), FormatReading(reading))

		return err
	})
}

// Watch prints every reading until ctx is done. Alert transitions are
// highlighted.
func Watch(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "tempwatch-ctl")

	return session(ctx, opts, func(ctx context.Context, c *common.Client, _ *config.Config) error {
		var (
			out      = output(opts)
			previous temperature.State
			seen     bool
		)

		return c.WatchTemperature(ctx, func(r temperature.Reading) error {
			line := FormatReading(r)
			if seen && r.State == temperature.AboveAlerted && previous == temperature.Below {
				line += "  << ALERT"
			}

			previous, seen = r.State, true

			_, err := fmt.Fprintln(out, line)

			return err
		})
	})
}

// ShowProfile prints the stored profile.
func ShowProfile(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "tempwatch-ctl")

	return session(ctx, opts, func(ctx context.Context, c *common.Client, _ *config.Config) error {
		p, err := c.GetProfile(ctx)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(output(opts), FormatProfile(p))

		return err
	})
}

// SetUsername changes the display name.
func SetUsername(ctx context.Context, opts *Options, username string) error {
	ctx = logger.WithName(ctx, "tempwatch-ctl")

	return session(ctx, opts, func(ctx context.Context, c *common.Client, _ *config.Config) error {
		p, err := c.UpdateProfile(ctx, profile.FieldUsername, username)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Username updated", "username", p.Username)

		_, err = fmt.Fprintln(output(opts), FormatProfile(p))

		return err
	})
}

// SetImage uploads the picture at path and makes it the profile picture.
func SetImage(ctx context.Context, opts *Options, path string) error {
	ctx = logger.WithName(ctx, "tempwatch-ctl")

	return session(ctx, opts, func(ctx context.Context, c *common.Client, cfg *config.Config) error {
		data, err := readImage(path, cfg.Avatar.MaxBytes)
		if err != nil {
			return err
		}

		p, err := c.ImportProfileImage(ctx, data)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Profile picture updated", "location", p.ProfileImageLocation)

		_, err = fmt.Fprintln(output(opts), FormatProfile(p))

		return err
	})
}

// Messages prints the personalised conversation.
func Messages(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "tempwatch-ctl")

	return session(ctx, opts, func(ctx context.Context, c *common.Client, _ *config.Config) error {
		messages, err := c.ListMessages(ctx)
		if err != nil {
			return err
		}

		_, err = io.WriteString(output(opts), FormatMessages(messages))

		return err
	})
}

// FormatReading renders a reading on one line.
func FormatReading(r temperature.Reading) string {
	timestamp := "<no sample yet>"
	if !r.Timestamp.IsZero() {
		timestamp = r.Timestamp.Local().Format(time.RFC3339)
	}

	source := r.Source
	if source == "" {
		source = "<none>"
	}

	return fmt.Sprintf("%.2f °C (threshold %.2f °C, %s, alert sent: %t, source: %s) at %s",
		r.Celsius, r.Threshold, r.State, r.AlertSent, source, timestamp)
}

// FormatProfile renders the profile on one line.
func FormatProfile(p profile.UserProfile) string {
	image := "<default>"
	if p.HasCustomImage() {
		image = p.ProfileImageLocation
	}

	return fmt.Sprintf("username: %s, profile picture: %s", p.Username, image)
}

// FormatMessages renders the conversation, one block per message.
func FormatMessages(messages []chat.Message) string {
	var b strings.Builder

	for _, m := range messages {
		b.WriteString(m.Author)

		if m.Avatar != "" {
			b.WriteString(" [")
			b.WriteString(m.Avatar)
			b.WriteString("]")
		}

		b.WriteString(":\n")

		for line := range strings.SplitSeq(m.Body, "\n") {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// readImage loads a picture from disk, refusing files above maxBytes.
func readImage(path string, maxBytes int64) ([]byte, error) {
	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}

	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", errImageTooLarge, info.Size(), maxBytes)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	return data, nil
}

func output(opts *Options) io.Writer {
	if opts.Out != nil {
		return opts.Out
	}

	return os.Stdout
}
