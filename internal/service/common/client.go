//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	monitorapi "github.com/oshokin/tempwatch/internal/api/grpc/monitor"
	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/domain/chat"
	"github.com/oshokin/tempwatch/internal/domain/profile"
	"github.com/oshokin/tempwatch/internal/domain/temperature"
)

// Client wraps the gRPC MonitorService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the server.
	conn *grpc.ClientConn
	// api is the MonitorService client stub.
	api monitorapi.MonitorServiceClient

	// callTimeout is the default timeout for individual unary calls.
	callTimeout time.Duration
	// actor is attached to every call when set.
	actor *Actor
	// dialOptions are passed to grpc.NewClient after the defaults.
	dialOptions []grpc.DialOption
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for unary service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor attaches a to every call.
func WithActor(a Actor) Option {
	return func(c *Client) {
		c.actor = &a
	}
}

// WithDialOptions appends raw gRPC dial options, e.g. a custom dialer.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errImageRequired is returned when importing an empty picture.
	errImageRequired = errors.New("image data must be provided")
	// errHandlerRequired is returned when watching without a callback.
	errHandlerRequired = errors.New("reading handler must be provided")
)

// Dial establishes a gRPC connection to the tempwatch server.
// Note: this uses insecure transport credentials; the server listens on
// loopback by default.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{callTimeout: config.DefaultTimeout}

	for _, opt := range opts {
		opt(client)
	}

	dialOptions := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, client.dialOptions...)

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("dial tempwatch server: %w", err)
	}

	client.conn = conn
	client.api = monitorapi.NewMonitorServiceClient(conn)

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetTemperature retrieves the latest reading.
func (c *Client) GetTemperature(ctx context.Context) (temperature.Reading, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetTemperature(callCtx, new(emptypb.Empty))
	if err != nil {
		return temperature.Reading{}, fmt.Errorf("get temperature: %w", err)
	}

	return monitorapi.ReadingFromStruct(resp), nil
}

// WatchTemperature calls handle for the current reading and every later one.
// It blocks until ctx is done, the server ends the stream or handle fails.
// A cancelled or expired ctx is not reported as an error.
func (c *Client) WatchTemperature(ctx context.Context, handle func(temperature.Reading) error) error {
	if handle == nil {
		return errHandlerRequired
	}

	if c.actor != nil {
		ctx = withActor(ctx, *c.actor)
	}

	// Returning early must release the stream.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.api.WatchTemperature(streamCtx, new(emptypb.Empty))
	if err != nil {
		return fmt.Errorf("watch temperature: %w", err)
	}

	for {
		msg, err := stream.Recv()

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		case ctx.Err() != nil && (status.Code(err) == codes.Canceled || status.Code(err) == codes.DeadlineExceeded):
			return nil
		default:
			return fmt.Errorf("watch temperature: %w", err)
		}

		if err = handle(monitorapi.ReadingFromStruct(msg)); err != nil {
			return err
		}
	}
}

// GetProfile retrieves the current profile.
func (c *Client) GetProfile(ctx context.Context) (profile.UserProfile, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetProfile(callCtx, new(emptypb.Empty))
	if err != nil {
		return profile.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}

	return monitorapi.ProfileFromStruct(resp), nil
}

// UpdateProfile sets one profile field and returns the stored profile.
func (c *Client) UpdateProfile(ctx context.Context, field profile.Field, value string) (profile.UserProfile, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.UpdateProfile(callCtx, monitorapi.UpdateRequest(field, value))
	if err != nil {
		return profile.UserProfile{}, fmt.Errorf("update profile: %w", err)
	}

	return monitorapi.ProfileFromStruct(resp), nil
}

// ImportProfileImage uploads a picture and returns the updated profile.
func (c *Client) ImportProfileImage(ctx context.Context, data []byte) (profile.UserProfile, error) {
	if len(data) == 0 {
		return profile.UserProfile{}, errImageRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ImportProfileImage(callCtx, wrapperspb.Bytes(data))
	if err != nil {
		return profile.UserProfile{}, fmt.Errorf("import profile image: %w", err)
	}

	return monitorapi.ProfileFromStruct(resp), nil
}

// ListMessages retrieves the personalised conversation.
func (c *Client) ListMessages(ctx context.Context) ([]chat.Message, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ListMessages(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return monitorapi.MessagesFromList(resp), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline. The actor, when
// set, travels in the outgoing metadata.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.actor != nil {
		ctx = withActor(ctx, *c.actor)
	}

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
