package monitor

import (
	"bytes"
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/tempwatch/internal/domain/chat"
	"github.com/oshokin/tempwatch/internal/domain/profile"
	"github.com/oshokin/tempwatch/internal/domain/temperature"
	"github.com/oshokin/tempwatch/internal/service/avatar"
)

// Monitor is the temperature side the transport depends on.
type Monitor interface {
	Latest() temperature.Reading
	Subscribe(ctx context.Context) <-chan temperature.Reading
}

// Preferences is the profile side the transport depends on.
type Preferences interface {
	Profile() profile.UserProfile
	Set(ctx context.Context, field profile.Field, value string) error
}

// Avatars imports profile pictures.
type Avatars interface {
	Import(ctx context.Context, r io.Reader) (string, error)
}

// Server implements MonitorServiceServer.
type Server struct {
	monitor     Monitor
	preferences Preferences
	avatars     Avatars
}

// NewServer wires the provided services into a gRPC handler.
func NewServer(monitor Monitor, preferences Preferences, avatars Avatars) *Server {
	return &Server{
		monitor:     monitor,
		preferences: preferences,
		avatars:     avatars,
	}
}

// GetTemperature returns the latest reading.
func (s *Server) GetTemperature(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return ReadingToStruct(s.monitor.Latest()), nil
}

// WatchTemperature streams the current reading and every later one until
// the client goes away.
func (s *Server) WatchTemperature(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	for reading := range s.monitor.Subscribe(stream.Context()) {
		if err := stream.Send(ReadingToStruct(reading)); err != nil {
			return err
		}
	}

	return nil
}

// GetProfile returns the current profile.
func (s *Server) GetProfile(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return ProfileToStruct(s.preferences.Profile()), nil
}

// UpdateProfile sets one profile field and returns the updated profile.
func (s *Server) UpdateProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	fields := req.GetFields()

	field, err := profile.ParseField(fields[KeyField].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	value, ok := fields[KeyValue].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "value must be a string")
	}

	if err = s.preferences.Set(ctx, field, value.StringValue); err != nil {
		return nil, toStatus(err)
	}

	return ProfileToStruct(s.preferences.Profile()), nil
}

// ImportProfileImage installs the uploaded picture and points the profile at it.
func (s *Server) ImportProfileImage(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	if s.avatars == nil {
		return nil, status.Error(codes.Unimplemented, "profile picture import is disabled")
	}

	path, err := s.avatars.Import(ctx, bytes.NewReader(req.GetValue()))
	if err != nil {
		return nil, toStatus(err)
	}

	if err = s.preferences.Set(ctx, profile.FieldProfileImage, path); err != nil {
		return nil, toStatus(err)
	}

	return ProfileToStruct(s.preferences.Profile()), nil
}

// ListMessages returns the conversation personalised for the current profile.
func (s *Server) ListMessages(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return MessagesToList(chat.Personalize(chat.Sample(), s.preferences.Profile())), nil
}

// toStatus maps service errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, profile.ErrUnknownField),
		errors.Is(err, profile.ErrEmptyUsername),
		errors.Is(err, avatar.ErrEmpty),
		errors.Is(err, avatar.ErrNotImage),
		errors.Is(err, avatar.ErrTooLarge):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "unable to persist preferences")
	}
}
