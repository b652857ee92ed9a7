package monitor

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "tempwatch.v1.MonitorService"

const (
	getTemperatureMethod     = "/" + ServiceName + "/GetTemperature"
	watchTemperatureMethod   = "/" + ServiceName + "/WatchTemperature"
	getProfileMethod         = "/" + ServiceName + "/GetProfile"
	updateProfileMethod      = "/" + ServiceName + "/UpdateProfile"
	importProfileImageMethod = "/" + ServiceName + "/ImportProfileImage"
	listMessagesMethod       = "/" + ServiceName + "/ListMessages"
)

// MonitorServiceServer is the server API of the MonitorService.
type MonitorServiceServer interface {
	GetTemperature(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	WatchTemperature(req *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error
	GetProfile(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	UpdateProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ImportProfileImage(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error)
	ListMessages(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
}

// RegisterMonitorServiceServer registers srv on s.
func RegisterMonitorServiceServer(s grpc.ServiceRegistrar, srv MonitorServiceServer) {
	s.RegisterService(&monitorServiceDesc, srv)
}

// unaryHandler builds a grpc.MethodHandler for a unary method.
func unaryHandler[Req any, Resp any](
	fullMethod string,
	call func(srv MonitorServiceServer, ctx context.Context, req *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(MonitorServiceServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(*Req)

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

// watchTemperatureHandler adapts the server-streaming method.
func watchTemperatureHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	server, _ := srv.(MonitorServiceServer)

	return server.WatchTemperature(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

// monitorServiceDesc describes the MonitorService for grpc.Server.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var monitorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MonitorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetTemperature",
			Handler: unaryHandler(getTemperatureMethod,
				func(s MonitorServiceServer, ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
					return s.GetTemperature(ctx, req)
				}),
		},
		{
			MethodName: "GetProfile",
			Handler: unaryHandler(getProfileMethod,
				func(s MonitorServiceServer, ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
					return s.GetProfile(ctx, req)
				}),
		},
		{
			MethodName: "UpdateProfile",
			Handler: unaryHandler(updateProfileMethod,
				func(s MonitorServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
					return s.UpdateProfile(ctx, req)
				}),
		},
		{
			MethodName: "ImportProfileImage",
			Handler: unaryHandler(importProfileImageMethod,
				func(s MonitorServiceServer, ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
					return s.ImportProfileImage(ctx, req)
				}),
		},
		{
			MethodName: "ListMessages",
			Handler: unaryHandler(listMessagesMethod,
				func(s MonitorServiceServer, ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error) {
					return s.ListMessages(ctx, req)
				}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchTemperature",
			Handler:       watchTemperatureHandler,
			ServerStreams: true,
		},
	},
	Metadata: "tempwatch/v1/monitor.proto",
}

// MonitorServiceClient is the client API of the MonitorService.
type MonitorServiceClient interface {
	GetTemperature(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	WatchTemperature(
		ctx context.Context,
		in *emptypb.Empty,
		opts ...grpc.CallOption,
	) (grpc.ServerStreamingClient[structpb.Struct], error)
	GetProfile(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ImportProfileImage(
		ctx context.Context,
		in *wrapperspb.BytesValue,
		opts ...grpc.CallOption,
	) (*structpb.Struct, error)
	ListMessages(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

// monitorServiceClient implements MonitorServiceClient over a connection.
type monitorServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMonitorServiceClient returns a client stub using cc.
//
//nolint:ireturn // Mirrors the shape of generated gRPC clients.
func NewMonitorServiceClient(cc grpc.ClientConnInterface) MonitorServiceClient {
	return &monitorServiceClient{cc: cc}
}

// GetTemperature calls MonitorService.GetTemperature.
func (c *monitorServiceClient) GetTemperature(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getTemperatureMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// WatchTemperature opens the MonitorService.WatchTemperature stream.
//
//nolint:ireturn // Mirrors the shape of generated gRPC clients.
func (c *monitorServiceClient) WatchTemperature(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &monitorServiceDesc.Streams[0], watchTemperatureMethod, opts...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.SendMsg(in); err != nil {
		return nil, err
	}

	if err := x.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

// GetProfile calls MonitorService.GetProfile.
func (c *monitorServiceClient) GetProfile(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getProfileMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// UpdateProfile calls MonitorService.UpdateProfile.
func (c *monitorServiceClient) UpdateProfile(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, updateProfileMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// ImportProfileImage calls MonitorService.ImportProfileImage.
func (c *monitorServiceClient) ImportProfileImage(
	ctx context.Context,
	in *wrapperspb.BytesValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, importProfileImageMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// ListMessages calls MonitorService.ListMessages.
func (c *monitorServiceClient) ListMessages(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, listMessagesMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
