package bridge

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "focusalarm.v1.BridgeService"

// Full method names.
const (
	ScheduleAlarmMethod             = "/" + ServiceName + "/ScheduleAlarm"
	CancelAlarmMethod               = "/" + ServiceName + "/CancelAlarm"
	StopAlarmSoundMethod            = "/" + ServiceName + "/StopAlarmSound"
	GetCurrentAppMethod             = "/" + ServiceName + "/GetCurrentApp"
	CheckUsageStatsPermissionMethod = "/" + ServiceName + "/CheckUsageStatsPermission"
)

// BridgeServer is the server API of the bridge service.
type BridgeServer interface {
	ScheduleAlarm(ctx context.Context, args *structpb.Struct) (*wrapperspb.BoolValue, error)
	CancelAlarm(ctx context.Context, args *structpb.Struct) (*wrapperspb.BoolValue, error)
	StopAlarmSound(ctx context.Context, req *emptypb.Empty) (*wrapperspb.BoolValue, error)
	GetCurrentApp(ctx context.Context, req *emptypb.Empty) (*wrapperspb.StringValue, error)
	CheckUsageStatsPermission(ctx context.Context, req *emptypb.Empty) (*wrapperspb.BoolValue, error)
}

// RegisterBridgeServer registers srv on s.
func RegisterBridgeServer(s grpc.ServiceRegistrar, srv BridgeServer) {
	s.RegisterService(&bridgeServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodHandler.
func unaryHandler[Req any, Resp any](
	fullMethod string,
	call func(srv BridgeServer, ctx context.Context, req *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(BridgeServer)

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

//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var bridgeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BridgeServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ScheduleAlarm",
			Handler:    unaryHandler(ScheduleAlarmMethod, BridgeServer.ScheduleAlarm),
		},
		{
			MethodName: "CancelAlarm",
			Handler:    unaryHandler(CancelAlarmMethod, BridgeServer.CancelAlarm),
		},
		{
			MethodName: "StopAlarmSound",
			Handler:    unaryHandler(StopAlarmSoundMethod, BridgeServer.StopAlarmSound),
		},
		{
			MethodName: "GetCurrentApp",
			Handler:    unaryHandler(GetCurrentAppMethod, BridgeServer.GetCurrentApp),
		},
		{
			MethodName: "CheckUsageStatsPermission",
			Handler:    unaryHandler(CheckUsageStatsPermissionMethod, BridgeServer.CheckUsageStatsPermission),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "focusalarm/v1/bridge.proto",
}

// BridgeClient is the client API of the bridge service.
type BridgeClient struct {
	// cc is the underlying connection.
	cc grpc.ClientConnInterface
}

// NewBridgeClient returns a client over cc.
func NewBridgeClient(cc grpc.ClientConnInterface) *BridgeClient {
	return &BridgeClient{cc: cc}
}

// ScheduleAlarm calls BridgeService.ScheduleAlarm.
func (c *BridgeClient) ScheduleAlarm(
	ctx context.Context,
	args *structpb.Struct,
	opts ...grpc.CallOption,
) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, ScheduleAlarmMethod, args, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// CancelAlarm calls BridgeService.CancelAlarm.
func (c *BridgeClient) CancelAlarm(
	ctx context.Context,
	args *structpb.Struct,
	opts ...grpc.CallOption,
) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, CancelAlarmMethod, args, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// StopAlarmSound calls BridgeService.StopAlarmSound.
func (c *BridgeClient) StopAlarmSound(ctx context.Context, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, StopAlarmSoundMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// GetCurrentApp calls BridgeService.GetCurrentApp.
func (c *BridgeClient) GetCurrentApp(ctx context.Context, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, GetCurrentAppMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// CheckUsageStatsPermission calls BridgeService.CheckUsageStatsPermission.
func (c *BridgeClient) CheckUsageStatsPermission(
	ctx context.Context,
	opts ...grpc.CallOption,
) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, CheckUsageStatsPermissionMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
