package bridge

import (
	"context"
	"errors"
	"fmt"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/focus-alarm/internal/domain/alarm"
)

// Argument keys of the method-call structs.
const (
	ArgID         = "id"
	ArgTimeMillis = "timeMillis"
	ArgURI        = "uri"
)

// errInvalidArgument marks malformed method-call arguments.
var errInvalidArgument = errors.New("invalid argument")

// Service abstracts the operations the transport layer depends on.
type Service interface {
	ScheduleAlarm(ctx context.Context, req alarm.Request) bool
	CancelAlarm(ctx context.Context, id alarm.ID) bool
	StopAlarmSound(ctx context.Context) bool
	CurrentApp(ctx context.Context) (string, bool)
	HasUsagePermission(ctx context.Context) bool
}

// Server implements BridgeServer on top of a Service.
type Server struct {
	// service provides the bridge operations.
	service Service
}

var _ BridgeServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// ScheduleAlarm arms an alarm. Platform failures are reported as false, not as errors.
func (s *Server) ScheduleAlarm(ctx context.Context, args *structpb.Struct) (*wrapperspb.BoolValue, error) {
	if args == nil {
		return nil, status.Error(codes.InvalidArgument, "arguments are required")
	}

	id, err := intArg(args, ArgID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	timeMillis, err := intArg(args, ArgTimeMillis)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	uri, err := optionalStringArg(args, ArgURI)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	req := alarm.Request{
		ID:       alarm.ID(id),
		FireAt:   alarm.FromEpochMillis(timeMillis),
		SoundURI: uri,
	}

	return wrapperspb.Bool(s.service.ScheduleAlarm(ctx, req)), nil
}

// CancelAlarm disarms an alarm.
func (s *Server) CancelAlarm(ctx context.Context, args *structpb.Struct) (*wrapperspb.BoolValue, error) {
	if args == nil {
		return nil, status.Error(codes.InvalidArgument, "arguments are required")
	}

	id, err := intArg(args, ArgID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	return wrapperspb.Bool(s.service.CancelAlarm(ctx, alarm.ID(id))), nil
}

// StopAlarmSound sends the stop signal to playback.
func (s *Server) StopAlarmSound(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(s.service.StopAlarmSound(ctx)), nil
}

// GetCurrentApp returns the foreground application or an empty string.
func (s *Server) GetCurrentApp(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	app, ok := s.service.CurrentApp(ctx)
	if !ok {
		return wrapperspb.String(""), nil
	}

	return wrapperspb.String(app), nil
}

// CheckUsageStatsPermission reports whether usage can be read.
func (s *Server) CheckUsageStatsPermission(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(s.service.HasUsagePermission(ctx)), nil
}

// intArg reads an integral number argument. A missing or null argument is zero.
func intArg(args *structpb.Struct, key string) (int64, error) {
	v, ok := args.GetFields()[key]
	if !ok {
		return 0, nil
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, nil
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %q must be an integer, got %v", errInvalidArgument, key, n)
		}

		return int64(n), nil
	default:
		return 0, fmt.Errorf("%w: %q must be a number", errInvalidArgument, key)
	}
}

// optionalStringArg reads a string argument. A missing or null argument is empty.
func optionalStringArg(args *structpb.Struct, key string) (string, error) {
	v, ok := args.GetFields()[key]
	if !ok {
		return "", nil
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return "", nil
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	default:
		return "", fmt.Errorf("%w: %q must be a string", errInvalidArgument, key)
	}
}

// ScheduleArgs builds the ScheduleAlarm arguments for req.
func ScheduleArgs(req alarm.Request) *structpb.Struct {
	fields := map[string]*structpb.Value{
		ArgID:         structpb.NewNumberValue(float64(req.ID)),
		ArgTimeMillis: structpb.NewNumberValue(float64(alarm.EpochMillis(req.FireAt))),
		ArgURI:        structpb.NewNullValue(),
	}

	if req.HasSound() {
		fields[ArgURI] = structpb.NewStringValue(req.SoundURI)
	}

	return &structpb.Struct{Fields: fields}
}

// CancelArgs builds the CancelAlarm arguments for id.
func CancelArgs(id alarm.ID) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			ArgID: structpb.NewNumberValue(float64(id)),
		},
	}
}
