package bridge

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oshokin/focus-alarm/internal/logger"
)

// ActorMetadataKey carries "user@host" of the caller for audit logs.
const ActorMetadataKey = "x-focus-actor"

// LoggingInterceptor scopes the request logger with the method and caller and
// logs the outcome of every call.
func LoggingInterceptor(base context.Context) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = logger.ToContext(ctx, logger.FromContext(base))
		ctx = logger.WithKV(ctx, "method", info.FullMethod, "actor", actorFromIncoming(ctx))

		started := time.Now()
		resp, err := handler(ctx, req)

		if err != nil {
			logger.WarnKV(ctx, "Bridge call failed", "code", status.Code(err).String(), "error", err)
		} else {
			logger.DebugKV(ctx, "Bridge call served", "duration", time.Since(started).String())
		}

		return resp, err
	}
}

// ActorInterceptor attaches the caller identity to every outgoing call.
func ActorInterceptor(actor string) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		if actor != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, ActorMetadataKey, actor)
		}

		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// actorFromIncoming returns the caller identity or "unknown".
func actorFromIncoming(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "unknown"
	}

	values := md.Get(ActorMetadataKey)
	if len(values) == 0 || values[0] == "" {
		return "unknown"
	}

	return values[0]
}
