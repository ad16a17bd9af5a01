//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/oshokin/focus-alarm/internal/api/grpc/bridge"
	"github.com/oshokin/focus-alarm/internal/config"
	"github.com/oshokin/focus-alarm/internal/domain/alarm"
	"github.com/oshokin/focus-alarm/internal/version"
)

// Client wraps the bridge gRPC client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the bridge daemon.
	conn *grpc.ClientConn
	// api is the bridge service client.
	api *bridge.BridgeClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor identifies the caller in the daemon's logs.
	actor string
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor sets the caller identity sent with every call.
func WithActor(actor string) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the bridge daemon.
// The daemon listens on loopback by default, so the transport is insecure.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	conn, err := grpc.NewClient(
		address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(bridge.ActorInterceptor(client.actor)),
		grpc.WithUserAgent(version.UserAgent("focus-alarmctl")),
	)
	if err != nil {
		return nil, fmt.Errorf("dial bridge: %w", err)
	}

	client.conn = conn
	client.api = bridge.NewBridgeClient(conn)

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// ScheduleAlarm asks the bridge to arm req and returns its verdict.
func (c *Client) ScheduleAlarm(ctx context.Context, req alarm.Request) (bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ScheduleAlarm(callCtx, bridge.ScheduleArgs(req))
	if err != nil {
		return false, fmt.Errorf("schedule alarm: %w", err)
	}

	return resp.GetValue(), nil
}

// CancelAlarm asks the bridge to disarm id.
func (c *Client) CancelAlarm(ctx context.Context, id alarm.ID) (bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.CancelAlarm(callCtx, bridge.CancelArgs(id))
	if err != nil {
		return false, fmt.Errorf("cancel alarm: %w", err)
	}

	return resp.GetValue(), nil
}

// StopAlarmSound stops the ringing alarm, if any.
func (c *Client) StopAlarmSound(ctx context.Context) (bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.StopAlarmSound(callCtx)
	if err != nil {
		return false, fmt.Errorf("stop alarm sound: %w", err)
	}

	return resp.GetValue(), nil
}

// CurrentApp returns the most recently used application, or "" when unknown.
func (c *Client) CurrentApp(ctx context.Context) (string, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetCurrentApp(callCtx)
	if err != nil {
		return "", fmt.Errorf("get current app: %w", err)
	}

	return resp.GetValue(), nil
}

// UsagePermission reports whether the bridge can read application usage.
func (c *Client) UsagePermission(ctx context.Context) (bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.CheckUsageStatsPermission(callCtx)
	if err != nil {
		return false, fmt.Errorf("check usage permission: %w", err)
	}

	return resp.GetValue(), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
