package ctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/focus-alarm/internal/config"
	"github.com/oshokin/focus-alarm/internal/domain/alarm"
	"github.com/oshokin/focus-alarm/internal/logger"
	"github.com/oshokin/focus-alarm/internal/service/common"
)

// Options configures the connection to the bridge daemon.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Out receives the command output; os.Stdout when nil.
	Out io.Writer
}

// bridgeClient is the part of common.Client the commands use.
type bridgeClient interface {
	ScheduleAlarm(ctx context.Context, req alarm.Request) (bool, error)
	CancelAlarm(ctx context.Context, id alarm.ID) (bool, error)
	StopAlarmSound(ctx context.Context) (bool, error)
	CurrentApp(ctx context.Context) (string, error)
	UsagePermission(ctx context.Context) (bool, error)
}

// Action is a single bridge call whose result is written to out.
type Action func(ctx context.Context, client bridgeClient, out io.Writer) error

var (
	// ErrRejected is returned when the bridge refuses the request.
	ErrRejected = errors.New("request rejected by the bridge")
	// ErrNoFireTime is returned when neither an absolute nor a relative fire time is set.
	ErrNoFireTime = errors.New("either --at or --in must be set")
	// ErrConflictingFireTime is returned when both fire time forms are set.
	ErrConflictingFireTime = errors.New("--at and --in are mutually exclusive")
)

// Run connects to the bridge and performs action.
func Run(ctx context.Context, opts *Options, action Action) error {
	ctx = logger.WithName(ctx, "focus-alarmctl")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// The actor only feeds the daemon's audit log, so detection failures are not fatal.
	actor, err := common.DetectActor()
	if err != nil {
		logger.DebugKV(ctx, "Cannot detect actor", "error", err)
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout), common.WithActor(actor))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Calling bridge", "server_address", serverAddress)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return action(ctx, client, out)
}

// Schedule arms req on the bridge.
func Schedule(req alarm.Request) Action {
	return func(ctx context.Context, client bridgeClient, out io.Writer) error {
		if err := req.Validate(); err != nil {
			return err
		}

		ok, err := client.ScheduleAlarm(ctx, req)
		if err != nil {
			return err
		}

		if !ok {
			return fmt.Errorf("schedule alarm %d: %w", req.ID, ErrRejected)
		}

		_, err = fmt.Fprintf(out, "alarm %d scheduled at %s\n", req.ID, req.FireAt.Local().Format(time.RFC3339))

		return err
	}
}

// Cancel disarms id on the bridge.
func Cancel(id alarm.ID) Action {
	return func(ctx context.Context, client bridgeClient, out io.Writer) error {
		ok, err := client.CancelAlarm(ctx, id)
		if err != nil {
			return err
		}

		if !ok {
			return fmt.Errorf("cancel alarm %d: %w", id, ErrRejected)
		}

		_, err = fmt.Fprintf(out, "alarm %d canceled\n", id)

		return err
	}
}

// StopSound silences the ringing alarm.
func StopSound() Action {
	return func(ctx context.Context, client bridgeClient, out io.Writer) error {
		if _, err := client.StopAlarmSound(ctx); err != nil {
			return err
		}

		_, err := fmt.Fprintln(out, "alarm sound stopped")

		return err
	}
}

// CurrentApp prints the most recently used application, or nothing when unknown.
func CurrentApp() Action {
	return func(ctx context.Context, client bridgeClient, out io.Writer) error {
		app, err := client.CurrentApp(ctx)
		if err != nil {
			return err
		}

		if app == "" {
			return nil
		}

		_, err = fmt.Fprintln(out, app)

		return err
	}
}

// Permission prints whether the bridge can read application usage.
func Permission() Action {
	return func(ctx context.Context, client bridgeClient, out io.Writer) error {
		granted, err := client.UsagePermission(ctx)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(out, granted)

		return err
	}
}

// FireTime picks the alarm time from an RFC 3339 timestamp or a delay from now.
func FireTime(at string, in time.Duration, now time.Time) (time.Time, error) {
	switch {
	case at != "" && in != 0:
		return time.Time{}, ErrConflictingFireTime
	case at != "":
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse --at: %w", err)
		}

		return t, nil
	case in != 0:
		return now.Add(in), nil
	default:
		return time.Time{}, ErrNoFireTime
	}
}
