package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"

	api "github.com/oshokin/focus-alarm/internal/api/grpc/bridge"
	"github.com/oshokin/focus-alarm/internal/config"
	"github.com/oshokin/focus-alarm/internal/domain/alarm"
	"github.com/oshokin/focus-alarm/internal/logger"
	"github.com/oshokin/focus-alarm/internal/notify"
	"github.com/oshokin/focus-alarm/internal/platform/timer"
	"github.com/oshokin/focus-alarm/internal/playback"
	"github.com/oshokin/focus-alarm/internal/repository/preferences"
	"github.com/oshokin/focus-alarm/internal/scheduler"
	"github.com/oshokin/focus-alarm/internal/usage"
	"github.com/oshokin/focus-alarm/internal/wakelock"
)

// Options controls the focus-bridge process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides the configured gRPC address.
	ListenAddress string
	// PreferencesPath overrides the configured preferences location.
	PreferencesPath string
	// LogLevel overrides the configured log level.
	LogLevel string
	// SkipRestore disables restoring the countdown alarm at start.
	SkipRestore bool
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// wakelockReason is shown by the host for the sleep inhibitor.
const wakelockReason = "Pomodoro alarm is ringing"

// Run starts the bridge and blocks until the context is canceled or the server stops.
//
//nolint:funlen // Linear wiring of the daemon components.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "focus-bridge")

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	backend := timer.New(ctx)
	handler := newPlaybackService(ctx, settings.Playback)
	sched := scheduler.New(backend, handler)

	// Ringing alarms must not outlive the daemon.
	defer handler.Stop(context.WithoutCancel(ctx))

	if !opts.SkipRestore {
		restoreCountdown(ctx, sched, settings.Preferences, time.Now())
	}

	source := usage.NewProcessSource(settings.Usage.Ignore)
	go sampleUsage(ctx, source, settings.Usage.SampleInterval)

	monitor := usage.NewMonitor(source, settings.Usage.Window)

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(api.LoggingInterceptor(ctx)))
	api.RegisterBridgeServer(grpcServer, api.NewServer(newService(sched, handler, monitor)))

	logger.InfoKV(ctx, "Focus bridge listening",
		"listen_address", listenAddress,
		"preferences", settings.Preferences.Path,
		"pending_alarms", backend.Len(),
	)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// loadSettings reads the configuration and applies the command-line overrides.
func loadSettings(opts *Options) (*config.Config, error) {
	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.PreferencesPath != "" {
		settings.Preferences.Path = opts.PreferencesPath
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}

	if err := config.Validate(settings); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	return settings, nil
}

// newPlaybackService builds the playback handler from the host's tools,
// degrading to a silent player and logged notifications when they are missing.
func newPlaybackService(ctx context.Context, settings config.Playback) *playback.Service {
	var player playback.Player = playback.LogPlayer{}

	commandPlayer, err := playback.NewCommandPlayer(settings.PlayerCommand)
	if err != nil {
		logger.WarnKV(ctx, "Audio player unavailable", "error", err)
	} else {
		player = commandPlayer
	}

	lock := wakelock.New(wakelock.NewSystemInhibitor("focus-bridge"), wakelockReason)

	return playback.NewService(
		player,
		notify.NewSystemNotifier(ctx),
		lock,
		playback.WithDefaultSound(settings.DefaultSound),
		playback.WithWakelockTimeout(settings.WakelockTimeout),
	)
}

// restorer re-arms the countdown alarm from a snapshot.
type restorer interface {
	Restore(ctx context.Context, snapshot alarm.Snapshot, now time.Time)
}

// restoreCountdown re-arms the countdown alarm saved by the host application.
// Failures are logged and never stop the daemon.
func restoreCountdown(ctx context.Context, sched restorer, prefs config.Preferences, now time.Time) {
	ctx = logger.WithKV(ctx, "preferences", prefs.Path, "driver", prefs.Driver)

	store, err := preferences.Open(ctx, prefs.Driver, prefs.Path)
	if errors.Is(err, preferences.ErrNotFound) {
		logger.Info(ctx, "No saved countdown to restore")

		return
	}

	if err != nil {
		logger.WarnKV(ctx, "Failed to open preferences", "error", err)

		return
	}

	defer func() {
		if err := store.Close(); err != nil {
			logger.WarnKV(ctx, "Failed to close preferences", "error", err)
		}
	}()

	snapshot, err := preferences.ReadSnapshot(ctx, store, prefs.KeyPrefix)
	if errors.Is(err, preferences.ErrNotFound) {
		logger.Info(ctx, "No saved countdown to restore")

		return
	}

	if err != nil {
		logger.WarnKV(ctx, "Failed to read saved countdown", "error", err)

		return
	}

	logger.InfoKV(ctx, "Restoring countdown",
		"is_running", snapshot.IsRunning,
		"target", snapshot.Target,
		"phase", snapshot.Phase.String(),
	)

	sched.Restore(ctx, snapshot, now)
}

// usageSampler refreshes the usage table.
type usageSampler interface {
	Sample(ctx context.Context) error
}

// sampleUsage samples the process table until ctx is canceled.
func sampleUsage(ctx context.Context, source usageSampler, interval time.Duration) {
	if err := source.Sample(ctx); err != nil {
		logger.WarnKV(ctx, "Usage sampling failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := source.Sample(ctx); err != nil {
				logger.DebugKV(ctx, "Usage sampling failed", "error", err)
			}
		}
	}
}

// resolveListenAddress determines the listen address for the gRPC server.
// An override wins; otherwise the configured address is used as-is so the
// daemon stays on loopback unless configured otherwise.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}
