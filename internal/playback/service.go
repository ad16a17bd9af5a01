package playback

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/oshokin/focus-alarm/internal/domain/alarm"
	"github.com/oshokin/focus-alarm/internal/logger"
	"github.com/oshokin/focus-alarm/internal/notify"
	"github.com/oshokin/focus-alarm/internal/wakelock"
)

// alarmNotification is shown while the alarm sound plays.
//
//nolint:gochecknoglobals // Fixed notification content.
var alarmNotification = notify.Notification{
	Title:    "Pomodoro",
	Body:     "Time's up",
	Category: "alarm",
	StopHint: "Stop: focus-alarmctl stop",
}

// Service is the foreground alarm playback handler.
type Service struct {
	// player loops the alarm sound.
	player Player
	// notifier posts the foreground notification.
	notifier notify.Notifier
	// lock keeps the host awake while playback starts.
	lock *wakelock.Lock
	// defaultSound is used when no sound is requested or the requested one fails.
	defaultSound string
	// wakelockTimeout bounds how long the wakelock is held.
	wakelockTimeout time.Duration

	// mu serializes start and stop signals.
	mu sync.Mutex
	// current is the alarm being played.
	current alarm.ID
	// playing reports whether a sound is looping.
	playing bool
	// inForeground reports whether the notification is posted.
	inForeground bool
}

var _ Handler = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithDefaultSound overrides DefaultSound.
func WithDefaultSound(locator string) Option {
	return func(s *Service) {
		if locator != "" {
			s.defaultSound = locator
		}
	}
}

// WithWakelockTimeout overrides wakelock.DefaultTimeout.
func WithWakelockTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.wakelockTimeout = timeout
		}
	}
}

// NewService assembles the playback service.
func NewService(player Player, notifier notify.Notifier, lock *wakelock.Lock, opts ...Option) *Service {
	s := &Service{
		player:          player,
		notifier:        notifier,
		lock:            lock,
		defaultSound:    DefaultSound(),
		wakelockTimeout: wakelock.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start enters the foreground and loops the alarm sound for id.
func (s *Service) Start(ctx context.Context, id alarm.ID, soundURI string) {
	ctx = logger.WithKV(logger.WithName(ctx, "playback"), "alarm_id", id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stopPlayingLocked(); err != nil {
		logger.WarnKV(ctx, "Previous playback did not stop cleanly", "error", err)
	}

	if err := s.notifier.Show(ctx, alarmNotification); err != nil {
		logger.WarnKV(ctx, "Alarm notification not shown", "error", err)
	}

	s.inForeground = true

	if err := s.lock.Acquire(ctx, s.wakelockTimeout); err != nil {
		logger.WarnKV(ctx, "Wakelock not acquired", "error", err)
	}

	if err := s.play(ctx, soundURI, s.defaultSound); err != nil {
		logger.WarnKV(ctx, "Requested sound failed, falling back to default", "sound", soundURI, "error", err)

		if err = s.play(ctx, "", s.defaultSound); err != nil {
			logger.ErrorKV(ctx, "Default alarm sound failed", "error", err)
			return
		}
	}

	s.current = id
	s.playing = true

	logger.Info(ctx, "Alarm sound playing")
}

// Stop ends playback and leaves the foreground. Stopping an idle service is a no-op.
func (s *Service) Stop(ctx context.Context) {
	ctx = logger.WithName(ctx, "playback")

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.stopPlayingLocked()

	if s.inForeground {
		err = multierr.Append(err, s.notifier.Dismiss(ctx))
		s.inForeground = false
	}

	if err != nil {
		logger.WarnKV(ctx, "Alarm stop was incomplete", "error", err)
		return
	}

	logger.Info(ctx, "Alarm sound stopped")
}

// Playing returns the alarm currently playing.
func (s *Service) Playing() (alarm.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current, s.playing
}

// play resolves locator and starts the player on it.
func (s *Service) play(ctx context.Context, locator, fallback string) error {
	source, err := ResolveSound(locator, fallback)
	if err != nil {
		return err
	}

	return s.player.Start(ctx, source)
}

// stopPlayingLocked stops the player and releases the wakelock. s.mu must be held.
func (s *Service) stopPlayingLocked() error {
	err := multierr.Combine(
		s.player.Stop(),
		s.lock.Release(),
	)

	s.playing = false
	s.current = 0

	return err
}
