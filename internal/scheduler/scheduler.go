package scheduler

import (
	"context"
	"time"

	"github.com/oshokin/focus-alarm/internal/domain/alarm"
	"github.com/oshokin/focus-alarm/internal/logger"
	"github.com/oshokin/focus-alarm/internal/platform"
	"github.com/oshokin/focus-alarm/internal/playback"
)

// Scheduler arms, disarms and restores alarms on a platform backend.
type Scheduler struct {
	// backend is the platform alarm table.
	backend platform.Backend
	// handler receives the start signal of elapsed alarms.
	handler playback.Handler
}

// New wires the scheduler to backend and registers it for elapsed triggers.
func New(backend platform.Backend, handler playback.Handler) *Scheduler {
	s := &Scheduler{
		backend: backend,
		handler: handler,
	}

	backend.OnElapsed(func(ctx context.Context, req alarm.Request) {
		s.OnFire(ctx, req.ID, req.SoundURI)
	})

	return s
}

// Schedule arms an exact one-shot trigger for req, replacing a pending one for
// the same id. It reports false when the platform rejects the request.
func (s *Scheduler) Schedule(ctx context.Context, req alarm.Request) (ok bool) {
	ctx = logger.WithKV(ctx, "alarm_id", req.ID)

	defer recoverFailure(ctx, "schedule", &ok)

	if err := s.backend.Arm(ctx, req); err != nil {
		logger.WarnKV(ctx, "Alarm not scheduled", "error", err)

		return false
	}

	logger.InfoKV(ctx, "Alarm scheduled",
		"fire_at", req.FireAt.Format(time.RFC3339), "custom_sound", req.HasSound())

	return true
}

// Cancel disarms the trigger pending for id. Cancelling an unarmed id succeeds.
func (s *Scheduler) Cancel(ctx context.Context, id alarm.ID) (ok bool) {
	ctx = logger.WithKV(ctx, "alarm_id", id)

	defer recoverFailure(ctx, "cancel", &ok)

	if err := s.backend.Disarm(ctx, id); err != nil {
		logger.WarnKV(ctx, "Alarm not cancelled", "error", err)

		return false
	}

	logger.InfoKV(ctx, "Alarm cancelled")

	return true
}

// Restore re-arms the alarm of a running countdown after a restart.
// Nothing is armed when the countdown is stopped or its target is not after now.
// Restore is best-effort and never fails.
func (s *Scheduler) Restore(ctx context.Context, snapshot alarm.Snapshot, now time.Time) {
	ctx = logger.WithName(ctx, "restore")

	defer recoverFailure(ctx, "restore", nil)

	if !snapshot.IsRunning {
		logger.Debug(ctx, "No running countdown, nothing to restore")
		return
	}

	if !snapshot.Target.After(now) {
		logger.InfoKV(ctx, "Countdown already elapsed, skipping late alarm",
			"target", snapshot.Target.Format(time.RFC3339), "phase", snapshot.Phase.String())

		return
	}

	req := alarm.Request{
		ID:     snapshot.Phase.AlarmID(),
		FireAt: snapshot.Target,
	}

	if s.Schedule(ctx, req) {
		logger.InfoKV(ctx, "Countdown alarm restored", "phase", snapshot.Phase.String())
	}
}

// OnFire hands an elapsed alarm to the playback handler. It does not wait for
// or track playback.
func (s *Scheduler) OnFire(ctx context.Context, id alarm.ID, soundURI string) {
	ctx = logger.WithKV(ctx, "alarm_id", id)

	defer recoverFailure(ctx, "fire", nil)

	if s.handler == nil {
		logger.Warn(ctx, "Alarm fired without a playback handler")
		return
	}

	logger.Info(ctx, "Alarm fired, starting playback")

	s.handler.Start(ctx, id, soundURI)
}

// Status reports whether a trigger is pending for id. Backends that cannot be
// inspected always report StatusUnarmed.
func (s *Scheduler) Status(id alarm.ID) alarm.Status {
	inspector, ok := s.backend.(platform.Inspector)
	if !ok {
		return alarm.StatusUnarmed
	}

	if _, armed := inspector.Pending(id); armed {
		return alarm.StatusArmed
	}

	return alarm.StatusUnarmed
}

// recoverFailure turns a panic from the platform into a logged failure.
func recoverFailure(ctx context.Context, operation string, ok *bool) {
	r := recover()
	if r == nil {
		return
	}

	logger.ErrorKV(ctx, "Platform call panicked", "operation", operation, "panic", r)

	if ok != nil {
		*ok = false
	}
}
