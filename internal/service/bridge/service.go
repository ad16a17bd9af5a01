package bridge

import (
	"context"

	api "github.com/oshokin/focus-alarm/internal/api/grpc/bridge"
	"github.com/oshokin/focus-alarm/internal/domain/alarm"
	"github.com/oshokin/focus-alarm/internal/logger"
	"github.com/oshokin/focus-alarm/internal/playback"
)

// alarmScheduler is the part of the scheduler the bridge calls into.
type alarmScheduler interface {
	Schedule(ctx context.Context, req alarm.Request) bool
	Cancel(ctx context.Context, id alarm.ID) bool
}

// usageMonitor answers foreground-application queries.
type usageMonitor interface {
	CurrentApp(ctx context.Context) (string, bool)
	HasPermission(ctx context.Context) bool
}

// service implements the transport-facing bridge operations.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// scheduler arms and disarms alarms.
	scheduler alarmScheduler
	// handler receives the stop signal.
	handler playback.Handler
	// usage reads the foreground application.
	usage usageMonitor
}

var _ api.Service = (*service)(nil)

// newService wires the bridge operations.
func newService(scheduler alarmScheduler, handler playback.Handler, usage usageMonitor) *service {
	return &service{
		scheduler: scheduler,
		handler:   handler,
		usage:     usage,
	}
}

// ScheduleAlarm arms req and reports whether the platform accepted it.
func (s *service) ScheduleAlarm(ctx context.Context, req alarm.Request) bool {
	ok := s.scheduler.Schedule(ctx, req)

	logger.InfoKV(ctx, "Alarm schedule requested",
		"alarm_id", req.ID,
		"fire_at", req.FireAt,
		"has_sound", req.HasSound(),
		"accepted", ok,
	)

	return ok
}

// CancelAlarm disarms id.
func (s *service) CancelAlarm(ctx context.Context, id alarm.ID) bool {
	ok := s.scheduler.Cancel(ctx, id)

	logger.InfoKV(ctx, "Alarm cancel requested", "alarm_id", id, "accepted", ok)

	return ok
}

// StopAlarmSound forwards the stop signal to playback. It always succeeds.
func (s *service) StopAlarmSound(ctx context.Context) bool {
	s.handler.Stop(ctx)

	return true
}

// CurrentApp returns the most recently used application.
func (s *service) CurrentApp(ctx context.Context) (string, bool) {
	return s.usage.CurrentApp(ctx)
}

// HasUsagePermission reports whether usage can be read.
func (s *service) HasUsagePermission(ctx context.Context) bool {
	return s.usage.HasPermission(ctx)
}
