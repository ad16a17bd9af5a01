// Package platform declares the capability the scheduler needs from the host:
// arming and disarming exact one-shot triggers and being told when one elapses.
package platform

import (
	"context"
	"time"

	"github.com/oshokin/focus-alarm/internal/domain/alarm"
)

// ElapsedFunc is invoked once when an armed trigger elapses.
type ElapsedFunc func(ctx context.Context, req alarm.Request)

// Backend is the platform alarm table.
type Backend interface {
	// Arm schedules an exact one-shot trigger, replacing any pending trigger for req.ID.
	Arm(ctx context.Context, req alarm.Request) error
	// Disarm releases the pending trigger for id. It is a no-op when none is pending.
	Disarm(ctx context.Context, id alarm.ID) error
	// OnElapsed registers the callback for elapsed triggers.
	OnElapsed(fn ElapsedFunc)
}

// Inspector is implemented by backends that expose their pending triggers.
type Inspector interface {
	// Pending returns the trigger time for id when one is armed.
	Pending(id alarm.ID) (fireAt time.Time, ok bool)
}
