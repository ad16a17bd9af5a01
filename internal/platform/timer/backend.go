package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/focus-alarm/internal/domain/alarm"
	"github.com/oshokin/focus-alarm/internal/logger"
	"github.com/oshokin/focus-alarm/internal/platform"
)

// DefaultMaxSleep bounds a single sleep of the trigger loop.
const DefaultMaxSleep = 60 * time.Second

// ErrStopped is returned by Arm once the backend context is done.
var ErrStopped = errors.New("alarm backend stopped")

// Backend implements platform.Backend with an in-memory alarm table.
type Backend struct {
	// ctx bounds the lifetime of the trigger loop and scopes its logger.
	ctx context.Context
	// maxSleep caps a single sleep of the trigger loop.
	maxSleep time.Duration
	// wake nudges the loop after the table changed.
	wake chan struct{}
	// done is closed when the loop exits.
	done chan struct{}

	// mu protects the fields below.
	mu sync.Mutex
	// pending orders armed triggers by fire time.
	pending pendingHeap
	// byID indexes pending triggers by alarm id.
	byID map[alarm.ID]*entry
	// onElapsed receives elapsed triggers.
	onElapsed platform.ElapsedFunc
}

var _ platform.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithMaxSleep overrides DefaultMaxSleep.
func WithMaxSleep(d time.Duration) Option {
	return func(b *Backend) {
		if d > 0 {
			b.maxSleep = d
		}
	}
}

// New starts a backend whose trigger loop runs until ctx is canceled.
func New(ctx context.Context, opts ...Option) *Backend {
	b := &Backend{
		ctx:      logger.WithName(ctx, "alarm-table"),
		maxSleep: DefaultMaxSleep,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		byID:     make(map[alarm.ID]*entry),
	}

	for _, opt := range opts {
		opt(b)
	}

	go b.run()

	return b
}

// Arm schedules req, replacing any trigger pending for req.ID.
func (b *Backend) Arm(_ context.Context, req alarm.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if b.ctx.Err() != nil {
		return ErrStopped
	}

	e := &entry{
		req:   req,
		token: uuid.New(),
		index: -1,
	}

	b.mu.Lock()

	if old, ok := b.byID[req.ID]; ok {
		b.pending.remove(old)
	}

	b.byID[req.ID] = e
	b.pending.push(e)

	b.mu.Unlock()

	logger.DebugKV(b.ctx, "Trigger armed",
		"alarm_id", req.ID, "fire_at", req.FireAt.Format(time.RFC3339Nano), "token", e.token.String())

	b.nudge()

	return nil
}

// Disarm releases the trigger pending for id, if any.
func (b *Backend) Disarm(_ context.Context, id alarm.ID) error {
	b.mu.Lock()

	e, ok := b.byID[id]
	if ok {
		b.pending.remove(e)
		delete(b.byID, id)
	}

	b.mu.Unlock()

	if ok {
		logger.DebugKV(b.ctx, "Trigger disarmed", "alarm_id", id, "token", e.token.String())
		b.nudge()
	}

	return nil
}

// OnElapsed registers fn as the receiver of elapsed triggers.
func (b *Backend) OnElapsed(fn platform.ElapsedFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.onElapsed = fn
}

// Pending returns the fire time of the trigger armed for id.
func (b *Backend) Pending(id alarm.ID) (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.byID[id]
	if !ok {
		return time.Time{}, false
	}

	return e.req.FireAt, true
}

// Len returns the number of pending triggers.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.pending.Len()
}

// Done is closed once the trigger loop has exited.
func (b *Backend) Done() <-chan struct{} {
	return b.done
}

// nudge wakes the loop without blocking.
func (b *Backend) nudge() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// run is the trigger loop.
func (b *Backend) run() {
	defer close(b.done)

	timer := time.NewTimer(b.nextSleep())
	defer timer.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-b.wake:
		case <-timer.C:
			b.fireDue(time.Now())
		}

		timer.Reset(b.nextSleep())
	}
}

// nextSleep returns how long the loop may sleep before the earliest trigger.
func (b *Backend) nextSleep() time.Duration {
	b.mu.Lock()
	next, ok := b.pending.peek()
	b.mu.Unlock()

	if !ok {
		return b.maxSleep
	}

	d := time.Until(next.req.FireAt)

	switch {
	case d < 0:
		return 0
	case d > b.maxSleep:
		return b.maxSleep
	default:
		return d
	}
}

// fireDue removes every trigger due at now and delivers it.
// Delivery happens outside the lock so callbacks may arm again.
func (b *Backend) fireDue(now time.Time) {
	b.mu.Lock()

	var due []*entry

	for {
		next, ok := b.pending.peek()
		if !ok || next.req.FireAt.After(now) {
			break
		}

		e := b.pending.pop()
		delete(b.byID, e.req.ID)
		due = append(due, e)
	}

	fn := b.onElapsed

	b.mu.Unlock()

	for _, e := range due {
		logger.InfoKV(b.ctx, "Trigger elapsed",
			"alarm_id", e.req.ID, "late_by", now.Sub(e.req.FireAt).String(), "token", e.token.String())

		if fn == nil {
			logger.WarnKV(b.ctx, "No elapsed handler registered, trigger dropped", "alarm_id", e.req.ID)
			continue
		}

		fn(b.ctx, e.req)
	}
}
