package wakelock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/focus-alarm/internal/logger"
)

// DefaultTimeout is the expiry used when Acquire is given a non-positive timeout.
const DefaultTimeout = 60 * time.Second

// ReleaseFunc ends an inhibition.
type ReleaseFunc func() error

// Inhibitor blocks host sleep for at most d.
type Inhibitor interface {
	Inhibit(ctx context.Context, reason string, d time.Duration) (ReleaseFunc, error)
}

// Lock is a non reference-counted wakelock with mandatory expiry.
type Lock struct {
	// inhibitor performs the platform-specific inhibition.
	inhibitor Inhibitor
	// reason is reported to the platform.
	reason string

	// mu protects the fields below.
	mu sync.Mutex
	// release ends the current inhibition.
	release ReleaseFunc
	// expiry releases the lock when the timeout elapses.
	expiry *time.Timer
	// generation invalidates expiry callbacks of earlier acquisitions.
	generation uint64
	// held reports whether an inhibition is active.
	held bool
}

// New returns an unheld lock.
func New(inhibitor Inhibitor, reason string) *Lock {
	return &Lock{
		inhibitor: inhibitor,
		reason:    reason,
	}
}

// Acquire inhibits sleep for at most timeout. It is a no-op while the lock is held.
func (l *Lock) Acquire(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		return nil
	}

	release, err := l.inhibitor.Inhibit(ctx, l.reason, timeout)
	if err != nil {
		return fmt.Errorf("inhibit sleep: %w", err)
	}

	l.generation++
	generation := l.generation

	l.release = release
	l.held = true
	l.expiry = time.AfterFunc(timeout, func() {
		l.expire(ctx, generation)
	})

	logger.DebugKV(ctx, "Wakelock acquired", "timeout", timeout.String())

	return nil
}

// Release ends the inhibition. Releasing an unheld lock is a no-op.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.held {
		return nil
	}

	l.expiry.Stop()

	return l.releaseLocked()
}

// Held reports whether the lock is currently held.
func (l *Lock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.held
}

// expire releases the lock acquired as generation if it is still held.
func (l *Lock) expire(ctx context.Context, generation uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.held || l.generation != generation {
		return
	}

	logger.Warn(ctx, "Wakelock expired before release")

	if err := l.releaseLocked(); err != nil {
		logger.WarnKV(ctx, "Wakelock release failed", "error", err)
	}
}

// releaseLocked calls the release function. l.mu must be held.
func (l *Lock) releaseLocked() error {
	release := l.release

	l.release = nil
	l.held = false

	if release == nil {
		return nil
	}

	if err := release(); err != nil {
		return fmt.Errorf("release wakelock: %w", err)
	}

	return nil
}
