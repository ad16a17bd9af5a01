package alarm

import (
	"errors"
	"fmt"
	"time"
)

// ID identifies a logical alarm. Callers reuse the same ID across
// schedule and cancel cycles of the same alarm.
type ID int

// Status is the lifecycle state of a single alarm id.
type Status int

const (
	// StatusUnarmed means no trigger is pending for the id.
	StatusUnarmed Status = iota
	// StatusArmed means exactly one trigger is pending for the id.
	StatusArmed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusArmed:
		return "armed"
	case StatusUnarmed:
		return "unarmed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ErrNoFireTime is returned when a request has no trigger time.
var ErrNoFireTime = errors.New("fire time is not set")

// Request describes a one-shot trigger for an alarm id.
type Request struct {
	// ID is the alarm identity; arming an armed id replaces its trigger.
	ID ID
	// FireAt is the absolute wall-clock time of the trigger.
	FireAt time.Time
	// SoundURI is passed through to playback. Empty means "use the default sound".
	SoundURI string
}

// Validate checks that the request can be armed.
func (r *Request) Validate() error {
	if r.FireAt.IsZero() {
		return ErrNoFireTime
	}

	return nil
}

// HasSound reports whether the request carries an explicit sound locator.
func (r *Request) HasSound() bool {
	return r.SoundURI != ""
}

// FromEpochMillis converts UTC epoch milliseconds to a time without a monotonic reading.
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// EpochMillis converts t to UTC epoch milliseconds.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}
