package alarm

import "time"

// Phase is the countdown phase persisted by the host application.
type Phase int

const (
	// PhaseWork is a focus interval.
	PhaseWork Phase = iota
	// PhaseBreak is a rest interval.
	PhaseBreak
)

const (
	// WorkAlarmID is the fixed alarm id used for the end of a work phase.
	WorkAlarmID ID = 100
	// BreakAlarmID is the fixed alarm id used for the end of a break phase.
	BreakAlarmID ID = 101
)

// ParsePhase maps the persisted phase value to a Phase.
// Unknown values report false; callers pick the fallback.
func ParsePhase(s string) (Phase, bool) {
	switch s {
	case "work":
		return PhaseWork, true
	case "break":
		return PhaseBreak, true
	default:
		return PhaseBreak, false
	}
}

// String returns the persisted representation of the phase.
func (p Phase) String() string {
	if p == PhaseWork {
		return "work"
	}

	return "break"
}

// AlarmID returns the fixed alarm id of the phase.
func (p Phase) AlarmID() ID {
	if p == PhaseWork {
		return WorkAlarmID
	}

	return BreakAlarmID
}

// Snapshot is a read-only view of the host's persisted countdown state.
type Snapshot struct {
	// IsRunning reports whether a countdown is in progress.
	IsRunning bool
	// Target is the absolute end of the current phase.
	Target time.Time
	// Phase is the current countdown phase.
	Phase Phase
}

// Pending reports whether the snapshot still describes a future alarm at now.
func (s *Snapshot) Pending(now time.Time) bool {
	return s.IsRunning && s.Target.After(now)
}
