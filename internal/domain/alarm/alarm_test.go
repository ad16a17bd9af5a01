package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestParsePhase verifies known phases and the false report for unknown values.
func TestParsePhase(t *testing.T) {
	t.Parallel()

	p, ok := ParsePhase("work")
	require.True(t, ok)
	require.Equal(t, PhaseWork, p)

	p, ok = ParsePhase("break")
	require.True(t, ok)
	require.Equal(t, PhaseBreak, p)

	for _, raw := range []string{"", "WORK", "long_break", "pause"} {
		p, ok = ParsePhase(raw)
		require.False(t, ok, raw)
		require.Equal(t, PhaseBreak, p, raw)
	}
}

// TestPhaseAlarmID checks the fixed id mapping and string form.
func TestPhaseAlarmID(t *testing.T) {
	t.Parallel()

	require.Equal(t, ID(100), PhaseWork.AlarmID())
	require.Equal(t, ID(101), PhaseBreak.AlarmID())
	require.Equal(t, "work", PhaseWork.String())
	require.Equal(t, "break", PhaseBreak.String())
}

// TestSnapshotPending covers the not-running, elapsed and future cases.
func TestSnapshotPending(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	s := Snapshot{IsRunning: false, Target: now.Add(time.Minute)}
	require.False(t, s.Pending(now))

	s = Snapshot{IsRunning: true, Target: now}
	require.False(t, s.Pending(now))

	s = Snapshot{IsRunning: true, Target: now.Add(-time.Second)}
	require.False(t, s.Pending(now))

	s = Snapshot{IsRunning: true, Target: now.Add(time.Millisecond)}
	require.True(t, s.Pending(now))
}

// TestRequestValidate ensures a zero fire time is rejected.
func TestRequestValidate(t *testing.T) {
	t.Parallel()

	r := Request{ID: 5}
	require.ErrorIs(t, r.Validate(), ErrNoFireTime)

	r.FireAt = FromEpochMillis(1_760_000_000_000)
	require.NoError(t, r.Validate())
	require.False(t, r.HasSound())
	require.Equal(t, int64(1_760_000_000_000), EpochMillis(r.FireAt))
}

// TestStatusString covers every named status.
func TestStatusString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "armed", StatusArmed.String())
	require.Equal(t, "unarmed", StatusUnarmed.String())
	require.Equal(t, "status(7)", Status(7).String())
}
