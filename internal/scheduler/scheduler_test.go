package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/focus-alarm/internal/domain/alarm"
	"github.com/oshokin/focus-alarm/internal/platform"
	"github.com/oshokin/focus-alarm/internal/platform/timer"
)

var errPermissionDenied = errors.New("exact alarm permission denied")

// fakeBackend is an in-memory platform.Backend with failure injection.
type fakeBackend struct {
	mu sync.Mutex
	// armed holds the pending request per id.
	armed map[alarm.ID]alarm.Request
	// arms counts Arm calls.
	arms int
	// armErr is returned by Arm when set.
	armErr error
	// disarmErr is returned by Disarm when set.
	disarmErr error
	// panicOnArm makes Arm panic.
	panicOnArm bool
	// elapsed is the registered callback.
	elapsed platform.ElapsedFunc
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{armed: make(map[alarm.ID]alarm.Request)}
}

// Arm records req or fails as configured.
func (f *fakeBackend) Arm(_ context.Context, req alarm.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.panicOnArm {
		panic("alarm service unavailable")
	}

	if f.armErr != nil {
		return f.armErr
	}

	f.arms++
	f.armed[req.ID] = req

	return nil
}

// Disarm forgets the pending request for id.
func (f *fakeBackend) Disarm(_ context.Context, id alarm.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.disarmErr != nil {
		return f.disarmErr
	}

	delete(f.armed, id)

	return nil
}

// OnElapsed stores the callback.
func (f *fakeBackend) OnElapsed(fn platform.ElapsedFunc) {
	f.elapsed = fn
}

// Pending implements platform.Inspector.
func (f *fakeBackend) Pending(id alarm.ID) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req, ok := f.armed[id]

	return req.FireAt, ok
}

// snapshot returns a copy of the pending table.
func (f *fakeBackend) snapshot() map[alarm.ID]alarm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[alarm.ID]alarm.Request, len(f.armed))
	for id, req := range f.armed {
		out[id] = req
	}

	return out
}

// startSignal is one Start call seen by the fake handler.
type startSignal struct {
	id       alarm.ID
	soundURI string
}

// fakeHandler records playback signals.
type fakeHandler struct {
	mu     sync.Mutex
	starts []startSignal
	stops  int
}

// Start records the start signal.
func (h *fakeHandler) Start(_ context.Context, id alarm.ID, soundURI string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.starts = append(h.starts, startSignal{id: id, soundURI: soundURI})
}

// Stop records the stop signal.
func (h *fakeHandler) Stop(context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stops++
}

// started returns a copy of the start signals.
func (h *fakeHandler) started() []startSignal {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]startSignal(nil), h.starts...)
}

// TestSchedule_ReplacesPendingTrigger checks that a second schedule for an id keeps one trigger at t2.
func TestSchedule_ReplacesPendingTrigger(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	s := New(backend, new(fakeHandler))

	now := time.Now()
	t1 := now.Add(time.Minute)
	t2 := now.Add(2 * time.Minute)

	for _, id := range []alarm.ID{0, 5, alarm.WorkAlarmID, -3} {
		require.True(t, s.Schedule(context.Background(), alarm.Request{ID: id, FireAt: t1}))
		require.True(t, s.Schedule(context.Background(), alarm.Request{ID: id, FireAt: t2}))

		pending := backend.snapshot()
		require.Contains(t, pending, id)
		require.True(t, pending[id].FireAt.Equal(t2))
		require.Equal(t, alarm.StatusArmed, s.Status(id))
	}

	require.Len(t, backend.snapshot(), 4)
}

// TestSchedule_FailureIsReportedAsFalse covers rejected and panicking platform calls.
func TestSchedule_FailureIsReportedAsFalse(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.armErr = errPermissionDenied
	s := New(backend, new(fakeHandler))

	req := alarm.Request{ID: 5, FireAt: time.Now().Add(time.Minute)}
	require.False(t, s.Schedule(context.Background(), req))
	require.Equal(t, alarm.StatusUnarmed, s.Status(5))

	backend.armErr = nil
	backend.panicOnArm = true

	require.NotPanics(t, func() {
		require.False(t, s.Schedule(context.Background(), req))
	})
}

// TestCancel_WithoutSchedule verifies cancel of an unknown id succeeds and changes nothing.
func TestCancel_WithoutSchedule(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	s := New(backend, new(fakeHandler))

	require.True(t, s.Schedule(context.Background(), alarm.Request{ID: 1, FireAt: time.Now().Add(time.Hour)}))

	require.True(t, s.Cancel(context.Background(), 99))
	require.Len(t, backend.snapshot(), 1)

	require.True(t, s.Cancel(context.Background(), 1))
	require.Empty(t, backend.snapshot())
	require.Equal(t, alarm.StatusUnarmed, s.Status(1))
}

// TestCancel_BackendFailure ensures a disarm error is reported as false.
func TestCancel_BackendFailure(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.disarmErr = errPermissionDenied
	s := New(backend, new(fakeHandler))

	require.False(t, s.Cancel(context.Background(), 1))
}

// TestRestore_Policy exercises the restoration decision table.
func TestRestore_Policy(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		snapshot alarm.Snapshot
		wantID   alarm.ID
		wantArm  bool
	}{
		{
			name:     "not running with future target",
			snapshot: alarm.Snapshot{IsRunning: false, Target: now.Add(time.Hour), Phase: alarm.PhaseWork},
		},
		{
			name:     "not running with zero target",
			snapshot: alarm.Snapshot{IsRunning: false},
		},
		{
			name:     "running but target equals now",
			snapshot: alarm.Snapshot{IsRunning: true, Target: now, Phase: alarm.PhaseWork},
		},
		{
			name:     "running but target elapsed",
			snapshot: alarm.Snapshot{IsRunning: true, Target: now.Add(-time.Minute), Phase: alarm.PhaseBreak},
		},
		{
			name:     "work phase in the future",
			snapshot: alarm.Snapshot{IsRunning: true, Target: now.Add(time.Minute), Phase: alarm.PhaseWork},
			wantID:   100,
			wantArm:  true,
		},
		{
			name:     "break phase in the future",
			snapshot: alarm.Snapshot{IsRunning: true, Target: now.Add(time.Minute), Phase: alarm.PhaseBreak},
			wantID:   101,
			wantArm:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			backend := newFakeBackend()
			s := New(backend, new(fakeHandler))

			s.Restore(context.Background(), tc.snapshot, now)

			pending := backend.snapshot()
			if !tc.wantArm {
				require.Empty(t, pending)
				return
			}

			require.Len(t, pending, 1)
			require.Contains(t, pending, tc.wantID)
			require.True(t, pending[tc.wantID].FireAt.Equal(tc.snapshot.Target))
			require.Empty(t, pending[tc.wantID].SoundURI)
			require.Equal(t, 1, backend.arms)
		})
	}
}

// TestRestore_SwallowsFailures ensures restore never panics or fails when the platform does.
func TestRestore_SwallowsFailures(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snapshot := alarm.Snapshot{IsRunning: true, Target: now.Add(time.Minute), Phase: alarm.PhaseWork}

	backend := newFakeBackend()
	backend.panicOnArm = true
	s := New(backend, new(fakeHandler))

	require.NotPanics(t, func() {
		s.Restore(context.Background(), snapshot, now)
	})

	backend.panicOnArm = false
	backend.armErr = errPermissionDenied

	require.NotPanics(t, func() {
		s.Restore(context.Background(), snapshot, now)
	})
	require.Empty(t, backend.snapshot())
}

// TestOnFire_HandsOffToPlayback checks the elapsed callback reaches the playback handler.
func TestOnFire_HandsOffToPlayback(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	handler := new(fakeHandler)
	New(backend, handler)

	backend.elapsed(context.Background(), alarm.Request{ID: 5, SoundURI: "content://media/alarm/3"})
	backend.elapsed(context.Background(), alarm.Request{ID: 6})

	require.Equal(t, []startSignal{
		{id: 5, soundURI: "content://media/alarm/3"},
		{id: 6, soundURI: ""},
	}, handler.started())

	// A scheduler without a handler drops the signal quietly.
	orphan := New(newFakeBackend(), nil)
	require.NotPanics(t, func() {
		orphan.OnFire(context.Background(), 5, "")
	})
}

// TestScenario_ScheduleFiresOnce runs schedule → fire against the real timer backend.
func TestScenario_ScheduleFiresOnce(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		handler := new(fakeHandler)
		s := New(timer.New(ctx), handler)

		require.True(t, s.Schedule(ctx, alarm.Request{ID: 5, FireAt: time.Now().Add(10 * time.Second)}))
		require.Equal(t, alarm.StatusArmed, s.Status(5))

		time.Sleep(10*time.Second + time.Millisecond)
		synctest.Wait()

		require.Equal(t, []startSignal{{id: 5}}, handler.started())
		require.Equal(t, alarm.StatusUnarmed, s.Status(5))

		time.Sleep(time.Hour)
		synctest.Wait()
		require.Len(t, handler.started(), 1)
	})
}

// TestScenario_CancelBeforeFire ensures a cancelled alarm never reaches playback.
func TestScenario_CancelBeforeFire(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		handler := new(fakeHandler)
		s := New(timer.New(ctx), handler)

		require.True(t, s.Schedule(ctx, alarm.Request{ID: 5, FireAt: time.Now().Add(10 * time.Second)}))

		time.Sleep(5 * time.Second)
		require.True(t, s.Cancel(ctx, 5))

		time.Sleep(time.Minute)
		synctest.Wait()
		require.Empty(t, handler.started())
	})
}

// TestScenario_RestoreArmsPhaseAlarm restores a work countdown on the real backend.
func TestScenario_RestoreArmsPhaseAlarm(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		handler := new(fakeHandler)
		s := New(timer.New(ctx), handler)

		now := time.Now()
		s.Restore(ctx, alarm.Snapshot{IsRunning: true, Target: now.Add(60 * time.Second), Phase: alarm.PhaseWork}, now)

		time.Sleep(61 * time.Second)
		synctest.Wait()
		require.Equal(t, []startSignal{{id: alarm.WorkAlarmID}}, handler.started())
	})
}
