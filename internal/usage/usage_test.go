package usage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

var errProcDenied = errors.New("permission denied reading /proc")

// fakeProcess implements ps.Process.
type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

// processTable is a mutable fake process table.
type processTable struct {
	mu    sync.Mutex
	names []string
	err   error
}

// set replaces the running executables.
func (p *processTable) set(names ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.names = names
}

// list implements ProcessLister.
func (p *processTable) list() ([]ps.Process, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}

	out := make([]ps.Process, 0, len(p.names))
	for i, name := range p.names {
		out = append(out, fakeProcess{pid: 100 + i, name: name})
	}

	return out, nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// staticSource is a Source returning fixed entries.
type staticSource struct {
	entries    []Entry
	err        error
	permission bool
	from, to   time.Time
}

func (s *staticSource) Query(_ context.Context, from, to time.Time) ([]Entry, error) {
	s.from, s.to = from, to

	return s.entries, s.err
}

func (s *staticSource) HasPermission(context.Context) bool { return s.permission }

// TestMostRecent picks the latest entry and keeps the first on ties.
func TestMostRecent(t *testing.T) {
	t.Parallel()

	_, ok := MostRecent(nil)
	require.False(t, ok)

	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Package: "org.mozilla.firefox", LastTimeUsed: base},
		{Package: "com.instagram.android", LastTimeUsed: base.Add(30 * time.Second)},
		{Package: "com.whatsapp", LastTimeUsed: base.Add(30 * time.Second)},
		{Package: "com.example.striktnanay", LastTimeUsed: base.Add(10 * time.Second)},
	}

	best, ok := MostRecent(entries)
	require.True(t, ok)
	require.Equal(t, "com.instagram.android", best.Package)
}

// TestMonitor_CurrentApp covers permission, failure, empty and success paths.
func TestMonitor_CurrentApp(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	src := &staticSource{permission: false}
	m := NewMonitor(src, 0)
	m.now = func() time.Time { return now }

	_, ok := m.CurrentApp(context.Background())
	require.False(t, ok)
	require.False(t, m.HasPermission(context.Background()))

	src.permission = true
	src.err = errProcDenied

	_, ok = m.CurrentApp(context.Background())
	require.False(t, ok)

	src.err = nil

	_, ok = m.CurrentApp(context.Background())
	require.False(t, ok)
	require.Equal(t, now.Add(-DefaultWindow), src.from)
	require.Equal(t, now, src.to)

	src.entries = []Entry{
		{Package: "code", LastTimeUsed: now.Add(-40 * time.Second)},
		{Package: "steam", LastTimeUsed: now.Add(-5 * time.Second)},
	}

	app, ok := m.CurrentApp(context.Background())
	require.True(t, ok)
	require.Equal(t, "steam", app)
}

// TestProcessSource_ReportsNewLaunches checks the baseline, window and ignore handling.
func TestProcessSource_ReportsNewLaunches(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
	table := new(processTable)
	table.set("systemd", "bash", "focus-bridge")

	src := newProcessSource(table.list, []string{"focus-bridge", "sleep"}, clock.Now)
	m := NewMonitor(src, time.Minute)
	m.now = clock.Now

	// Baseline processes are background.
	_, ok := m.CurrentApp(context.Background())
	require.False(t, ok)

	clock.Advance(10 * time.Second)
	table.set("systemd", "bash", "focus-bridge", "firefox", "sleep")

	app, ok := m.CurrentApp(context.Background())
	require.True(t, ok)
	require.Equal(t, "firefox", app)

	clock.Advance(20 * time.Second)
	table.set("systemd", "bash", "focus-bridge", "firefox", "steam")

	app, ok = m.CurrentApp(context.Background())
	require.True(t, ok)
	require.Equal(t, "steam", app)

	// Outside the window nothing is current.
	clock.Advance(2 * time.Minute)

	_, ok = m.CurrentApp(context.Background())
	require.False(t, ok)

	// An exited and relaunched application counts as new.
	table.set("systemd", "bash", "focus-bridge", "steam")
	require.NoError(t, src.Sample(context.Background()))

	clock.Advance(time.Second)
	table.set("systemd", "bash", "focus-bridge", "steam", "firefox")

	app, ok = m.CurrentApp(context.Background())
	require.True(t, ok)
	require.Equal(t, "firefox", app)
}

// TestProcessSource_Permission reflects process table access.
func TestProcessSource_Permission(t *testing.T) {
	t.Parallel()

	table := &processTable{err: errProcDenied}
	src := newProcessSource(table.list, nil, time.Now)

	require.False(t, src.HasPermission(context.Background()))

	_, err := src.Query(context.Background(), time.Now().Add(-time.Minute), time.Now())
	require.ErrorIs(t, err, errProcDenied)

	table.err = nil
	require.True(t, src.HasPermission(context.Background()))
	require.NotNil(t, NewProcessSource(nil))
}
