package ctl

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/focus-alarm/internal/domain/alarm"
)

var errTestTransport = errors.New("test transport error")

// fakeClient answers bridge calls from fields.
type fakeClient struct {
	ok         bool
	err        error
	app        string
	permission bool

	scheduled []alarm.Request
	cancelled []alarm.ID
	stops     int
}

func (f *fakeClient) ScheduleAlarm(_ context.Context, req alarm.Request) (bool, error) {
	f.scheduled = append(f.scheduled, req)

	return f.ok, f.err
}

func (f *fakeClient) CancelAlarm(_ context.Context, id alarm.ID) (bool, error) {
	f.cancelled = append(f.cancelled, id)

	return f.ok, f.err
}

func (f *fakeClient) StopAlarmSound(context.Context) (bool, error) {
	f.stops++

	return true, f.err
}

func (f *fakeClient) CurrentApp(context.Context) (string, error) {
	return f.app, f.err
}

func (f *fakeClient) UsagePermission(context.Context) (bool, error) {
	return f.permission, f.err
}

// TestSchedule covers accepted, rejected and invalid requests.
func TestSchedule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	req := alarm.Request{ID: alarm.WorkAlarmID, FireAt: time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC)}

	client := &fakeClient{ok: true}

	var out bytes.Buffer

	require.NoError(t, Schedule(req)(ctx, client, &out))
	require.Contains(t, out.String(), "alarm 100 scheduled")
	require.Equal(t, []alarm.Request{req}, client.scheduled)

	client.ok = false
	require.ErrorIs(t, Schedule(req)(ctx, client, &out), ErrRejected)

	client.err = errTestTransport
	require.ErrorIs(t, Schedule(req)(ctx, client, &out), errTestTransport)

	err := Schedule(alarm.Request{ID: 1})(ctx, new(fakeClient), &out)
	require.ErrorIs(t, err, alarm.ErrNoFireTime)
}

// TestCancel covers accepted and rejected cancellations.
func TestCancel(t *testing.T) {
	t.Parallel()

	client := &fakeClient{ok: true}

	var out bytes.Buffer

	require.NoError(t, Cancel(alarm.BreakAlarmID)(context.Background(), client, &out))
	require.Equal(t, "alarm 101 canceled\n", out.String())

	client.ok = false
	require.ErrorIs(t, Cancel(7)(context.Background(), client, &out), ErrRejected)
}

// TestQueries covers the stop, current-app and permission commands.
func TestQueries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := &fakeClient{app: "firefox", permission: true}

	var out bytes.Buffer

	require.NoError(t, StopSound()(ctx, client, &out))
	require.Equal(t, 1, client.stops)

	out.Reset()
	require.NoError(t, CurrentApp()(ctx, client, &out))
	require.Equal(t, "firefox\n", out.String())

	out.Reset()
	require.NoError(t, CurrentApp()(ctx, new(fakeClient), &out))
	require.Empty(t, out.String())

	out.Reset()
	require.NoError(t, Permission()(ctx, client, &out))
	require.Equal(t, "true\n", out.String())
}

// TestFireTime covers both fire time forms and their validation.
func TestFireTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := FireTime("", 25*time.Minute, now)
	require.NoError(t, err)
	require.Equal(t, now.Add(25*time.Minute), got)

	got, err = FireTime("2030-01-01T10:00:00Z", 0, now)
	require.NoError(t, err)
	require.True(t, got.Equal(time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)))

	_, err = FireTime("", 0, now)
	require.ErrorIs(t, err, ErrNoFireTime)

	_, err = FireTime("2030-01-01T10:00:00Z", time.Minute, now)
	require.ErrorIs(t, err, ErrConflictingFireTime)

	_, err = FireTime("tomorrow", 0, now)
	require.Error(t, err)
}
