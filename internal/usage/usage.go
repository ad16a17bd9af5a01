package usage

import (
	"context"
	"time"

	"github.com/oshokin/focus-alarm/internal/logger"
)

// DefaultWindow is how far back the monitor looks for recent usage.
const DefaultWindow = time.Minute

// Entry is the usage record of one application.
type Entry struct {
	// Package identifies the application.
	Package string
	// LastTimeUsed is when the application was last seen in use.
	LastTimeUsed time.Time
}

// Source reports application usage.
type Source interface {
	// Query returns usage entries for applications used within [from, to].
	Query(ctx context.Context, from, to time.Time) ([]Entry, error)
	// HasPermission reports whether usage can be read at all.
	HasPermission(ctx context.Context) bool
}

// MostRecent returns the entry with the latest LastTimeUsed. The first entry wins ties.
func MostRecent(entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}

	best := entries[0]
	for _, e := range entries[1:] {
		if e.LastTimeUsed.After(best.LastTimeUsed) {
			best = e
		}
	}

	return best, true
}

// Monitor answers current-application queries from a Source.
type Monitor struct {
	// source provides usage entries.
	source Source
	// window is how far back a query looks.
	window time.Duration
	// now returns the current time.
	now func() time.Time
}

// NewMonitor returns a monitor over source. A non-positive window selects DefaultWindow.
func NewMonitor(source Source, window time.Duration) *Monitor {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Monitor{
		source: source,
		window: window,
		now:    time.Now,
	}
}

// HasPermission reports whether usage can be read.
func (m *Monitor) HasPermission(ctx context.Context) bool {
	return m.source.HasPermission(ctx)
}

// CurrentApp returns the most recently used application of the last window.
// It reports false without permission, on query failure, or when nothing was used.
func (m *Monitor) CurrentApp(ctx context.Context) (string, bool) {
	if !m.source.HasPermission(ctx) {
		return "", false
	}

	now := m.now()

	entries, err := m.source.Query(ctx, now.Add(-m.window), now)
	if err != nil {
		logger.WarnKV(ctx, "Usage query failed", "error", err)
		return "", false
	}

	best, ok := MostRecent(entries)
	if !ok {
		return "", false
	}

	return best.Package, true
}
