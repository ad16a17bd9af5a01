package usage

import (
	"context"
	"sync"
	"time"

	"github.com/mitchellh/go-ps"
)

// ProcessLister lists running processes. ps.Processes satisfies it.
type ProcessLister func() ([]ps.Process, error)

// ProcessSource derives usage from the process table: an application counts as
// used when its executable first appears. Executables already running at the
// first sample are treated as background and never reported.
type ProcessSource struct {
	// list returns the process table.
	list ProcessLister
	// ignore holds executables that are never reported.
	ignore map[string]struct{}
	// now returns the sampling time.
	now func() time.Time

	// mu protects the fields below.
	mu sync.Mutex
	// seen maps executable names to the time they were first observed.
	seen map[string]time.Time
	// primed reports whether the background baseline was taken.
	primed bool
}

var _ Source = (*ProcessSource)(nil)

// NewProcessSource returns a source over the host process table.
func NewProcessSource(ignore []string) *ProcessSource {
	return newProcessSource(ps.Processes, ignore, time.Now)
}

// newProcessSource allows tests to inject the process table and clock.
func newProcessSource(list ProcessLister, ignore []string, now func() time.Time) *ProcessSource {
	set := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		set[name] = struct{}{}
	}

	return &ProcessSource{
		list:   list,
		ignore: set,
		now:    now,
		seen:   make(map[string]time.Time),
	}
}

// Sample refreshes the first-seen table. The daemon calls it periodically so
// short-lived launches between queries are not missed.
func (s *ProcessSource) Sample(context.Context) error {
	processes, err := s.list()
	if err != nil {
		return err
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	alive := make(map[string]struct{}, len(processes))

	for _, p := range processes {
		name := p.Executable()
		if name == "" {
			continue
		}

		if _, skip := s.ignore[name]; skip {
			continue
		}

		alive[name] = struct{}{}

		if _, known := s.seen[name]; known {
			continue
		}

		if s.primed {
			s.seen[name] = now
		} else {
			s.seen[name] = time.Time{}
		}
	}

	for name := range s.seen {
		if _, ok := alive[name]; !ok {
			delete(s.seen, name)
		}
	}

	s.primed = true

	return nil
}

// Query samples the process table and returns executables first seen within [from, to].
func (s *ProcessSource) Query(ctx context.Context, from, to time.Time) ([]Entry, error) {
	if err := s.Sample(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []Entry

	for name, at := range s.seen {
		if at.IsZero() || at.Before(from) || at.After(to) {
			continue
		}

		entries = append(entries, Entry{Package: name, LastTimeUsed: at})
	}

	return entries, nil
}

// HasPermission reports whether the process table is readable.
func (s *ProcessSource) HasPermission(context.Context) bool {
	_, err := s.list()

	return err == nil
}
