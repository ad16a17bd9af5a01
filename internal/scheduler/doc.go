// Package scheduler owns the alarm scheduling and restoration policy.
//
// It maps a logical alarm id to a one-shot trigger on the platform backend,
// re-arms the pending phase alarm after a restart, and hands elapsed triggers
// to the playback handler. Every operation fails soft: errors and panics from
// the platform are logged and reduced to a boolean or a no-op.
package scheduler
