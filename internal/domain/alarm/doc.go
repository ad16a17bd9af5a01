// Package alarm contains the core domain types of the focus alarm bridge.
//
// It defines the alarm identity, the one-shot Request armed for an absolute
// wall-clock time, the two timer phases with their fixed alarm ids, and the
// Snapshot of host state used to restore a pending alarm after a restart.
package alarm
