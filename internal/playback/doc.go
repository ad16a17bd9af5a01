// Package playback runs the foreground alarm "service": it posts the alarm
// notification, holds a wakelock with mandatory expiry, and loops the alarm
// sound until it is stopped. When the requested sound cannot be played it
// falls back once to the default alarm sound.
package playback
