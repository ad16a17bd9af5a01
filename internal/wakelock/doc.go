// Package wakelock keeps the host awake while an alarm starts playing.
//
// A Lock is acquired with a mandatory expiry: it is released by Release or,
// at the latest, when the timeout elapses, even if the owner never calls
// Release. Locks are not reference counted.
package wakelock
