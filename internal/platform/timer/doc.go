// Package timer is the in-process platform alarm table.
//
// A single goroutine sleeps until the earliest pending trigger and delivers
// it to the registered callback. Sleeps are capped so that wall-clock steps,
// DST changes and host suspend are noticed within DefaultMaxSleep, which keeps
// triggers exact instead of drifting with the monotonic clock.
package timer
