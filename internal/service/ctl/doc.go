// Package ctl implements the focus-alarmctl commands: each one connects to the
// bridge daemon, performs a single call and prints the result.
package ctl
