// Package version exposes build metadata of the focus-alarm binaries.
//
// Version, Commit and BuildTime are injected with -ldflags at build time.
package version
