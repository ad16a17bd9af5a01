// Package common holds helpers shared by the bridge daemon and its CLI.
//
// It provides a gRPC client wrapper with call timeouts and a helper that
// detects the calling user and host for the daemon's audit log.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
