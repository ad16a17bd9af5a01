// Package bridge runs the focus-bridge daemon.
//
// Run wires the alarm scheduler, the playback handler and the usage monitor
// together, restores the pending countdown alarm from the host application's
// preferences, and serves the bridge gRPC API until the context is canceled.
package bridge
