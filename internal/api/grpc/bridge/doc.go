// Package bridge implements the gRPC transport between the host application
// and the native alarm bridge.
//
// Messages are protobuf well-known types, so the service is described by a
// hand-written grpc.ServiceDesc instead of generated code. Method arguments
// travel as a structpb.Struct keyed like the host's method-call arguments.
package bridge
