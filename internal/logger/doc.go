// Package logger wraps zap for the bridge binaries.
//
// A global sugared logger with a console encoder is installed at init.
// Services carry a scoped logger in their context (ToContext, FromContext,
// WithName, WithKV) so that every log line about an alarm keeps its id and
// component name.
package logger
