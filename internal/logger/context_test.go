package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestFromContext_FallsBackToGlobal verifies that an empty context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithKV_AttachesFields checks that fields added to the context reach the log output.
func TestWithKV_AttachesFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "scheduler")
	ctx = WithKV(ctx, "alarm_id", 100)

	InfoKV(ctx, "Alarm armed", "fire_at", "soon")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "scheduler", entries[0].LoggerName)
	require.Equal(t, "Alarm armed", entries[0].Message)

	fields := entries[0].ContextMap()
	require.EqualValues(t, 100, fields["alarm_id"])
	require.Equal(t, "soon", fields["fire_at"])
}
