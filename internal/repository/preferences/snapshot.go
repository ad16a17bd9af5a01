package preferences

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/focus-alarm/internal/domain/alarm"
	"github.com/oshokin/focus-alarm/internal/logger"
)

const (
	// DefaultKeyPrefix is the prefix shared_preferences puts in front of every key.
	DefaultKeyPrefix = "flutter."

	// KeyIsRunning holds whether a countdown is running.
	KeyIsRunning = "timer_is_running"
	// KeyTargetEpochMillis holds the absolute end of the current phase in epoch milliseconds.
	KeyTargetEpochMillis = "timer_target_epoch_ms"
	// KeyPhase holds the current phase name.
	KeyPhase = "timer_phase"

	// defaultPhase is assumed when the host never stored a phase.
	defaultPhase = "work"
)

// ErrInvalidTarget is returned when the stored target time cannot be read.
var ErrInvalidTarget = errors.New("invalid countdown target")

// ReadSnapshot builds the countdown snapshot from the store. Missing keys read
// as "not running", zero target and the work phase. Unknown phases are
// restored as break and logged.
func ReadSnapshot(ctx context.Context, store Store, prefix string) (alarm.Snapshot, error) {
	values, err := store.Load(ctx)
	if err != nil {
		return alarm.Snapshot{}, err
	}

	target, err := epochMillis(values[prefix+KeyTargetEpochMillis])
	if err != nil {
		return alarm.Snapshot{}, fmt.Errorf("%s: %w", prefix+KeyTargetEpochMillis, err)
	}

	rawPhase := values[prefix+KeyPhase].GetStringValue()
	if rawPhase == "" {
		rawPhase = defaultPhase
	}

	phase, known := alarm.ParsePhase(rawPhase)
	if !known {
		logger.WarnKV(ctx, "Unknown countdown phase, restoring as break", "phase", rawPhase)
	}

	snapshot := alarm.Snapshot{
		IsRunning: values[prefix+KeyIsRunning].GetBoolValue(),
		Phase:     phase,
	}

	if target != 0 {
		snapshot.Target = alarm.FromEpochMillis(target)
	}

	return snapshot, nil
}

// WriteSnapshot stores snapshot under the prefixed keys.
func WriteSnapshot(ctx context.Context, store Store, prefix string, snapshot alarm.Snapshot) error {
	var target int64
	if !snapshot.Target.IsZero() {
		target = alarm.EpochMillis(snapshot.Target)
	}

	values := map[string]*structpb.Value{
		prefix + KeyIsRunning:         structpb.NewBoolValue(snapshot.IsRunning),
		prefix + KeyTargetEpochMillis: structpb.NewNumberValue(float64(target)),
		prefix + KeyPhase:             structpb.NewStringValue(snapshot.Phase.String()),
	}

	for key, value := range values {
		if err := store.Put(ctx, key, value); err != nil {
			return err
		}
	}

	return nil
}

// epochMillis reads a number or numeric string. A missing value is zero.
func epochMillis(v *structpb.Value) (int64, error) {
	switch kind := v.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return 0, nil
	case *structpb.Value_NumberValue:
		if math.IsNaN(kind.NumberValue) || math.IsInf(kind.NumberValue, 0) {
			return 0, fmt.Errorf("%v: %w", kind.NumberValue, ErrInvalidTarget)
		}

		return int64(kind.NumberValue), nil
	case *structpb.Value_StringValue:
		ms, err := strconv.ParseInt(strings.TrimSpace(kind.StringValue), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
		}

		return ms, nil
	default:
		return 0, fmt.Errorf("value of type %T: %w", kind, ErrInvalidTarget)
	}
}
