package playback

import (
	"context"

	"github.com/oshokin/focus-alarm/internal/domain/alarm"
)

// Handler receives the start and stop signals of the alarm sound.
type Handler interface {
	// Start begins foreground playback for id. An empty soundURI selects the default sound.
	Start(ctx context.Context, id alarm.ID, soundURI string)
	// Stop ends playback and leaves the foreground state.
	Stop(ctx context.Context)
}
