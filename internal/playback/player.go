package playback

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/oshokin/focus-alarm/internal/logger"
)

// SoundPlaceholder marks where the sound path goes in a player command.
const SoundPlaceholder = "{sound}"

// ErrNoPlayerCommand is returned when no player command is configured or found.
var ErrNoPlayerCommand = errors.New("no player command available")

// Player loops a sound until stopped.
type Player interface {
	// Start begins looping source, replacing what is currently playing.
	// It fails when the sound cannot be started at all.
	Start(ctx context.Context, source string) error
	// Stop ends playback. Stopping an idle player is a no-op.
	Stop() error
}

// DefaultPlayerCommand returns the stock audio player command of this platform.
func DefaultPlayerCommand() []string {
	switch strings.ToLower(runtime.GOOS) {
	case "darwin":
		return []string{"afplay", SoundPlaceholder}
	case "windows":
		return []string{
			"powershell", "-NoProfile", "-Command",
			"(New-Object Media.SoundPlayer '" + SoundPlaceholder + "').PlaySync()",
		}
	default:
		return []string{"paplay", SoundPlaceholder}
	}
}

// CommandPlayer plays a sound by running an external command in a loop.
type CommandPlayer struct {
	// command is the argv template containing SoundPlaceholder.
	command []string

	// mu protects the fields below.
	mu sync.Mutex
	// cancel stops the running loop.
	cancel context.CancelFunc
	// done is closed when the running loop exits.
	done chan struct{}
}

var _ Player = (*CommandPlayer)(nil)

// NewCommandPlayer builds a player from an argv template. An empty template
// selects DefaultPlayerCommand. The sound path is appended when the template
// has no placeholder.
func NewCommandPlayer(command []string) (*CommandPlayer, error) {
	if len(command) == 0 {
		command = DefaultPlayerCommand()
	}

	if _, err := exec.LookPath(command[0]); err != nil {
		return nil, fmt.Errorf("%s: %w", command[0], ErrNoPlayerCommand)
	}

	return &CommandPlayer{command: command}, nil
}

// Start runs the player command for source and keeps restarting it until Stop.
func (p *CommandPlayer) Start(ctx context.Context, source string) error {
	if err := p.Stop(); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	cmd := p.build(loopCtx, source)
	if err := cmd.Start(); err != nil {
		cancel()

		return fmt.Errorf("start %s: %w", p.command[0], err)
	}

	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go p.loop(loopCtx, cmd, source, done)

	return nil
}

// Stop kills the running command and waits for the loop to exit.
func (p *CommandPlayer) Stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	<-done

	return nil
}

// loop waits for each run of the command and starts the next one.
// A run that fails ends the loop so a broken sound does not spin.
func (p *CommandPlayer) loop(ctx context.Context, cmd *exec.Cmd, source string, done chan struct{}) {
	defer close(done)

	for {
		err := cmd.Wait()
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			logger.WarnKV(ctx, "Sound player exited with error, looping stopped", "source", source, "error", err)
			return
		}

		cmd = p.build(ctx, source)
		if err = cmd.Start(); err != nil {
			logger.WarnKV(ctx, "Sound player restart failed", "source", source, "error", err)
			return
		}
	}
}

// build renders the argv template for source.
func (p *CommandPlayer) build(ctx context.Context, source string) *exec.Cmd {
	args := make([]string, 0, len(p.command))
	substituted := false

	for _, arg := range p.command[1:] {
		if strings.Contains(arg, SoundPlaceholder) {
			arg = strings.ReplaceAll(arg, SoundPlaceholder, source)
			substituted = true
		}

		args = append(args, arg)
	}

	if !substituted {
		args = append(args, source)
	}

	//nolint:gosec // The command comes from configuration; the sound is a single argv entry.
	return exec.CommandContext(ctx, p.command[0], args...)
}

// LogPlayer stands in for a real player on hosts without one: it only logs.
type LogPlayer struct{}

var _ Player = LogPlayer{}

// Start logs the sound that would have been played.
func (LogPlayer) Start(ctx context.Context, source string) error {
	logger.WarnKV(ctx, "No audio player available, alarm is silent", "sound", source)

	return nil
}

// Stop does nothing.
func (LogPlayer) Stop() error {
	return nil
}
