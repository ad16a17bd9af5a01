// Package notify posts the foreground alarm notification.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/oshokin/focus-alarm/internal/logger"
)

// Notification is the content of the foreground alarm notification.
type Notification struct {
	// Title is the notification headline.
	Title string
	// Body is the notification text.
	Body string
	// Category tags the notification, e.g. "alarm".
	Category string
	// StopHint tells the user how to stop the sound.
	StopHint string
}

// Notifier shows and dismisses the foreground notification.
type Notifier interface {
	Show(ctx context.Context, n Notification) error
	Dismiss(ctx context.Context) error
}

// ErrNoNotifier is returned when no desktop notification tool is available.
var ErrNoNotifier = errors.New("no desktop notification tool available")

// LogNotifier writes notifications to the log. It is the fallback on headless hosts.
type LogNotifier struct{}

// Show logs the notification.
func (LogNotifier) Show(ctx context.Context, n Notification) error {
	logger.InfoKV(ctx, "Notification", "title", n.Title, "body", n.Body, "category", n.Category)

	return nil
}

// Dismiss logs the dismissal.
func (LogNotifier) Dismiss(ctx context.Context) error {
	logger.Debug(ctx, "Notification dismissed")

	return nil
}

// CommandNotifier posts notifications with notify-send on Linux and osascript on macOS.
type CommandNotifier struct {
	// name is the resolved helper binary.
	name string
	// goos selects the argument format.
	goos string
}

// NewCommandNotifier resolves the notification helper of this host.
func NewCommandNotifier() (*CommandNotifier, error) {
	goos := strings.ToLower(runtime.GOOS)

	var name string

	switch {
	case strings.Contains(goos, "linux"):
		name = "notify-send"
	case strings.Contains(goos, "darwin"):
		name = "osascript"
	default:
		return nil, fmt.Errorf("%s: %w", runtime.GOOS, ErrNoNotifier)
	}

	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNoNotifier)
	}

	return &CommandNotifier{name: name, goos: goos}, nil
}

// Show runs the helper with the notification content.
func (c *CommandNotifier) Show(ctx context.Context, n Notification) error {
	//nolint:gosec // The binary is fixed; content is passed as argv, not through a shell.
	cmd := exec.CommandContext(ctx, c.name, c.args(n)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", c.name, err, strings.TrimSpace(string(out)))
	}

	return nil
}

// Dismiss is a no-op: desktop notifications expire on their own.
func (c *CommandNotifier) Dismiss(context.Context) error {
	return nil
}

// args builds the helper arguments for n.
func (c *CommandNotifier) args(n Notification) []string {
	body := n.Body
	if n.StopHint != "" {
		body += "\n" + n.StopHint
	}

	if strings.Contains(c.goos, "darwin") {
		script := fmt.Sprintf("display notification %q with title %q", body, n.Title)

		return []string{"-e", script}
	}

	args := []string{"--urgency=critical", "--app-name=focus-alarm"}
	if n.Category != "" {
		args = append(args, "--category="+n.Category)
	}

	return append(args, n.Title, body)
}

// NewSystemNotifier returns the command notifier when available and the log notifier otherwise.
//
//nolint:ireturn // The concrete notifier depends on the host.
func NewSystemNotifier(ctx context.Context) Notifier {
	n, err := NewCommandNotifier()
	if err != nil {
		logger.DebugKV(ctx, "Desktop notifications unavailable, logging instead", "error", err)

		return LogNotifier{}
	}

	return n
}
