package wakelock

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// systemdInhibit is the systemd helper that holds a sleep inhibitor for a child process.
const systemdInhibit = "systemd-inhibit"

// NopInhibitor is used on hosts without a sleep inhibition mechanism.
type NopInhibitor struct{}

// Inhibit returns a release function that does nothing.
func (NopInhibitor) Inhibit(context.Context, string, time.Duration) (ReleaseFunc, error) {
	return func() error { return nil }, nil
}

// SystemdInhibitor blocks sleep and idle through systemd-inhibit. The child
// process itself sleeps for the timeout, so the inhibition also ends when this
// process dies.
type SystemdInhibitor struct {
	// Who is reported as the inhibiting application.
	Who string
}

// Inhibit starts `systemd-inhibit ... sleep <seconds>` and returns a function that stops it.
func (s SystemdInhibitor) Inhibit(ctx context.Context, reason string, d time.Duration) (ReleaseFunc, error) {
	seconds := int(d.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	procCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d+time.Second)

	//nolint:gosec // Arguments are fixed apart from the reason, which is passed as a single argv entry.
	cmd := exec.CommandContext(procCtx, systemdInhibit,
		"--what=sleep:idle",
		"--who="+s.Who,
		"--why="+reason,
		"--mode=block",
		"sleep", strconv.Itoa(seconds),
	)

	if err := cmd.Start(); err != nil {
		cancel()

		return nil, err
	}

	var once sync.Once

	return func() error {
		once.Do(func() {
			cancel()

			// The child is killed by cancel; its exit status carries no information.
			_ = cmd.Wait()
		})

		return nil
	}, nil
}

// NewSystemInhibitor picks the inhibitor available on this host.
//
//nolint:ireturn // The concrete inhibitor depends on the host.
func NewSystemInhibitor(who string) Inhibitor {
	if !strings.Contains(strings.ToLower(runtime.GOOS), "linux") {
		return NopInhibitor{}
	}

	if _, err := exec.LookPath(systemdInhibit); err != nil {
		return NopInhibitor{}
	}

	return SystemdInhibitor{Who: who}
}
