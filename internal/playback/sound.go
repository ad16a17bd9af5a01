package playback

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrUnsupportedSound is returned for sound locators that are not local files.
	ErrUnsupportedSound = errors.New("unsupported sound locator")
	// ErrNoSound is returned when neither a sound nor a default is available.
	ErrNoSound = errors.New("no sound configured")
)

// DefaultSound returns the stock alarm sound of this platform.
func DefaultSound() string {
	switch strings.ToLower(runtime.GOOS) {
	case "darwin":
		return "/System/Library/Sounds/Glass.aiff"
	case "windows":
		return `C:\Windows\Media\Alarm01.wav`
	default:
		return "/usr/share/sounds/freedesktop/stereo/alarm-clock-elapsed.oga"
	}
}

// ResolveSound turns a sound locator into a playable local path.
// An empty locator selects fallback. file:// URIs and plain paths are accepted.
func ResolveSound(locator, fallback string) (string, error) {
	if locator == "" {
		locator = fallback
	}

	if locator == "" {
		return "", ErrNoSound
	}

	path, err := localPath(locator)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("sound %q: %w", locator, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("sound %q is a directory: %w", locator, ErrUnsupportedSound)
	}

	return path, nil
}

// localPath extracts the filesystem path of a locator.
func localPath(locator string) (string, error) {
	// Windows drive paths parse as a URL with a one-letter scheme.
	if filepath.IsAbs(locator) || !strings.Contains(locator, "://") {
		return filepath.Clean(locator), nil
	}

	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("parse sound locator: %w", err)
	}

	if u.Scheme != "file" {
		return "", fmt.Errorf("%s: %w", u.Scheme, ErrUnsupportedSound)
	}

	return filepath.Clean(filepath.FromSlash(u.Path)), nil
}
