package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and format validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)

	// Empty config gets every default.
	settings := new(Config)
	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultServerAddress, settings.ServerAddress)
	require.Equal(t, DefaultTimeout, settings.Timeout)
	require.Equal(t, "json", settings.Preferences.Driver)
	require.Equal(t, DefaultPreferencesFilename, settings.Preferences.Path)
	require.Equal(t, "flutter.", settings.Preferences.KeyPrefix)
	require.Equal(t, 60*time.Second, settings.Playback.WakelockTimeout)
	require.Equal(t, time.Minute, settings.Usage.Window)

	// Bad address.
	settings = &Config{ServerAddress: "bad:address"}
	require.Error(t, Validate(settings))

	// Bad driver.
	settings = &Config{Preferences: Preferences{Driver: "redis"}}
	require.ErrorIs(t, Validate(settings), errUnknownDriver)

	// Bad log level.
	settings = &Config{LogLevel: "chatty"}
	require.ErrorIs(t, Validate(settings), errUnknownLogLevel)

	// Empty player binary.
	settings = &Config{Playback: Playback{PlayerCommand: []string{"", "{sound}"}}}
	require.ErrorIs(t, Validate(settings), errEmptyPlayerCommand)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ServerAddress: "127.0.0.1:50061",
		LogLevel:      "debug",
		Preferences: Preferences{
			Driver: "sqlite",
			Path:   filepath.Join(dir, "prefs.db"),
		},
		Playback: Playback{
			DefaultSound:  "/usr/share/sounds/alarm.oga",
			PlayerCommand: []string{"paplay", "--volume=65536", "{sound}"},
		},
		Usage: Usage{
			Ignore: []string{"focus-bridge"},
		},
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings, loaded)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadOrDefault falls back to defaults only for a missing file.
func TestLoadOrDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := LoadOrDefault(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("server_addr: ["), 0o600))

	_, err = LoadOrDefault(broken)
	require.Error(t, err)
}
