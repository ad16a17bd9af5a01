package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/focus-alarm/internal/logger"
)

// Config holds the bridge settings.
type Config struct {
	// ServerAddress is the gRPC address of the bridge.
	ServerAddress string `yaml:"server_addr"`
	// Timeout bounds each RPC made by the control CLI.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level of the daemon logs.
	LogLevel string `yaml:"log_level"`
	// Preferences locates the host application's persisted state.
	Preferences Preferences `yaml:"preferences"`
	// Playback configures the alarm sound.
	Playback Playback `yaml:"playback"`
	// Usage configures foreground-application detection.
	Usage Usage `yaml:"usage"`
}

// Preferences locates the host application's preferences store.
type Preferences struct {
	// Driver is "json" or "sqlite".
	Driver string `yaml:"driver"`
	// Path is the preferences file or database.
	Path string `yaml:"path"`
	// KeyPrefix is prepended to every preference key.
	KeyPrefix string `yaml:"key_prefix"`
}

// Playback configures the alarm sound.
type Playback struct {
	// DefaultSound is played when no sound is requested or the requested one fails.
	DefaultSound string `yaml:"default_sound"`
	// PlayerCommand is the argv template of the audio player; "{sound}" is replaced by the file.
	PlayerCommand []string `yaml:"player_command"`
	// WakelockTimeout bounds how long sleep is inhibited once an alarm fires.
	WakelockTimeout time.Duration `yaml:"wakelock_timeout"`
}

// Usage configures foreground-application detection.
type Usage struct {
	// Window is how far back the current-application query looks.
	Window time.Duration `yaml:"window"`
	// SampleInterval is how often the process table is sampled.
	SampleInterval time.Duration `yaml:"sample_interval"`
	// Ignore lists executables never reported as the current application.
	Ignore []string `yaml:"ignore"`
}

const (
	// DefaultConfigFilename is the default filename for bridge settings.
	DefaultConfigFilename = "focus-alarm-settings.yaml"

	// DefaultPreferencesFilename is the default host preferences file.
	DefaultPreferencesFilename = "shared_preferences.json"

	// DefaultServerAddress is where the bridge listens when nothing is configured.
	DefaultServerAddress = "127.0.0.1:50061"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultLogLevel is the default daemon log level.
	DefaultLogLevel = "info"

	// DefaultPreferencesDriver is the default preferences store.
	DefaultPreferencesDriver = "json"

	// DefaultKeyPrefix is the key prefix used by shared_preferences.
	DefaultKeyPrefix = "flutter."

	// DefaultWakelockTimeout bounds the wakelock held while an alarm starts.
	DefaultWakelockTimeout = 60 * time.Second

	// DefaultUsageWindow is how far back usage queries look.
	DefaultUsageWindow = time.Minute

	// DefaultSampleInterval is how often the process table is sampled.
	DefaultSampleInterval = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownDriver is returned for unsupported preferences drivers.
	errUnknownDriver = errors.New("preferences driver must be json or sqlite")
	// errUnknownLogLevel is returned for unparsable log levels.
	errUnknownLogLevel = errors.New("unknown log level")
	// errEmptyPlayerCommand is returned when the player command has an empty binary.
	errEmptyPlayerCommand = errors.New("player command binary must not be empty")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := new(Config)

	// Validate only fails on explicitly invalid values, which an empty config has none of.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills defaults for empty fields.
//
//nolint:cyclop // A flat list of per-field defaults reads better than helpers.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		settings.ServerAddress = DefaultServerAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%q: %w", settings.LogLevel, errUnknownLogLevel)
	}

	prefs := &settings.Preferences

	switch prefs.Driver {
	case "":
		prefs.Driver = DefaultPreferencesDriver
	case "json", "sqlite":
	default:
		return fmt.Errorf("%q: %w", prefs.Driver, errUnknownDriver)
	}

	if prefs.Path == "" {
		prefs.Path = DefaultPreferencesFilename
	}

	if prefs.KeyPrefix == "" {
		prefs.KeyPrefix = DefaultKeyPrefix
	}

	if len(settings.Playback.PlayerCommand) > 0 && settings.Playback.PlayerCommand[0] == "" {
		return errEmptyPlayerCommand
	}

	if settings.Playback.WakelockTimeout <= 0 {
		settings.Playback.WakelockTimeout = DefaultWakelockTimeout
	}

	if settings.Usage.Window <= 0 {
		settings.Usage.Window = DefaultUsageWindow
	}

	if settings.Usage.SampleInterval <= 0 {
		settings.Usage.SampleInterval = DefaultSampleInterval
	}

	return nil
}
