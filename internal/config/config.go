package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the server and the client.
type Config struct {
	// ServerAddress is the gRPC address the server listens on and clients dial.
	ServerAddress string `yaml:"server_addr"`
	// HTTPAddress is the address of the HTTP and WebSocket UI surface.
	HTTPAddress string `yaml:"http_addr"`
	// DataDir holds the preferences file and the imported profile picture.
	DataDir string `yaml:"data_dir"`
	// PreferencesFile is the preferences JSON file name, relative to DataDir.
	PreferencesFile string `yaml:"preferences_file"`
	// LogLevel is the minimum log level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// Timeout bounds network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// Monitor configures the threshold state machine.
	Monitor Monitor `yaml:"monitor"`
	// Sensor configures the hardware-backed sample source.
	Sensor Sensor `yaml:"sensor"`
	// Simulation configures the fallback random-walk sample source.
	Simulation Simulation `yaml:"simulation"`
	// Alert holds the fixed notification text.
	Alert Alert `yaml:"alert"`
	// Avatar limits profile picture imports.
	Avatar Avatar `yaml:"avatar"`
}

// Monitor configures the threshold state machine.
type Monitor struct {
	// Threshold is the temperature at or above which an excursion starts.
	Threshold float64 `yaml:"threshold"`
	// InitialCelsius is the latest sample before any source reported.
	InitialCelsius float64 `yaml:"initial_celsius"`
}

// Sensor configures the hardware-backed sample source.
type Sensor struct {
	// Path points at a file holding millidegrees Celsius. Empty means auto-discover.
	Path string `yaml:"path"`
	// PollInterval is the cadence at which the sensor file is read.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Simulation configures the fallback random-walk sample source.
type Simulation struct {
	// Force selects the simulator even if a sensor is present.
	Force bool `yaml:"force"`
	// Seed is the first simulated temperature.
	Seed float64 `yaml:"seed"`
	// MaxStep bounds the absolute change between two simulated samples.
	MaxStep float64 `yaml:"max_step"`
	// Interval is the delay between two simulated samples.
	Interval time.Duration `yaml:"interval"`
}

// Alert holds the fixed notification text and its action target.
type Alert struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
	// Action is where the notification takes the user, the UI main surface.
	Action string `yaml:"action"`
}

// Avatar limits profile picture imports.
type Avatar struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

const (
	// DefaultConfigFilename is the default settings file name.
	DefaultConfigFilename = "tempwatch-settings.yaml"
	// DefaultPreferencesFilename is the default preferences file name.
	DefaultPreferencesFilename = "tempwatch-preferences.json"
	// DefaultServerAddress is the default gRPC address.
	DefaultServerAddress = "127.0.0.1:50061"
	// DefaultHTTPAddress is the default UI surface address.
	DefaultHTTPAddress = "127.0.0.1:8081"
	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second
	// DefaultThreshold is the observed default alert threshold.
	DefaultThreshold = 30.0
	// DefaultSeed is the starting temperature of the simulator and the monitor.
	DefaultSeed = 20.0
	// DefaultMaxStep bounds one simulated random-walk step.
	DefaultMaxStep = 2.0
	// DefaultSimulationInterval is the delay between simulated samples.
	DefaultSimulationInterval = 5 * time.Second
	// DefaultPollInterval is the sensor file polling cadence.
	DefaultPollInterval = time.Second
	// DefaultAvatarMaxBytes caps imported profile pictures at 5 MiB.
	DefaultAvatarMaxBytes = 5 << 20
	// DefaultAlertTitle is the notification title.
	DefaultAlertTitle = "High temperature"
	// DefaultAlertMessage is the notification body.
	DefaultAlertMessage = "The ambient temperature has reached the alert threshold."
	// DefaultAlertAction returns the user to the main surface.
	DefaultAlertAction = "/"
	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"
	// DefaultFilePermissions is the mode of every file written by tempwatch.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// ErrInvalidInterval is returned for non-positive sampling intervals.
	ErrInvalidInterval = errors.New("interval must be positive")
	// ErrInvalidStep is returned for a negative random-walk step.
	ErrInvalidStep = errors.New("max step must not be negative")
)

// Default returns a configuration with every field populated.
func Default() *Config {
	cfg := &Config{
		Monitor: Monitor{
			Threshold:      DefaultThreshold,
			InitialCelsius: DefaultSeed,
		},
		Simulation: Simulation{
			Seed:    DefaultSeed,
			MaxStep: DefaultMaxStep,
		},
	}
	_ = Validate(cfg) //nolint:errcheck // Defaults are always valid.

	return cfg
}

// Load reads configuration from the provided path and validates it.
// Keys absent from the file keep their Default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when the default
// settings file is missing. An explicitly named file must exist.
// The second result reports whether defaults were used.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, false, nil
	}

	if errors.Is(err, os.ErrNotExist) && (path == "" || path == DefaultConfigFilename) {
		return Default(), true, nil
	}

	return nil, false, err
}

// Save validates cfg and writes it to path.
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

// Validate fills unset fields with defaults and rejects malformed values.
// Temperatures and the random-walk step are taken as is; Default supplies
// their defaults.
//
//nolint:cyclop // A flat list of defaults reads better than helpers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ServerAddress == "" {
		cfg.ServerAddress = DefaultServerAddress
	}

	if _, _, err := net.SplitHostPort(cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}

	if cfg.HTTPAddress == "" {
		cfg.HTTPAddress = DefaultHTTPAddress
	}

	if _, _, err := net.SplitHostPort(cfg.HTTPAddress); err != nil {
		return fmt.Errorf("invalid http address: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}

	if cfg.PreferencesFile == "" {
		cfg.PreferencesFile = DefaultPreferencesFilename
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Sensor.PollInterval == 0 {
		cfg.Sensor.PollInterval = DefaultPollInterval
	}

	if cfg.Sensor.PollInterval < 0 {
		return fmt.Errorf("sensor poll interval %s: %w", cfg.Sensor.PollInterval, ErrInvalidInterval)
	}

	if cfg.Simulation.MaxStep < 0 {
		return fmt.Errorf("simulation max step %v: %w", cfg.Simulation.MaxStep, ErrInvalidStep)
	}

	if cfg.Simulation.Interval == 0 {
		cfg.Simulation.Interval = DefaultSimulationInterval
	}

	if cfg.Simulation.Interval < 0 {
		return fmt.Errorf("simulation interval %s: %w", cfg.Simulation.Interval, ErrInvalidInterval)
	}

	if cfg.Alert.Title == "" {
		cfg.Alert.Title = DefaultAlertTitle
	}

	if cfg.Alert.Message == "" {
		cfg.Alert.Message = DefaultAlertMessage
	}

	if cfg.Alert.Action == "" {
		cfg.Alert.Action = DefaultAlertAction
	}

	if cfg.Avatar.MaxBytes <= 0 {
		cfg.Avatar.MaxBytes = DefaultAvatarMaxBytes
	}

	return nil
}

// PreferencesPath returns the preferences file location inside DataDir.
func (c *Config) PreferencesPath() string {
	if filepath.IsAbs(c.PreferencesFile) {
		return c.PreferencesFile
	}

	return filepath.Join(c.DataDir, c.PreferencesFile)
}
