package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate_Defaults checks that an empty config is filled with defaults.
func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	cfg := new(Config)
	require.NoError(t, Validate(cfg))

	require.Equal(t, DefaultServerAddress, cfg.ServerAddress)
	require.Equal(t, DefaultHTTPAddress, cfg.HTTPAddress)
	require.Zero(t, cfg.Monitor.Threshold)
	require.Zero(t, cfg.Simulation.MaxStep)
	require.Equal(t, DefaultSimulationInterval, cfg.Simulation.Interval)
	require.Equal(t, DefaultPollInterval, cfg.Sensor.PollInterval)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultAlertTitle, cfg.Alert.Title)
	require.Equal(t, DefaultAlertAction, cfg.Alert.Action)
	require.Equal(t, int64(DefaultAvatarMaxBytes), cfg.Avatar.MaxBytes)
}

// TestDefault populates the temperature settings Validate leaves alone.
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()

	require.InDelta(t, DefaultThreshold, cfg.Monitor.Threshold, 0)
	require.InDelta(t, DefaultSeed, cfg.Monitor.InitialCelsius, 0)
	require.InDelta(t, DefaultSeed, cfg.Simulation.Seed, 0)
	require.InDelta(t, DefaultMaxStep, cfg.Simulation.MaxStep, 0)
	require.Equal(t, DefaultServerAddress, cfg.ServerAddress)
}

// TestLoad_ExplicitZero keeps zero temperatures written in the file.
func TestLoad_ExplicitZero(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	zeros := filepath.Join(dir, "zeros.yaml")
	contents := "monitor:\n  threshold: 0\n  initial_celsius: 0\nsimulation:\n  seed: 0\n  max_step: 0\n"
	require.NoError(t, os.WriteFile(zeros, []byte(contents), DefaultFilePermissions))

	cfg, err := Load(zeros)
	require.NoError(t, err)
	require.Zero(t, cfg.Monitor.Threshold)
	require.Zero(t, cfg.Monitor.InitialCelsius)
	require.Zero(t, cfg.Simulation.Seed)
	require.Zero(t, cfg.Simulation.MaxStep)

	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("monitor:\n  threshold: -5\n"), DefaultFilePermissions))

	cfg, err = Load(partial)
	require.NoError(t, err)
	require.InDelta(t, -5.0, cfg.Monitor.Threshold, 0)
	require.InDelta(t, DefaultSeed, cfg.Monitor.InitialCelsius, 0)
	require.InDelta(t, DefaultSeed, cfg.Simulation.Seed, 0)
	require.InDelta(t, DefaultMaxStep, cfg.Simulation.MaxStep, 0)
	require.Equal(t, DefaultServerAddress, cfg.ServerAddress)
}

// TestValidate_Rejects covers malformed addresses, intervals and steps.
func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))
	require.Error(t, Validate(&Config{ServerAddress: "no-port"}))
	require.Error(t, Validate(&Config{HTTPAddress: "no-port"}))

	err := Validate(&Config{Simulation: Simulation{Interval: -time.Second}})
	require.ErrorIs(t, err, ErrInvalidInterval)

	err = Validate(&Config{Sensor: Sensor{PollInterval: -time.Second}})
	require.ErrorIs(t, err, ErrInvalidInterval)

	err = Validate(&Config{Simulation: Simulation{MaxStep: -1}})
	require.ErrorIs(t, err, ErrInvalidStep)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := Default()
	cfg.ServerAddress = "127.0.0.1:6000"
	cfg.Monitor.Threshold = 27.5
	cfg.Simulation.Force = true
	cfg.Simulation.Interval = 250 * time.Millisecond
	cfg.Alert.Title = "Hot"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ServerAddress, loaded.ServerAddress)
	require.InDelta(t, 27.5, loaded.Monitor.Threshold, 0)
	require.True(t, loaded.Simulation.Force)
	require.Equal(t, 250*time.Millisecond, loaded.Simulation.Interval)
	require.Equal(t, "Hot", loaded.Alert.Title)
	require.InDelta(t, DefaultMaxStep, loaded.Simulation.MaxStep, 0)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadOrDefault falls back to defaults only for a missing default file.
func TestLoadOrDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, statErr := os.Stat(DefaultConfigFilename)
	require.ErrorIs(t, statErr, os.ErrNotExist)

	cfg, defaulted, err := LoadOrDefault("")
	require.NoError(t, err)
	require.True(t, defaulted)
	require.Equal(t, DefaultServerAddress, cfg.ServerAddress)
	require.InDelta(t, DefaultThreshold, cfg.Monitor.Threshold, 0)

	_, defaulted, err = LoadOrDefault(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
	require.False(t, defaulted)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("monitor: ["), DefaultFilePermissions))

	_, _, err = LoadOrDefault(broken)
	require.Error(t, err)
}

// TestPreferencesPath joins relative names with the data directory.
func TestPreferencesPath(t *testing.T) {
	t.Parallel()

	cfg := &Config{DataDir: "/var/lib/tempwatch", PreferencesFile: "prefs.json"}
	require.Equal(t, filepath.Join("/var/lib/tempwatch", "prefs.json"), cfg.PreferencesPath())

	cfg.PreferencesFile = "/etc/prefs.json"
	require.Equal(t, "/etc/prefs.json", cfg.PreferencesPath())
}
