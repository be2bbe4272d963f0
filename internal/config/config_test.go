package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/veldr/pointerstat/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
device = "/dev/input/event4"
dpi = 800.0
tick_ms = 10
refresh_hz = 60
window_ms = 2500
listen = "127.0.0.1:9000"
monitor = true
telemetry = true
database = "/path/to/telemetry.db"
log_level = "debug"
`)
	configPath := filepath.Join(tempDir, "pointerstat.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("POINTERSTAT_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/dev/input/event4", cfg.Device, "Expected Device /dev/input/event4")
	assert.InDelta(t, 800.0, cfg.DPI, 0.001, "Expected DPI 800")
	assert.Equal(t, 10, cfg.TickMS, "Expected TickMS 10")
	assert.Equal(t, 60, cfg.RefreshHz, "Expected RefreshHz 60")
	assert.Equal(t, 2500, cfg.WindowMS, "Expected WindowMS 2500")
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen, "Expected Listen 127.0.0.1:9000")
	assert.True(t, cfg.Monitor, "Expected Monitor true")
	assert.True(t, cfg.Telemetry, "Expected Telemetry true")
	assert.Equal(t, "/path/to/telemetry.db", cfg.TelemetryDB, "Expected TelemetryDB /path/to/telemetry.db")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
}

func TestLoadDefaults(t *testing.T) {
	// Ensure no config file is used
	t.Setenv("POINTERSTAT_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, "", cfg.Device, "Expected default Device to be empty")
	assert.InDelta(t, 1600.0, cfg.DPI, 0.001, "Expected default DPI 1600")
	assert.Equal(t, 15, cfg.TickMS, "Expected default TickMS 15")
	assert.Equal(t, 100, cfg.IdleSleepUS, "Expected default IdleSleepUS 100")
	assert.Equal(t, 30, cfg.RefreshHz, "Expected default RefreshHz 30")
	assert.Equal(t, 5000, cfg.WindowMS, "Expected default WindowMS 5000")
	assert.False(t, cfg.Monitor, "Expected default Monitor false")
	assert.False(t, cfg.Telemetry, "Expected default Telemetry false")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "pointerstat.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("POINTERSTAT_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
log_level = "chatty"
`)
	configPath := filepath.Join(tempDir, "pointerstat.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("POINTERSTAT_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid log level")
}

func TestInvalidTick(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
tick_ms = 0
`)
	configPath := filepath.Join(tempDir, "pointerstat.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("POINTERSTAT_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick_ms must be positive")
}

func TestFlagOverridesFile(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
dpi = 800.0
`)
	configPath := filepath.Join(tempDir, "pointerstat.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("POINTERSTAT_CONFIG", configPath)

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"pointerstat", "--dpi", "3200", "--log-level", "debug"}

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.InDelta(t, 3200.0, cfg.DPI, 0.001, "Expected DPI from flag")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel from flag")
}
