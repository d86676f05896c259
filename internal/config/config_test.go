package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/traction-engine/internal/physics"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, physics.DefaultSettings(), cfg.Settings())
	assert.False(t, cfg.Output.Pretty)

	assert.Equal(t, slog.LevelWarn, cfg.LogLevel())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
physics:
  meters_per_tile: 125
  power_factor_percent: 150
output:
  pretty: true
log:
  level: debug
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, physics.Settings{MetersPerTile: 125, PowerFactorPercent: 150, SimtimeFactorPercent: 100}, cfg.Settings())
	assert.True(t, cfg.Output.Pretty)

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRACTION_PHYSICS_SIMTIME_FACTOR_PERCENT", "50")
	t.Setenv("TRACTION_OUTPUT_PRETTY", "true")

	cfg, err := LoadConfig(writeConfig(t, "physics:\n  simtime_factor_percent: 200\n"))
	require.NoError(t, err)
	assert.Equal(t, int32(50), cfg.Physics.SimtimeFactorPercent)
	assert.True(t, cfg.Output.Pretty)
}

func TestEnvLogLevel(t *testing.T) {
	t.Setenv("TRACTION_LOG_LEVEL", "ERROR")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, cfg.LogLevel())
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "log:\n  level: chatty\n"))
	assert.ErrorContains(t, err, "log level")
}
