package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/infrastructure/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig_FileValuesAndDefaults(t *testing.T) {
	// Arrange
	path := writeConfig(t, `
simulation:
  pulse_millisols: 25
  sols: 3
  settlements: ["Schiaparelli Point"]
database:
  type: sqlite
  path: ":memory:"
reports:
  archive_enabled: true
`)

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 25, cfg.Simulation.PulseMillisols, 1e-9)
	assert.InDelta(t, 3, cfg.Simulation.Sols, 1e-9)
	assert.Equal(t, 1, cfg.Simulation.StartSol)
	assert.Equal(t, []string{"Schiaparelli Point"}, cfg.Simulation.Settlements)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.Logging.ThrottleWindow)
	assert.True(t, cfg.Reports.ArchiveEnabled)
	assert.Equal(t, "default", cfg.Reports.ArchiveLevel)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "simulation:\n  pulse_millisols: 25\n")
	t.Setenv("MARSSIM_SIMULATION_PULSE_MILLISOLS", "50")
	t.Setenv("MARSSIM_LOGGING_LEVEL", "debug")

	cfg, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.InDelta(t, 50, cfg.Simulation.PulseMillisols, 1e-9)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	for name, body := range map[string]string{
		"pulse too long":  "simulation:\n  pulse_millisols: 1500\n",
		"bad log level":   "logging:\n  level: loud\n",
		"unknown db":      "database:\n  type: oracle\n",
		"file w/o path":   "logging:\n  output: file\n",
		"bad compression": "reports:\n  archive_level: extreme\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigOrDefault_FallsBackOnError(t *testing.T) {
	cfg := config.LoadConfigOrDefault(writeConfig(t, "logging:\n  level: loud\n"))

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.InDelta(t, 10, cfg.Simulation.PulseMillisols, 1e-9)
}

func TestUserConfigHandler_RoundTrip(t *testing.T) {
	// Arrange
	h, err := config.NewUserConfigHandlerAt(t.TempDir())
	require.NoError(t, err)

	// Act
	require.NoError(t, h.SetDefaultSettlement(3))
	require.NoError(t, h.RecordRun("run-1"))
	loaded, err := h.Load()

	// Assert
	require.NoError(t, err)
	require.NotNil(t, loaded.DefaultSettlementID)
	assert.Equal(t, 3, *loaded.DefaultSettlementID)
	assert.Equal(t, "run-1", loaded.LastRunID)

	require.NoError(t, h.ClearDefaultSettlement())
	loaded, err = h.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded.DefaultSettlementID)
}

func TestLoadConfig_EnvironmentReachesNestedKeys(t *testing.T) {
	path := writeConfig(t, "simulation:\n  sols: 2\n")
	t.Setenv("MARSSIM_DATABASE_BUSY_TIMEOUT", "2s")
	t.Setenv("MARSSIM_TELEMETRY_PORT", "8099")

	cfg, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, 8099, cfg.Telemetry.Port)
}

func TestLoadConfig_ErrorsNameTheFileKey(t *testing.T) {
	_, err := config.LoadConfig(writeConfig(t, "simulation:\n  pulse_millisols: 1500\n"))

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "simulation.pulse_millisols", verr.Field)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.DatabaseConfig
		dsn      string
		inMemory bool
	}{
		{"sqlite memory", config.DatabaseConfig{Type: "sqlite"}, ":memory:", true},
		{"sqlite file", config.DatabaseConfig{Type: "sqlite", Path: "runs.db"}, "runs.db", false},
		{"sqlite busy timeout", config.DatabaseConfig{Type: "sqlite", Path: "runs.db", BusyTimeout: 1500 * time.Millisecond},
			"file:runs.db?_busy_timeout=1500", false},
		{"postgres url", config.DatabaseConfig{Type: "postgres", URL: "postgres://u@h/db"}, "postgres://u@h/db", false},
		{"postgres fields", config.DatabaseConfig{Type: "postgres", Host: "db", Port: 5432, User: "mars", Name: "sim", SSLMode: "disable"},
			"host=db port=5432 user=mars password= dbname=sim sslmode=disable", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.dsn, tt.cfg.DSN())
			assert.Equal(t, tt.inMemory, tt.cfg.InMemory())
		})
	}
}

func TestEndpointConfig_Addr(t *testing.T) {
	assert.Equal(t, "localhost:9090", config.EndpointConfig{Host: "localhost", Port: 9090}.Addr())
	assert.Equal(t, "[::1]:8085", config.EndpointConfig{Host: "::1", Port: 8085}.Addr())
}
