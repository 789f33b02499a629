package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinscan-service/internal/domain/vehicle"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Empty(t, cfg.Gemini.APIKey, "credential comes from the environment only")

	settings := cfg.DefaultSettings()
	assert.Equal(t, "STOCK AUTO MAROC", settings.CompanyName)
	assert.Equal(t, vehicle.BusinessUsed, settings.BusinessType)
	assert.NotEmpty(t, settings.AllowedLocations)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VINSCAN_GEMINI_API_KEY", "secret")
	t.Setenv("VINSCAN_SERVER_ADDR", ":9090")
	t.Setenv("VINSCAN_DEFAULTS_BUSINESS_TYPE", "VN")
	t.Setenv("VINSCAN_STORAGE_POSTGRES_PASSWORD", "pg-secret")
	t.Setenv("VINSCAN_STORAGE_POSTGRES_USER", "inventory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Gemini.APIKey)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, vehicle.BusinessNew, cfg.DefaultSettings().BusinessType)
	assert.Contains(t, cfg.Storage.Postgres.DSN(), "password=pg-secret")
	assert.Contains(t, cfg.Storage.Postgres.DSN(), "user=inventory")
}

func TestLoadRejectsUnknownBusinessType(t *testing.T) {
	t.Setenv("VINSCAN_DEFAULTS_BUSINESS_TYPE", "XX")

	_, err := Load()
	assert.Error(t, err)
}
