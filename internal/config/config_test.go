package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.Equal(t, 6*time.Hour, cfg.RefreshInterval)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("TIMEZONE", "Europe/Berlin")
	t.Setenv("REFRESH_INTERVAL", "30m")
	t.Setenv("LOCATION_LAT", "52.52")
	t.Setenv("LOCATION_LON", "13.405")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone.String())
	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval)

	lat, lon, err := cfg.ResolveCoordinates()
	require.NoError(t, err)
	assert.Equal(t, 52.52, lat)
	assert.Equal(t, 13.405, lon)
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	assert.Error(t, err)
}

func TestResolveCoordinatesRequiresLocation(t *testing.T) {
	cfg := &AppConfig{}

	_, _, err := cfg.ResolveCoordinates()
	assert.Error(t, err)
}

func TestResolveCoordinatesRequiresGeocoderKey(t *testing.T) {
	cfg := &AppConfig{City: "Berlin", Country: "DE"}

	_, _, err := cfg.ResolveCoordinates()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODER_API_KEY")
}
