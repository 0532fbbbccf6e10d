package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "sk-or-test-key"

func setDatasetEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TEMPERATURE_CSV", "testdata/tas.csv")
	t.Setenv("PRECIPITATION_CSV", "testdata/pr.csv")
}

func TestLoad_Defaults(t *testing.T) {
	setDatasetEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.GeocoderBaseURL)
	assert.Equal(t, "climate-impact-explorer/1.0", cfg.GeocoderUserAgent)
	assert.Equal(t, 5*time.Second, cfg.GeocoderTimeout)
	assert.Equal(t, 1000, cfg.GeocoderCacheSize)
	assert.False(t, cfg.NarrativeEnabled)
	assert.Empty(t, cfg.OpenRouterAPIKey)
	assert.Equal(t, "moonshotai/kimi-k2:free", cfg.NarrativeModel)
	assert.Equal(t, 30*time.Second, cfg.NarrativeTimeout)
	assert.Equal(t, 5, cfg.MapDefaultZoom)
	assert.Empty(t, cfg.BoundaryGeoJSON)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("TEMPERATURE_CSV", "/data/temperature.csv")
	t.Setenv("PRECIPITATION_CSV", "/data/precipitation.csv")
	t.Setenv("BOUNDARY_GEOJSON", "/data/countries.geojson")
	t.Setenv("GEOCODER_BASE_URL", "http://localhost:8088")
	t.Setenv("GEOCODER_USER_AGENT", "test-agent/0.1")
	t.Setenv("GEOCODER_TIMEOUT", "10s")
	t.Setenv("GEOCODER_CACHE_SIZE", "500")
	t.Setenv("OPENROUTER_API_KEY", testAPIKey)
	t.Setenv("NARRATIVE_MODEL", "meta-llama/llama-3-8b")
	t.Setenv("NARRATIVE_TIMEOUT", "45s")
	t.Setenv("MAP_DEFAULT_ZOOM", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/data/temperature.csv", cfg.TemperatureCSV)
	assert.Equal(t, "/data/precipitation.csv", cfg.PrecipitationCSV)
	assert.Equal(t, "/data/countries.geojson", cfg.BoundaryGeoJSON)
	assert.Equal(t, "http://localhost:8088", cfg.GeocoderBaseURL)
	assert.Equal(t, "test-agent/0.1", cfg.GeocoderUserAgent)
	assert.Equal(t, 10*time.Second, cfg.GeocoderTimeout)
	assert.Equal(t, 500, cfg.GeocoderCacheSize)
	assert.True(t, cfg.NarrativeEnabled)
	assert.Equal(t, testAPIKey, cfg.OpenRouterAPIKey)
	assert.Equal(t, "meta-llama/llama-3-8b", cfg.NarrativeModel)
	assert.Equal(t, 45*time.Second, cfg.NarrativeTimeout)
	assert.Equal(t, 7, cfg.MapDefaultZoom)
}

func TestLoad_ClimateJSONAlone(t *testing.T) {
	t.Setenv("CLIMATE_JSON", "/data/climate.json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/climate.json", cfg.ClimateJSON)
	assert.Equal(t, 1901, cfg.ClimateStartYear)
	assert.Empty(t, cfg.TemperatureCSV)
}

func TestLoad_ClimateStartYear(t *testing.T) {
	t.Setenv("CLIMATE_JSON", "/data/climate.json")
	t.Setenv("CLIMATE_START_YEAR", "1961")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1961, cfg.ClimateStartYear)
}

func TestLoad_InvalidClimateStartYear(t *testing.T) {
	setDatasetEnv(t)
	t.Setenv("CLIMATE_START_YEAR", "abc")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLIMATE_START_YEAR")
}

func TestLoad_NoDatasetSource(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLIMATE_JSON")
}

func TestLoad_PartialCSVPair(t *testing.T) {
	t.Setenv("TEMPERATURE_CSV", "/data/temperature.csv")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRECIPITATION_CSV")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	setDatasetEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	setDatasetEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidGeocoderTimeout(t *testing.T) {
	setDatasetEnv(t)
	t.Setenv("GEOCODER_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODER_TIMEOUT")
}

func TestLoad_InvalidMapDefaultZoom(t *testing.T) {
	setDatasetEnv(t)
	t.Setenv("MAP_DEFAULT_ZOOM", "99")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAP_DEFAULT_ZOOM")
}

func TestLoad_NarrativeEnabledWithoutKey(t *testing.T) {
	setDatasetEnv(t)
	t.Setenv("NARRATIVE_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENROUTER_API_KEY")
}

func TestLoad_APIKeyImpliesNarrativeEnabled(t *testing.T) {
	setDatasetEnv(t)
	t.Setenv("OPENROUTER_API_KEY", testAPIKey)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.NarrativeEnabled)
}

func TestLoad_NarrativeExplicitlyDisabled(t *testing.T) {
	setDatasetEnv(t)
	t.Setenv("OPENROUTER_API_KEY", testAPIKey)
	t.Setenv("NARRATIVE_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.NarrativeEnabled)
}
