package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset sources. Either the CSV pair or the combined JSON file must
	// be configured; when both are set the CSV pair wins.
	TemperatureCSV   string
	PrecipitationCSV string
	ClimateJSON      string
	ClimateStartYear int
	BoundaryGeoJSON  string

	// Nominatim geocoding configuration.
	GeocoderBaseURL   string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration
	GeocoderCacheSize int

	// OpenRouter narrative configuration.
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	NarrativeEnabled  bool
	NarrativeModel    string
	NarrativeTimeout  time.Duration

	MapDefaultZoom int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	geocoderTimeout, err := parseDuration("GEOCODER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	narrativeTimeout, err := parseDuration("NARRATIVE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	zoom, err := parseMapDefaultZoom()
	if err != nil {
		return nil, err
	}

	startYear, err := parseClimateStartYear()
	if err != nil {
		return nil, err
	}

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	narrativeEnabled := apiKey != ""
	if v := os.Getenv("NARRATIVE_ENABLED"); v != "" {
		narrativeEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		TemperatureCSV:   os.Getenv("TEMPERATURE_CSV"),
		PrecipitationCSV: os.Getenv("PRECIPITATION_CSV"),
		ClimateJSON:      os.Getenv("CLIMATE_JSON"),
		ClimateStartYear: startYear,
		BoundaryGeoJSON:  os.Getenv("BOUNDARY_GEOJSON"),

		GeocoderBaseURL:   envOrDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: envOrDefault("GEOCODER_USER_AGENT", "climate-impact-explorer/1.0"),
		GeocoderTimeout:   geocoderTimeout,
		GeocoderCacheSize: parseCacheSize(),

		OpenRouterAPIKey:  apiKey,
		OpenRouterBaseURL: os.Getenv("OPENROUTER_BASE_URL"),
		NarrativeEnabled:  narrativeEnabled,
		NarrativeModel:    envOrDefault("NARRATIVE_MODEL", "moonshotai/kimi-k2:free"),
		NarrativeTimeout:  narrativeTimeout,

		MapDefaultZoom: zoom,
	}

	csvPair := cfg.TemperatureCSV != "" && cfg.PrecipitationCSV != ""
	csvPartial := (cfg.TemperatureCSV != "") != (cfg.PrecipitationCSV != "")
	if csvPartial {
		return nil, errors.New("TEMPERATURE_CSV and PRECIPITATION_CSV must be set together")
	}
	if !csvPair && cfg.ClimateJSON == "" {
		return nil, errors.New("either TEMPERATURE_CSV/PRECIPITATION_CSV or CLIMATE_JSON is required")
	}
	if cfg.NarrativeEnabled && cfg.OpenRouterAPIKey == "" {
		return nil, errors.New("NARRATIVE_ENABLED is true but OPENROUTER_API_KEY is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseCacheSize() int {
	if s := os.Getenv("GEOCODER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

// parseClimateStartYear reads the first year covered by the monthly JSON
// dataset. Only consulted when CLIMATE_JSON is the source.
func parseClimateStartYear() (int, error) {
	s := os.Getenv("CLIMATE_START_YEAR")
	if s == "" {
		return 1901, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1800 || n > 2100 {
		return 0, errors.New("invalid CLIMATE_START_YEAR")
	}
	return n, nil
}

func parseMapDefaultZoom() (int, error) {
	s := os.Getenv("MAP_DEFAULT_ZOOM")
	if s == "" {
		return 5, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 19 {
		return 0, errors.New("invalid MAP_DEFAULT_ZOOM")
	}
	return n, nil
}
