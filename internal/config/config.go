package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"
)

// AppConfig holds all service settings, populated from environment variables.
type AppConfig struct {
	Port string

	// DatabaseURL selects the Postgres store; empty falls back to the
	// in-memory store.
	DatabaseURL string

	// Solar times provider.
	SolarAPIBaseURL string
	HTTPTimeout     time.Duration

	// Location the solar times are computed for. Lat/Lon win when set;
	// otherwise City/Country are resolved through the geocoder.
	Latitude       float64
	Longitude      float64
	City           string
	Country        string
	GeocoderAPIKey string

	// Timezone used to derive calendar dates from value timestamps.
	Timezone *time.Location

	// RefreshInterval controls the periodic refresh of today's solar times.
	// Zero disables the job.
	RefreshInterval time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:            getenvDefault("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SolarAPIBaseURL: os.Getenv("SOLAR_API_BASE_URL"),
		City:            os.Getenv("LOCATION_CITY"),
		Country:         os.Getenv("LOCATION_COUNTRY"),
		GeocoderAPIKey:  os.Getenv("GEOCODER_API_KEY"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
		LogFormat:       getenvDefault("LOG_FORMAT", "console"),
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// Refresh interval: default 6 hours, "0" disables the job.
	intervalStr := getenvDefault("REFRESH_INTERVAL", "6h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	tzName := getenvDefault("TIMEZONE", "UTC")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}
	cfg.Timezone = tz

	cfg.Latitude = getenvFloat("LOCATION_LAT", 0)
	cfg.Longitude = getenvFloat("LOCATION_LON", 0)

	return cfg, nil
}

// ResolveCoordinates returns the latitude/longitude the solar client should
// use. Explicit LOCATION_LAT/LOCATION_LON win; otherwise the configured city
// and country are geocoded.
func (c *AppConfig) ResolveCoordinates() (float64, float64, error) {
	if c.Latitude != 0 || c.Longitude != 0 {
		return c.Latitude, c.Longitude, nil
	}

	if c.City == "" {
		return 0, 0, fmt.Errorf("set LOCATION_LAT/LOCATION_LON or LOCATION_CITY/LOCATION_COUNTRY")
	}
	if c.GeocoderAPIKey == "" {
		return 0, 0, fmt.Errorf("GEOCODER_API_KEY is required to resolve %q", c.City)
	}

	geocoder.ApiKey = c.GeocoderAPIKey
	loc, err := geocoder.Geocoding(geocoder.Address{
		City:    c.City,
		Country: c.Country,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %s,%s: %w", c.City, c.Country, err)
	}
	return loc.Latitude, loc.Longitude, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
