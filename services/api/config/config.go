package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPort              = 5000
	defaultGeocoderUserAgent = "tree_locator"
)

// Config holds environment-driven settings for the tree inventory API.
type Config struct {
	DatabaseURL       string
	Port              int
	RequireAuth       bool
	GeocoderURL       string
	GeocoderUserAgent string
	Verbose           bool
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:              defaultPort,
		RequireAuth:       true,
		GeocoderUserAgent: defaultGeocoderUserAgent,
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if v := strings.TrimSpace(os.Getenv("API_REQUIRE_AUTH")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid API_REQUIRE_AUTH: %w", err)
		}
		cfg.RequireAuth = b
	}

	cfg.GeocoderURL = strings.TrimSpace(os.Getenv("GEOCODER_URL"))
	if ua := strings.TrimSpace(os.Getenv("GEOCODER_USER_AGENT")); ua != "" {
		cfg.GeocoderUserAgent = ua
	}

	verbose := strings.TrimSpace(os.Getenv("API_VERBOSE"))
	cfg.Verbose = verbose == "1" || strings.EqualFold(verbose, "true")

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
