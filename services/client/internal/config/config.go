package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBase     = "http://127.0.0.1:5000"
	defaultExportSheet = "Trees"
)

// Config holds runtime configuration for the inventory client.
type Config struct {
	APIBase        string
	TokenFile      string
	RequestTimeout time.Duration
	ExportSheet    string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{
		APIBase:     defaultAPIBase,
		ExportSheet: defaultExportSheet,
	}

	if v := strings.TrimSpace(os.Getenv("ARBOR_API_BASE")); v != "" {
		if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return cfg, fmt.Errorf("invalid ARBOR_API_BASE: %s", v)
		}
		cfg.APIBase = strings.TrimRight(v, "/")
	}

	cfg.TokenFile = strings.TrimSpace(os.Getenv("ARBOR_TOKEN_FILE"))
	if cfg.TokenFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return cfg, fmt.Errorf("locate config dir: %w", err)
		}
		cfg.TokenFile = filepath.Join(dir, "arbor", "token")
	}

	if v := strings.TrimSpace(os.Getenv("ARBOR_REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid ARBOR_REQUEST_TIMEOUT: %w", err)
		}
		if d < 0 {
			return cfg, fmt.Errorf("invalid ARBOR_REQUEST_TIMEOUT: %s", v)
		}
		cfg.RequestTimeout = d
	}

	if v := strings.TrimSpace(os.Getenv("ARBOR_EXPORT_SHEET")); v != "" {
		cfg.ExportSheet = v
	}

	return cfg, nil
}
