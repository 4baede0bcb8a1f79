package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the API server.
type Config struct {
	Port        string
	DatabaseURL string
	UploadDir   string
	JWTSecret   string
	TokenTTL    time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:        strings.TrimSpace(os.Getenv("PORT")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		UploadDir:   strings.TrimSpace(os.Getenv("UPLOAD_DIR")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTL:    parseTTL(strings.TrimSpace(os.Getenv("TOKEN_TTL_HOURS"))),
	}

	if cfg.Port == "" {
		cfg.Port = "6789"
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "task_manager.db"
	}

	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}

	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = time.Hour
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func parseTTL(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return 0
	}
	return time.Duration(hours) * time.Hour
}
