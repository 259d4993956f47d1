package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment with an
// optional .env file (development convenience; missing file is not an error).
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	JWTSecret string
}

// Load reads configuration from the environment. JWTSecret has no default:
// tokens signed with a guessable secret are worthless.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:      getenv("THEOTIME_PORT", "3000"),
		DBPath:    getenv("THEOTIME_DB_PATH", "theotime.db"),
		LogLevel:  getenv("THEOTIME_LOG_LEVEL", "info"),
		JWTSecret: os.Getenv("THEOTIME_JWT_SECRET"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("THEOTIME_JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
