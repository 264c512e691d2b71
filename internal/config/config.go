package config

import (
	"os"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port        string
	FrontendURL string
	DatabaseURL string
	TokenSecret string

	// TurnTimeout auto-advances a turn after inactivity. Zero disables it.
	TurnTimeout time.Duration
	// AbandonAfter removes a game once every player has been disconnected
	// this long.
	AbandonAfter time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// DATABASE_URL is optional; when empty, finished games are not persisted.
func Load() *Config {
	return &Config{
		Port:         envOrDefault("PORT", "8010"),
		FrontendURL:  envOrDefault("FRONTEND_URL", "*"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		TokenSecret:  envOrDefault("TOKEN_SECRET", "dev-secret-change-me"),
		TurnTimeout:  durationOrDefault("TURN_TIMEOUT", 0),
		AbandonAfter: durationOrDefault("ABANDON_AFTER", 10*time.Minute),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
