package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BackendAPIURL string
	Port          string
	Environment   string
	RedisAddr     string
	RedisUser     string
	RedisPassword string

	// Pause between a successful authentication and the automatic
	// resubmission of a pending booking, so the freshly issued token has
	// settled on the backend before it is used.
	SettleDelay time.Duration
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func Load() (*Config, error) {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	cfg := &Config{
		BackendAPIURL: strings.TrimRight(strings.TrimSpace(os.Getenv("BACKEND_API_URL")), "/"),
		Port:          envOrDefault("PORT", "8080"),
		Environment:   envOrDefault("ENV", "development"),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisUser:     os.Getenv("REDIS_USER"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SettleDelay:   500 * time.Millisecond,
	}

	if cfg.BackendAPIURL == "" {
		return nil, fmt.Errorf("BACKEND_API_URL is required but not set")
	}

	return cfg, nil
}
