package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	DatabaseURL       string
	JWTSecret         string
	Port              string
	FCMServiceAccount string

	// Generative AI collaborator. An empty AIAPIKey disables the AI endpoints.
	AIAPIKey  string
	AIBaseURL string
	AIModel   string
	AITimeout time.Duration

	LogLevel  string
	LogFormat string // "text" or "json"
}

// Load reads the configuration from the environment. A .env file in the
// working directory, when present, seeds variables that are not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", "okrmaster.db"),
		JWTSecret:         getEnv("JWT_SECRET", defaultJWTSecret),
		Port:              getEnv("PORT", "8080"),
		FCMServiceAccount: getEnv("FCM_SERVICE_ACCOUNT", ""),
		AIAPIKey:          getEnv("AI_API_KEY", ""),
		AIBaseURL:         getEnv("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		AIModel:           getEnv("AI_MODEL", "gemini-2.5-flash"),
		AITimeout:         getDuration("AI_TIMEOUT", 30*time.Second),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}
}

// AIEnabled reports whether an AI API key is configured.
func (c *Config) AIEnabled() bool {
	return c.AIAPIKey != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getDuration accepts Go durations ("45s") or a plain number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
