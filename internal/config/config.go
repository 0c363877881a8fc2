package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"

	defaultPort          = "8080"
	defaultVendorTimeout = 90 * time.Second
	defaultMaxUploadMB   = 10
)

type Config struct {
	Port        string
	FrontendURL string

	OpenAIKey  string
	ClaudeKey  string
	GeminiKey  string
	FinnhubKey string

	VendorTimeout  time.Duration
	MaxUploadBytes int64
	CoachVendor    string

	StorageBackend string
	DatabaseURL    string
	RedisURL       string
}

// Load reads the configuration from the environment. Call godotenv.Load
// first when a .env file should be honoured.
func Load() Config {
	claudeKey := os.Getenv("CLAUDE_API_KEY")
	if claudeKey == "" {
		claudeKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	return Config{
		Port:           getEnv("PORT", defaultPort),
		FrontendURL:    os.Getenv("FRONTEND_URL"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		ClaudeKey:      claudeKey,
		GeminiKey:      os.Getenv("GEMINI_API_KEY"),
		FinnhubKey:     os.Getenv("FINNHUB_API_KEY"),
		VendorTimeout:  getDuration("VENDOR_TIMEOUT", defaultVendorTimeout),
		MaxUploadBytes: int64(getInt("MAX_UPLOAD_MB", defaultMaxUploadMB)) << 20,
		CoachVendor:    strings.ToLower(getEnv("COACH_VENDOR", "openai")),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageMemory)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
	}
}

func getEnv(name, defaultValue string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return defaultValue
}

func getDuration(name string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration, using default", "env", name, "value", raw, "default", defaultValue, "error", err)
		return defaultValue
	}
	return d
}

func getInt(name string, defaultValue int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		slog.Warn("invalid integer, using default", "env", name, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return v
}
