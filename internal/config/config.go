package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string
	// APIBaseURL is the root of the schools REST API, without a trailing slash.
	APIBaseURL string
	// APITimeout bounds each outbound API call. Zero means no timeout.
	APITimeout     time.Duration
	MaxUploadBytes int64
	// SubmitRateLimit is the number of form submissions allowed per IP per
	// minute. Zero disables the limiter.
	SubmitRateLimit int
	StaticMaxAge    int
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "3000"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "pretty"),
		APIBaseURL:      strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
		APITimeout:      time.Duration(getEnvInt("API_TIMEOUT_SECONDS", 0)) * time.Second,
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 5)) * 1024 * 1024,
		SubmitRateLimit: getEnvInt("SUBMIT_RATE_LIMIT", 30),
		StaticMaxAge:    getEnvInt("STATIC_MAX_AGE_SECONDS", 86400),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
