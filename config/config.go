package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port          string
	HTTPBindAddr  string
	Environment   string
	LoggingConfig LoggingConfig
	RedisConfig   RedisConfig
	CacheConfig   CacheConfig
	FetchConfig   FetchConfig
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CacheConfig controls the evaluation report cache
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// FetchConfig controls fetching rate plan messages from remote URLs
type FetchConfig struct {
	AllowRemote bool
	Timeout     time.Duration
	MaxRetries  int
	MaxBytes    int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	port := getEnv("PORT", "8080")
	httpBindAddr := getEnv("HTTP_BIND_ADDR", "")
	environment := getEnv("ENVIRONMENT", "development")

	loggingConfig := LoggingConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisConfig := RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	cacheEnabled, _ := strconv.ParseBool(getEnv("CACHE_ENABLED", "false"))
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "1h"))
	if err != nil {
		cacheTTL = time.Hour
	}
	cacheConfig := CacheConfig{
		Enabled: cacheEnabled,
		TTL:     cacheTTL,
	}

	allowRemote, _ := strconv.ParseBool(getEnv("FETCH_ALLOW_REMOTE", "false"))
	fetchTimeout, err := time.ParseDuration(getEnv("FETCH_TIMEOUT", "15s"))
	if err != nil {
		fetchTimeout = 15 * time.Second
	}
	maxRetries, _ := strconv.Atoi(getEnv("FETCH_MAX_RETRIES", "3"))
	maxBytes, _ := strconv.ParseInt(getEnv("FETCH_MAX_BYTES", "8388608"), 10, 64)
	fetchConfig := FetchConfig{
		AllowRemote: allowRemote,
		Timeout:     fetchTimeout,
		MaxRetries:  maxRetries,
		MaxBytes:    maxBytes,
	}

	return &Config{
		Port:          port,
		HTTPBindAddr:  httpBindAddr,
		Environment:   environment,
		LoggingConfig: loggingConfig,
		RedisConfig:   redisConfig,
		CacheConfig:   cacheConfig,
		FetchConfig:   fetchConfig,
	}, nil
}

// TestConfig returns a default test configuration
func TestConfig() *Config {
	return &Config{
		Port:        "8080",
		Environment: "test",
		LoggingConfig: LoggingConfig{
			Level:  "error",
			Format: "text",
		},
		RedisConfig: RedisConfig{
			Host: getEnv("REDIS_HOST", "localhost"),
			Port: getEnv("REDIS_PORT", "6379"),
		},
		CacheConfig: CacheConfig{
			Enabled: false,
			TTL:     time.Hour,
		},
		FetchConfig: FetchConfig{
			AllowRemote: true,
			Timeout:     15 * time.Second,
			MaxRetries:  3,
			MaxBytes:    8 << 20,
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if len(strings.TrimSpace(value)) == 0 {
		return defaultValue
	}
	return strings.TrimSpace(value)
}
