package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Backing services (both optional: empty RedisURL falls back to the
	// in-process cache, empty PostgresURL disables report history)
	RedisURL    string
	PostgresURL string

	// Upstream fetch
	StatsBaseURL string
	Seasons      []string
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int

	// Modeling
	RollingWindows []int
	TestFraction   float64
	Seed           int64
}

// Load loads configuration from environment variables. Every setting has
// a usable default, so an empty environment yields a working dev config.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		RedisURL:    getEnv("REDIS_URL", ""),
		PostgresURL: getEnv("POSTGRES_URL", ""),

		StatsBaseURL: getEnv("STATS_BASE_URL", ""),
		Seasons:      getEnvList("SEASONS", []string{"2024-25", "2023-24"}),
		CacheTTL:     getEnvDuration("CACHE_TTL", time.Hour),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 60*time.Second),
		MaxRetries:   getEnvInt("MAX_RETRIES", 3),
		RetryBackoff: getEnvDuration("RETRY_BACKOFF", 2*time.Second),
		PoolSize:     getEnvInt("POOL_SIZE", 10),

		RollingWindows: getEnvIntList("ROLLING_WINDOWS", []int{3, 5, 10}),
		TestFraction:   getEnvFloat("TEST_FRACTION", 0.2),
		Seed:           int64(getEnvInt("SEED", 42)),
	}

	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvIntList(key string, fallback []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []int
	for _, v := range strings.Split(value, ",") {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
