package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Upstream dividend data API
	Upstream UpstreamConfig

	// Watchlist persistence
	Watchlist WatchlistConfig

	// Calendar view defaults
	Calendar CalendarConfig

	// Public site (SEO, sitemap, canonical links)
	Site SiteConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// UpstreamConfig holds the external dividend API configuration
type UpstreamConfig struct {
	BaseURL      string
	ServiceToken string // sent as X-Service-Token
	Timeout      time.Duration
	RatePerSec   int
}

// WatchlistConfig selects the durable watchlist store
type WatchlistConfig struct {
	Driver     string // memory, sqlite, postgres
	SQLitePath string
}

// CalendarConfig holds calendar/filter defaults
type CalendarConfig struct {
	Timezone           string
	HighYieldThreshold float64
	SuggestLimit       int
	Presets            []float64 // calculator quick-select shares; nil uses the built-in lots
	ProfilePath        string    // optional YAML profile overlay
}

// SiteConfig holds public site settings
type SiteConfig struct {
	BaseURL string
	Name    string
}

// Location returns the calendar timezone used to decide "today".
// validate() guarantees the name loads.
func (c CalendarConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		Upstream: UpstreamConfig{
			BaseURL:      getEnv("UPSTREAM_BASE_URL", "http://localhost:8000"),
			ServiceToken: getEnv("UPSTREAM_SERVICE_TOKEN", ""),
			Timeout:      getEnvAsDuration("UPSTREAM_TIMEOUT", "10s"),
			RatePerSec:   getEnvAsInt("UPSTREAM_RATE_PER_SEC", 10),
		},

		Watchlist: WatchlistConfig{
			Driver:     getEnv("WATCHLIST_DRIVER", "sqlite"),
			SQLitePath: getEnv("WATCHLIST_SQLITE_PATH", "divcal.db"),
		},

		Calendar: CalendarConfig{
			Timezone:           getEnv("CALENDAR_TIMEZONE", "Asia/Taipei"),
			HighYieldThreshold: getEnvAsFloat("HIGH_YIELD_THRESHOLD", 5.0),
			SuggestLimit:       getEnvAsInt("SUGGEST_LIMIT", 4),
			ProfilePath:        getEnv("CALENDAR_PROFILE", ""),
		},

		Site: SiteConfig{
			BaseURL: getEnv("SITE_BASE_URL", "https://ugoodly.com"),
			Name:    getEnv("SITE_NAME", "uGoodly 股利日曆"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Watchlist.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when WATCHLIST_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("WATCHLIST_DRIVER must be one of: memory, sqlite, postgres")
	}

	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL is required")
	}

	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		return fmt.Errorf("invalid CALENDAR_TIMEZONE %q: %w", c.Calendar.Timezone, err)
	}

	if c.Calendar.HighYieldThreshold < 0 {
		return fmt.Errorf("HIGH_YIELD_THRESHOLD must be >= 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
