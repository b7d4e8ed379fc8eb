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

	// Dataset
	Dataset DatasetConfig

	// Model settings file (YAML); empty = built-in defaults
	ModelConfigPath string

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Scheduled dataset refresh
	Refresh RefreshConfig

	// API rate limit
	RateLimit RateLimitConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// Dataset sources
const (
	SourceCSV      = "csv"
	SourceURL      = "url"
	SourceHTML     = "html"
	SourcePostgres = "postgres"
)

// DatasetConfig says where listings are loaded from
type DatasetConfig struct {
	Source  string // csv, url, html, postgres
	Path    string // csv/html file path
	URL     string // url/html over HTTP
	Table   string // postgres table
	Timeout time.Duration
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
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RefreshConfig holds the dataset refresh schedule
type RefreshConfig struct {
	Enabled      bool
	Schedule     string // cron (5 fields)
	WarmSchedule string // stats cache warmup
}

// RateLimitConfig holds API rate limit settings
type RateLimitConfig struct {
	Enabled  bool
	Requests int           // per window (Redis) / burst (in-process)
	Window   time.Duration // sliding window
	// TrustProxy keys clients on X-Forwarded-For; enable only behind a proxy that rewrites it
	TrustProxy bool
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Dataset
		Dataset: DatasetConfig{
			Source:  getEnv("DATASET_SOURCE", SourceCSV),
			Path:    getEnv("DATASET_PATH", "processed_turkish_house_sales.csv"),
			URL:     getEnv("DATASET_URL", ""),
			Table:   getEnv("DATASET_TABLE", "listings"),
			Timeout: getEnvAsDuration("DATASET_TIMEOUT", "30s"),
		},

		ModelConfigPath: getEnv("MODEL_CONFIG", ""),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "house_prices"),
			User:            getEnv("DB_USER", "house_prices"),
			Password:        getEnv("DB_PASSWORD", ""),
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
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Refresh: RefreshConfig{
			Enabled:      getEnvAsBool("REFRESH_ENABLED", true),
			Schedule:     getEnv("REFRESH_SCHEDULE", "0 */6 * * *"),
			WarmSchedule: getEnv("REFRESH_WARM_SCHEDULE", "@every 5m"),
		},

		RateLimit: RateLimitConfig{
			Enabled:    getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Requests:   getEnvAsInt("RATE_LIMIT_REQUESTS", 60),
			Window:     getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
			TrustProxy: getEnvAsBool("RATE_LIMIT_TRUST_PROXY", false),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Dataset.Source {
	case SourceCSV:
		if c.Dataset.Path == "" {
			return fmt.Errorf("DATASET_PATH is required for csv source")
		}
	case SourceURL:
		if c.Dataset.URL == "" {
			return fmt.Errorf("DATASET_URL is required for url source")
		}
	case SourceHTML:
		if c.Dataset.URL == "" && c.Dataset.Path == "" {
			return fmt.Errorf("DATASET_URL or DATASET_PATH is required for html source")
		}
	case SourcePostgres:
		// Database URL is required only when listings live in PostgreSQL
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres source")
		}
		if c.Dataset.Table == "" {
			return fmt.Errorf("DATASET_TABLE is required for postgres source")
		}
	default:
		return fmt.Errorf("DATASET_SOURCE must be one of: csv, url, html, postgres")
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",           // Current directory
		"backend/.env",   // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
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
