package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	PSP      PSPConfig
	Matching MatchingConfig
	Surge    SurgeConfig
	NewRelic NewRelicConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds bearer-token configuration.
type AuthConfig struct {
	SecretKey         string
	Algorithm         string
	AccessTokenExpiry time.Duration
}

// PSPConfig holds payment provider configuration.
type PSPConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// MatchingConfig holds matching engine configuration.
type MatchingConfig struct {
	RadiusKM   float64
	LockTTL    time.Duration
	MaxRetries int
}

// SurgeConfig holds surge pricing configuration.
type SurgeConfig struct {
	MaxMultiplier  float64
	UpdateInterval time.Duration
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// Load loads configuration from the environment. A .env file in the working
// directory is folded in first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Env:          getEnv("ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ride_hailing"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			SecretKey:         getEnv("SECRET_KEY", "change-me"),
			Algorithm:         getEnv("JWT_ALGORITHM", "HS256"),
			AccessTokenExpiry: time.Duration(getIntEnv("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
		},
		PSP: PSPConfig{
			BaseURL: getEnv("PSP_BASE_URL", "https://api.stripe.com/v1"),
			APIKey:  getEnv("PSP_API_KEY", ""),
			Timeout: time.Duration(getIntEnv("PSP_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Matching: MatchingConfig{
			RadiusKM:   getFloatEnv("MATCHING_RADIUS_KM", 5.0),
			LockTTL:    time.Duration(getIntEnv("MATCHING_TIMEOUT_SECONDS", 8)) * time.Second,
			MaxRetries: getIntEnv("MATCHING_MAX_RETRIES", 3),
		},
		Surge: SurgeConfig{
			MaxMultiplier:  getFloatEnv("MAX_SURGE_MULTIPLIER", 5.0),
			UpdateInterval: time.Duration(getIntEnv("SURGE_UPDATE_INTERVAL_SECONDS", 30)) * time.Second,
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "ride-hailing-dispatch"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
