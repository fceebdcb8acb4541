package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application. It is loaded once at
// startup and injected explicitly; nothing reads the environment after this.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Stripe   StripeConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Log      LogConfig
	NewRelic NewRelicConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	BaseURL      string // externally visible base URL, used in reset links
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

// StripeConfig holds payment processor credentials and limits.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string // override for tests; empty means the real API
	CallTimeout   time.Duration
}

// JWTConfig holds token signing configuration.
type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// SMTPConfig holds outgoing mail configuration. An empty Host disables
// real delivery and mail is logged instead.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
	JSON  bool
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			BaseURL:      getEnv("SERVER_BASE_URL", "http://localhost:8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "freelance"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			BaseURL:       getEnv("STRIPE_BASE_URL", ""),
			CallTimeout:   getDurationEnv("STRIPE_CALL_TIMEOUT", 15*time.Second),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET_KEY", ""),
			Issuer:     getEnv("JWT_ISSUER", "freelance-api"),
			Expiration: getDurationEnv("JWT_EXPIRATION", time.Hour),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "support@localhost"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			JSON:  getBoolEnv("LOG_JSON", true),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "freelance-api"),
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
