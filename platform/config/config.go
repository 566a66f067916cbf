// Package config provides application configuration loaded from the environment.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Role interfaces. Each consumer depends on the slice of configuration it
// actually needs instead of the whole Config struct.

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides HTTP server settings.
type HTTPConfig interface {
	GetPort() string
	GetEnvironment() string
	GetCORSAllowedOrigins() []string
}

// JWTConfig provides token signing settings.
type JWTConfig interface {
	GetJWTAccessSecret() string
	GetJWTAccessTTL() time.Duration
}

// AlertPolicyConfig provides alert engine tuning.
type AlertPolicyConfig interface {
	GetAlertPolicyPath() string
	GetNotifyOnUpdate() bool
}

// NotificationConfig provides outbound notification settings.
type NotificationConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFromEmail() string
	GetSMTPFromName() string
	GetPublicBaseURL() string
}

// SchedulerConfig provides background job settings.
type SchedulerConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetOutboxBatchSize() int
}

// StorageConfig provides object storage settings for rack snapshots.
type StorageConfig interface {
	IsStorageEnabled() bool
	GetStorageEndpoint() string
	GetStorageAccessKey() string
	GetStorageSecretKey() string
	GetStorageBucket() string
	GetStorageUseSSL() bool
	GetStorageMaxFileSize() int64
}

// Config holds all application configuration.
type Config struct {
	Environment string
	Port        string

	DatabaseURL string

	JWTAccessSecret string
	JWTAccessTTL    time.Duration

	CORSAllowedOrigins []string

	AlertPolicyPath string
	NotifyOnUpdate  bool

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	SMTPFromName  string
	PublicBaseURL string

	RedisURL        string
	AsynqQueueName  string
	OutboxBatchSize int

	StorageEndpoint    string
	StorageAccessKey   string
	StorageSecretKey   string
	StorageBucket      string
	StorageUseSSL      bool
	StorageMaxFileSize int64
}

func (c *Config) GetDatabaseURL() string          { return c.DatabaseURL }
func (c *Config) GetPort() string                 { return c.Port }
func (c *Config) GetEnvironment() string          { return c.Environment }
func (c *Config) GetCORSAllowedOrigins() []string { return c.CORSAllowedOrigins }
func (c *Config) GetJWTAccessSecret() string      { return c.JWTAccessSecret }
func (c *Config) GetJWTAccessTTL() time.Duration  { return c.JWTAccessTTL }
func (c *Config) GetAlertPolicyPath() string      { return c.AlertPolicyPath }
func (c *Config) GetNotifyOnUpdate() bool         { return c.NotifyOnUpdate }
func (c *Config) GetSMTPHost() string             { return c.SMTPHost }
func (c *Config) GetSMTPPort() int                { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string         { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string         { return c.SMTPPassword }
func (c *Config) GetSMTPFromEmail() string        { return c.SMTPFromEmail }
func (c *Config) GetSMTPFromName() string         { return c.SMTPFromName }
func (c *Config) GetPublicBaseURL() string        { return c.PublicBaseURL }
func (c *Config) GetRedisURL() string             { return c.RedisURL }
func (c *Config) GetAsynqQueueName() string       { return c.AsynqQueueName }
func (c *Config) GetOutboxBatchSize() int         { return c.OutboxBatchSize }
func (c *Config) IsStorageEnabled() bool          { return c.StorageEndpoint != "" }
func (c *Config) GetStorageEndpoint() string      { return c.StorageEndpoint }
func (c *Config) GetStorageAccessKey() string     { return c.StorageAccessKey }
func (c *Config) GetStorageSecretKey() string     { return c.StorageSecretKey }
func (c *Config) GetStorageBucket() string        { return c.StorageBucket }
func (c *Config) GetStorageUseSSL() bool          { return c.StorageUseSSL }
func (c *Config) GetStorageMaxFileSize() int64    { return c.StorageMaxFileSize }

// Load reads configuration from environment variables.
// A .env file is loaded first when present (development convenience).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret: os.Getenv("JWT_ACCESS_SECRET"),
		JWTAccessTTL:    mustDuration(getEnv("JWT_ACCESS_TTL", "24h")),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		AlertPolicyPath: os.Getenv("ALERT_POLICY_PATH"),
		NotifyOnUpdate:  getBool("ALERT_NOTIFY_ON_UPDATE", false),

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getInt("SMTP_PORT", 587),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "alerts@shelfsense.local"),
		SMTPFromName:  getEnv("SMTP_FROM_NAME", "ShelfSense Alerts"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AsynqQueueName:  getEnv("ASYNQ_QUEUE", "default"),
		OutboxBatchSize: getInt("OUTBOX_BATCH_SIZE", 50),

		StorageEndpoint:    os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey:   os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:   os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:      getEnv("STORAGE_BUCKET", "rack-snapshots"),
		StorageUseSSL:      getBool("STORAGE_USE_SSL", false),
		StorageMaxFileSize: int64(getInt("STORAGE_MAX_FILE_SIZE", 10*1024*1024)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustDuration(value string) time.Duration {
	parsed, err := time.ParseDuration(value)
	if err != nil {
		panic(fmt.Sprintf("invalid duration %q: %v", value, err))
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
