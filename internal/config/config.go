// Package config provides centralized configuration management for the service.
// It loads configuration from environment variables with defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Storage and session backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Import   ImportConfig
	Session  SessionConfig
	Events   EventsConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Metrics  MetricsConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests. Commits run
	// detached from the request and are bounded by IMPORT_COMMIT_TIMEOUT.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// StoreConfig selects and configures inventory persistence.
type StoreConfig struct {
	// Backend is "postgres" or "memory". Memory keeps nothing across restarts.
	Backend string `env:"STORE_BACKEND" default:"postgres"`

	// DatabaseURL is required for the postgres backend.
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// MigrateOnStart applies pending migrations before serving.
	MigrateOnStart bool `env:"DB_MIGRATE_ON_START" default:"true"`
}

// ImportConfig holds import processing settings.
type ImportConfig struct {
	// MaxFileSize is the largest accepted upload in bytes (default: 20MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"20971520"`

	// MaxConcurrent bounds imports starting or committing at once
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for an import slot
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// CommitTimeout bounds one commit
	CommitTimeout time.Duration `env:"IMPORT_COMMIT_TIMEOUT" default:"10m"`

	// Sheet is the worksheet read from .xlsx uploads; empty means the active sheet
	Sheet string `env:"IMPORT_XLSX_SHEET"`
}

// SessionConfig configures where suspended imports are kept between decisions.
type SessionConfig struct {
	// Backend is "memory" or "redis"
	Backend   string        `env:"SESSION_BACKEND" default:"memory"`
	RedisURL  string        `env:"REDIS_URL"`
	KeyPrefix string        `env:"SESSION_KEY_PREFIX" default:"stockimport:import:"`
	TTL       time.Duration `env:"SESSION_TTL" default:"24h"`
}

// EventsConfig configures import completion events. No brokers disables them.
type EventsConfig struct {
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	Topic        string   `env:"KAFKA_TOPIC" default:"inventory.import.completed"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Forwarded-For / X-Real-IP headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys is a comma-separated list of accepted X-API-Key values
	APIKeys       []string `env:"API_KEYS"`
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`

	// TenantHeader names the request header carrying the tenant id
	TenantHeader string `env:"TENANT_HEADER" default:"X-Tenant-ID"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" default:"true"`
	Path    string `env:"METRICS_PATH" default:"/metrics"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// UsesMemory reports whether inventory is kept in process memory.
func (c *StoreConfig) UsesMemory() bool {
	return strings.EqualFold(c.Backend, BackendMemory)
}

// UsesRedis reports whether suspended imports are kept in Redis.
func (c *SessionConfig) UsesRedis() bool {
	return strings.EqualFold(c.Backend, BackendRedis)
}

// EventsEnabled reports whether a Kafka publisher should be created.
func (c *EventsConfig) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
