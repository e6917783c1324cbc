package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultAPIBaseURL is used when STOREFRONT_API_BASE_URL is not set.
const DefaultAPIBaseURL = "http://localhost:8080/api"

// Store drivers accepted by StoreConfig.Driver.
const (
	StoreDriverFile     = "file"
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

// Config aggregates runtime configuration for the storefront client binaries.
type Config struct {
	API      APIConfig
	Store    StoreConfig
	Console  ServerConfig
	Postgres PostgresConfig
	MinIO    MinIOConfig
	Report   ReportConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

// APIConfig points the gateway at the backend REST API.
type APIConfig struct {
	BaseURL         string
	Timeout         time.Duration
	CoalesceRefresh bool
}

// StoreConfig selects and parameterizes the credential store backend.
type StoreConfig struct {
	Driver     string
	Path       string
	Namespace  string
	Passphrase string
}

// ServerConfig parameterizes the console HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries MinIO connection and bucket information for report archives.
// An empty Endpoint disables archiving.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// Enabled reports whether an object store was configured.
func (m MinIOConfig) Enabled() bool {
	return strings.TrimSpace(m.Endpoint) != ""
}

// ReportConfig groups report export settings.
type ReportConfig struct {
	URLTTL time.Duration
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		API: APIConfig{
			BaseURL:         strings.TrimRight(getString("STOREFRONT_API_BASE_URL", DefaultAPIBaseURL), "/"),
			Timeout:         getDuration("STOREFRONT_API_TIMEOUT", 30*time.Second),
			CoalesceRefresh: getBool("STOREFRONT_API_COALESCE_REFRESH", false),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getString("STOREFRONT_STORE_DRIVER", StoreDriverFile)),
			Path:       getString("STOREFRONT_STORE_PATH", defaultStorePath()),
			Namespace:  getString("STOREFRONT_STORE_NAMESPACE", "storefront"),
			Passphrase: getString("STOREFRONT_STORE_PASSPHRASE", ""),
		},
		Console: ServerConfig{
			Host:         getString("STOREFRONT_CONSOLE_HOST", "127.0.0.1"),
			Port:         getInt("STOREFRONT_CONSOLE_PORT", 3000),
			ReadTimeout:  getDuration("STOREFRONT_CONSOLE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("STOREFRONT_CONSOLE_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("STOREFRONT_CONSOLE_IDLE_TIMEOUT", 60*time.Second),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "storefront"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "storefront"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", ""),
			AccessKeyID:     getString("MINIO_ROOT_USER", "storefront"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "storefront-reports"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Report: ReportConfig{
			URLTTL: getDuration("STOREFRONT_REPORT_URL_TTL", 15*time.Minute),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("STOREFRONT_METRICS_PATH", "/metrics"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getString("LOG_LEVEL", "info")),
			Format: strings.ToLower(getString("LOG_FORMAT", "json")),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("STOREFRONT_API_BASE_URL must not be empty")
	}
	switch c.Store.Driver {
	case StoreDriverFile, StoreDriverMemory, StoreDriverPostgres:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == StoreDriverFile && c.Store.Path == "" {
		return fmt.Errorf("STOREFRONT_STORE_PATH is required for the file store")
	}
	return nil
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".storefront/credentials.json"
	}
	return dir + "/storefront/credentials.json"
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
