package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends
const (
	BackendCosmic   = "cosmic"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `envPrefix:"SERVER_"`

	// Which content store serves photos and comments
	StoreBackend string `env:"STORE_BACKEND" envDefault:"cosmic"`

	// Hosted content store configuration
	Cosmic CosmicConfig `envPrefix:"COSMIC_"`

	// Database configuration (postgres backend)
	Database DatabaseConfig `envPrefix:"DB_"`

	// Local media configuration (postgres backend)
	Media MediaConfig `envPrefix:"MEDIA_"`

	// Email ingestion configuration
	Ingest IngestConfig

	// Admin and rate limit settings
	Security SecurityConfig

	// Photo read cache
	Cache CacheConfig `envPrefix:"PHOTO_CACHE_"`

	// Logging configuration
	Log LogConfig `envPrefix:"LOG_"`
}

// CacheConfig sizes the photo-by-slug cache; a zero TTL disables it
type CacheConfig struct {
	Size int           `env:"SIZE" envDefault:"256"`
	TTL  time.Duration `env:"TTL" envDefault:"1m"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	// Proxies whose X-Forwarded-For is believed; empty trusts none
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// CosmicConfig holds hosted content API settings
type CosmicConfig struct {
	BucketSlug string        `env:"BUCKET_SLUG"`
	ReadKey    string        `env:"READ_KEY"`
	WriteKey   string        `env:"WRITE_KEY"`
	APIURL     string        `env:"API_URL" envDefault:"https://api.cosmicjs.com/v3"`
	UploadURL  string        `env:"UPLOAD_URL" envDefault:"https://workers.cosmicjs.com/v3"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string        `env:"HOST" envDefault:"localhost"`
	Port           string        `env:"PORT" envDefault:"5432"`
	User           string        `env:"USER" envDefault:"postgres"`
	Password       string        `env:"PASSWORD" envDefault:"postgres"`
	Name           string        `env:"NAME" envDefault:"photo_gallery"`
	SSLMode        string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns   int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns   int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	MaxLifetime    time.Duration `env:"MAX_LIFETIME" envDefault:"5m"`
	MigrationsPath string        `env:"MIGRATIONS_PATH" envDefault:"./migrations"`
}

// MediaConfig holds local media store settings
type MediaConfig struct {
	Dir       string `env:"DIR" envDefault:"./data/media"`
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080/media"`
}

// IngestConfig holds email-to-photo settings
type IngestConfig struct {
	AllowedSenders []string `env:"ALLOWED_SENDERS" envSeparator:"," envDefault:"jeffhovingaphotos@gmail.com,jeffhovingaphotos@gail.com"`
	TargetEmail    string   `env:"WEBHOOK_TARGET_EMAIL" envDefault:"jeffhovingaphotos@gmail.com"`
	WebhookSecret  string   `env:"WEBHOOK_SECRET"`
	MaxBodyBytes   int64    `env:"WEBHOOK_MAX_BODY_BYTES" envDefault:"67108864"` // 64MB
	MediaFolder    string   `env:"INGEST_MEDIA_FOLDER" envDefault:"email-uploads"`
	Concurrency    int      `env:"INGEST_CONCURRENCY" envDefault:"4"`
}

// SecurityConfig holds admin auth and rate limit settings
type SecurityConfig struct {
	AdminToken     string  `env:"ADMIN_TOKEN"`
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"2"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"` // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendCosmic:
		if c.Cosmic.BucketSlug == "" {
			return fmt.Errorf("COSMIC_BUCKET_SLUG is required")
		}
		if c.Cosmic.ReadKey == "" {
			return fmt.Errorf("COSMIC_READ_KEY is required")
		}
		if c.Cosmic.WriteKey == "" {
			return fmt.Errorf("COSMIC_WRITE_KEY is required")
		}
	case BackendPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: %s, %s", BackendCosmic, BackendPostgres)
	}

	if len(c.Ingest.AllowedSenders) == 0 {
		return fmt.Errorf("ALLOWED_SENDERS must list at least one address")
	}
	if c.Ingest.TargetEmail == "" {
		return fmt.Errorf("WEBHOOK_TARGET_EMAIL is required")
	}
	if c.Ingest.Concurrency < 1 {
		c.Ingest.Concurrency = 1
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
