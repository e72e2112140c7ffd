package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Storage driver selection
	Storage StorageConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// External price sources
	Pricing PricingConfig

	// Session and third-party login settings
	Auth AuthConfig

	// Background snapshot recorder
	Snapshot SnapshotConfig

	// Logging configuration
	Log LogConfig
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL             string        `envconfig:"DATABASE_URL" default:""`
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"portfolio"`
	Password        string        `envconfig:"DB_PASSWORD" default:"portfolio"`
	Name            string        `envconfig:"DB_NAME" default:"portfolio_tracker"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8001"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	AuthRateLimit   int           `envconfig:"API_AUTH_RATE_LIMIT_PER_MIN" default:"20"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	FrontendDir     string        `envconfig:"FRONTEND_DIR" default:""`
}

// PricingConfig holds settings for the external price and FX sources
type PricingConfig struct {
	BinanceBaseURL  string        `envconfig:"PRICING_BINANCE_BASE_URL" default:"https://api.binance.com"`
	BinanceAPIKey   string        `envconfig:"BINANCE_API_KEY" default:""`
	QuoteAsset      string        `envconfig:"PRICING_QUOTE_ASSET" default:"USDT"`
	YahooBaseURL    string        `envconfig:"PRICING_YAHOO_BASE_URL" default:"https://query1.finance.yahoo.com"`
	FXURL           string        `envconfig:"PRICING_FX_URL" default:"https://api.exchangerate-api.com/v4/latest/USD"`
	APITimeout      time.Duration `envconfig:"PRICING_API_TIMEOUT" default:"5s"`
	ScrapeTimeout   time.Duration `envconfig:"PRICING_SCRAPE_TIMEOUT" default:"10s"`
	ScrapeUserAgent string        `envconfig:"PRICING_SCRAPE_USER_AGENT" default:"Mozilla/5.0"`
	FXCacheTTL      time.Duration `envconfig:"FX_CACHE_TTL" default:"10m"`
	Concurrency     int           `envconfig:"PRICING_CONCURRENCY" default:"8"`
}

// AuthConfig holds session settings
type AuthConfig struct {
	SessionTTL      time.Duration `envconfig:"AUTH_SESSION_TTL" default:"168h"`
	SessionDataURL  string        `envconfig:"AUTH_SESSION_DATA_URL" default:"https://demobackend.emergentagent.com/auth/v1/env/oauth/session-data"`
	ProviderTimeout time.Duration `envconfig:"AUTH_PROVIDER_TIMEOUT" default:"10s"`
	CookieSecure    bool          `envconfig:"AUTH_COOKIE_SECURE" default:"true"`
}

// SnapshotConfig holds settings for the periodic snapshot recorder
type SnapshotConfig struct {
	Interval    time.Duration `envconfig:"SNAPSHOT_INTERVAL" default:"24h"`
	RunOnStart  bool          `envconfig:"SNAPSHOT_RUN_ON_START" default:"true"`
	Workers     int           `envconfig:"SNAPSHOT_WORKERS" default:"4"`
	MetricsPort int           `envconfig:"SNAPSHOT_METRICS_PORT" default:"8080"`
	// Embedded runs the scheduler inside the API process, required with the memory driver
	Embedded bool `envconfig:"SNAPSHOT_EMBEDDED" default:"false"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from a .env file (when present) and environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no sensible default
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Pricing.Concurrency < 1 {
		return fmt.Errorf("PRICING_CONCURRENCY must be positive, got %d", c.Pricing.Concurrency)
	}
	if c.Snapshot.Workers < 1 {
		return fmt.Errorf("SNAPSHOT_WORKERS must be positive, got %d", c.Snapshot.Workers)
	}
	if c.Snapshot.Interval <= 0 {
		return fmt.Errorf("SNAPSHOT_INTERVAL must be positive, got %s", c.Snapshot.Interval)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
// DATABASE_URL wins over the discrete DB_* settings.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		// Heroku-style URLs use the postgres:// scheme
		if strings.HasPrefix(c.URL, "postgres://") {
			return "postgresql://" + strings.TrimPrefix(c.URL, "postgres://")
		}
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
