package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxCacheTTLSeconds bounds how long a cached booth listing may lag behind
// a warning or lock window boundary.
const MaxCacheTTLSeconds = 60

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Booking    BookingConfig    `yaml:"booking"`
	Sweeper    SweeperConfig    `yaml:"sweeper"`
	Auth       AuthConfig       `yaml:"auth"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port                  int           `yaml:"port"`
	RateLimitPerSec       float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst        int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds       int           `yaml:"cache_ttl_seconds"`
	RequestTimeoutSeconds int           `yaml:"request_timeout_seconds"`
	RequestTimeout        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	EnableExclusion        bool   `yaml:"enable_exclusion_constraint"`
}

// BookingConfig holds booking policy knobs.
type BookingConfig struct {
	CancellationCutoffMinutes int     `yaml:"cancellation_cutoff_minutes"`
	DefaultCostPerMinute      float64 `yaml:"default_cost_per_minute"`
	MaxSessionMinutes         int     `yaml:"max_session_minutes"`
	MaxReservationMinutes     int     `yaml:"max_reservation_minutes"`
}

// SweeperConfig holds the lifecycle sweeper configuration.
type SweeperConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// AuthConfig describes how identity-provider session tokens are verified.
type AuthConfig struct {
	PublicKeyPEM string `yaml:"public_key_pem"`
	HMACSecret   string `yaml:"hmac_secret"`
	Issuer       string `yaml:"issuer"`
	LeewaySecs   int    `yaml:"leeway_seconds"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero values with their defaults.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 10
	}
	if cfg.Server.CacheTTLSeconds > MaxCacheTTLSeconds {
		cfg.Server.CacheTTLSeconds = MaxCacheTTLSeconds
	}
	if cfg.Server.RequestTimeoutSeconds <= 0 {
		cfg.Server.RequestTimeoutSeconds = 10
	}
	cfg.Server.RequestTimeout = time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Booking.CancellationCutoffMinutes <= 0 {
		cfg.Booking.CancellationCutoffMinutes = 30
	}
	if cfg.Booking.DefaultCostPerMinute <= 0 {
		cfg.Booking.DefaultCostPerMinute = 0.50
	}
	if cfg.Booking.MaxSessionMinutes <= 0 {
		cfg.Booking.MaxSessionMinutes = 240
	}
	if cfg.Booking.MaxReservationMinutes <= 0 {
		cfg.Booking.MaxReservationMinutes = 240
	}

	if cfg.Sweeper.IntervalSeconds <= 0 {
		cfg.Sweeper.IntervalSeconds = 30
	}
	cfg.Sweeper.Interval = time.Duration(cfg.Sweeper.IntervalSeconds) * time.Second

	if cfg.Auth.LeewaySecs <= 0 {
		cfg.Auth.LeewaySecs = 5
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
