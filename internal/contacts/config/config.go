package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/caarlos0/env/v6"
)

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port string `env:"PORT" envDefault:"3000"`
}

// Addr returns host:port for fiber.App.Listen
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// RateLimitConfig configures the per-client token bucket
type RateLimitConfig struct {
	Enabled bool    `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RPS     float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	Burst   int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
	// TrustXForwardedFor keys clients by X-Forwarded-For instead of the socket address
	TrustXForwardedFor bool `env:"RATE_LIMIT_TRUST_XFF" envDefault:"false"`
}

// RedisConfig configures the optional change-feed store
type RedisConfig struct {
	Enabled         bool   `env:"REDIS_ENABLED" envDefault:"false"`
	Host            string `env:"REDIS_HOST" envDefault:"localhost"`
	Port            string `env:"REDIS_PORT" envDefault:"6379"`
	Password        string `env:"REDIS_PASSWORD"`
	Database        int    `env:"REDIS_DB" envDefault:"0"`
	Stream          string `env:"REDIS_STREAM" envDefault:"contacts:events"`
	StreamMaxLength int64  `env:"REDIS_STREAM_MAX_LEN" envDefault:"10000"`
	PoolSize        int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MaxRetries      int    `env:"REDIS_MAX_RETRIES" envDefault:"3"`
}

// GetAddr returns the Redis address
func (r RedisConfig) GetAddr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

// Config holds all configuration for the contacts service.
type Config struct {
	MongoDBURI         string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName       string `env:"DATABASE_NAME" envDefault:"contacts_db"`
	ContactsCollection string `env:"CONTACTS_COLLECTION" envDefault:"contacts"`
	CountersCollection string `env:"COUNTERS_COLLECTION" envDefault:"counters"`
	DocsEnabled        bool   `env:"DOCS_ENABLED" envDefault:"true"`

	Server    ServerConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load configuration from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values env defaults cannot guarantee
func (c *Config) Validate() error {
	if c.MongoDBURI == "" {
		return errors.New("MONGODB_URI must not be empty")
	}
	if c.DatabaseName == "" {
		return errors.New("DATABASE_NAME must not be empty")
	}
	if c.ContactsCollection == "" || c.CountersCollection == "" {
		return errors.New("collection names must not be empty")
	}
	if c.ContactsCollection == c.CountersCollection {
		return fmt.Errorf("contacts and counters collections must differ, both are %q", c.ContactsCollection)
	}
	if c.Server.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 {
			return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimit.RPS)
		}
		if c.RateLimit.Burst < 1 {
			return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimit.Burst)
		}
	}
	if c.Redis.Enabled && c.Redis.Stream == "" {
		return errors.New("REDIS_STREAM must not be empty when REDIS_ENABLED is set")
	}
	return nil
}
