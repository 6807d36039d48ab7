package common

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `envPrefix:"DB_"`
	Server   ServerConfig
	Share    ShareConfig  `envPrefix:"SHARE_"`
	Ingest   IngestConfig `envPrefix:"INGEST_"`
	Export   ExportConfig `envPrefix:"EXPORT_"`
}

// DatabaseConfig holds database-related configuration. A postgres:// URL
// selects the Postgres backend; anything else is treated as a SQLite path.
type DatabaseConfig struct {
	DSN              string        `env:"URL" envDefault:"insights.db"`
	MaxConns         int32         `env:"MAX_CONNS" envDefault:"20"`
	MinConns         int32         `env:"MIN_CONNS" envDefault:"5"`
	MaxConnLifetime  time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"30m"`
	MaxConnIdleTime  time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DialTimeout      time.Duration `env:"DIAL_TIMEOUT" envDefault:"3s"`
	StatementTimeout time.Duration `env:"STATEMENT_TIMEOUT" envDefault:"0s"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":8080"`
}

// ShareConfig holds share-link configuration
type ShareConfig struct {
	BaseURL       string        `env:"BASE_URL" envDefault:"http://localhost:3000"`
	DefaultTTL    time.Duration `env:"DEFAULT_TTL" envDefault:"0s"`    // 0 = never expires
	PurgeInterval time.Duration `env:"PURGE_INTERVAL" envDefault:"1h"` // 0 disables the sweep
}

// IngestConfig holds dataset ingestion configuration
type IngestConfig struct {
	Path     string        `env:"PATH"`      // dataset loaded at startup
	WatchDir string        `env:"WATCH_DIR"` // uploads dropped here replace the dataset
	Debounce time.Duration `env:"DEBOUNCE" envDefault:"500ms"`
}

// ExportConfig holds background export configuration
type ExportConfig struct {
	Dir        string        `env:"DIR" envDefault:"./exports"`
	Workers    int           `env:"WORKERS" envDefault:"2"`
	QueueSize  int           `env:"QUEUE_SIZE" envDefault:"64"`
	JobTimeout time.Duration `env:"JOB_TIMEOUT" envDefault:"1m"`
}

// LoadConfig loads configuration from the environment, after merging an
// optional .env file from the working directory.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, NewAppError(CodeConfig, "load .env", err)
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, NewAppError(CodeConfig, fmt.Sprintf("parse env: %v", err), ErrInvalidInput)
	}
	return cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError(CodeConfig, "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Share.BaseURL == "" {
		return NewAppError(CodeConfig, "SHARE_BASE_URL is required", ErrInvalidInput)
	}
	if c.Share.DefaultTTL < 0 {
		return NewAppError(CodeConfig, "SHARE_DEFAULT_TTL must not be negative", ErrInvalidInput)
	}
	if c.Export.Workers <= 0 {
		return NewAppError(CodeConfig, "EXPORT_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
