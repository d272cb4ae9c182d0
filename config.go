package flatdoc

import (
	"context"
	"time"
)

// Supported relational drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Defaults for optional configuration
const (
	DefaultCacheTTL        = 5 * time.Minute
	DefaultFilePermissions = 0644
	DefaultDirPermissions  = 0755
)

// Config describes how to reach the relational store and, optionally, the
// Redis result cache
type Config struct {
	Driver    string        // "postgres" or "sqlite"
	DSN       string        // connection string, or a file path / ":memory:" for sqlite
	RedisAddr string        // optional; enables the read-through result cache
	CacheTTL  time.Duration // cached result lifetime, DefaultCacheTTL when zero
}

// Validate checks if the Config is valid
func (c Config) Validate() error {
	switch c.Driver {
	case DriverPostgres, DriverSQLite:
	case "":
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "Driver",
			"reason": "driver is required",
		})
	default:
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "Driver",
			"value":  c.Driver,
			"reason": "unsupported driver",
		})
	}
	if c.DSN == "" {
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "DSN",
			"reason": "connection string is required",
		})
	}
	if c.CacheTTL < 0 {
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "CacheTTL",
			"value":  c.CacheTTL,
			"reason": "must be non-negative",
		})
	}
	return nil
}

// Open validates cfg and connects to the configured relational store
func Open(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Driver == DriverPostgres {
		return OpenPostgres(ctx, cfg.DSN)
	}
	return OpenSQLite(cfg.DSN)
}
