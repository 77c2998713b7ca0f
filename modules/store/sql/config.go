package sqlstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/azura-ai/azura/internal/storage"
)

// DefaultDBFile is the SQLite filename used when no DSN is configured.
const DefaultDBFile = "azura.db"

const (
	defaultBusyTimeout  = 5000
	defaultMaxOpenConns = 10
)

// Config holds the SQL store module configuration.
type Config struct {
	// DSN selects the database. A postgres:// or postgresql:// URL opens
	// PostgreSQL via pgx; anything else is treated as a SQLite file path.
	// Defaults to {DataDir}/azura.db.
	DSN string `yaml:"dsn"`

	// WAL enables WAL journal mode for concurrent reads (SQLite only).
	// Defaults to true.
	WAL *bool `yaml:"wal"`

	// BusyTimeout is the milliseconds to wait on a busy lock (SQLite only).
	// Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`

	// MaxOpenConns caps the connection pool (PostgreSQL only; SQLite is
	// always pinned to one connection). Defaults to 10.
	MaxOpenConns int `yaml:"max_open_conns"`

	// ConnMaxLifetime recycles pooled connections (PostgreSQL only).
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`

	// Migrate runs pending schema migrations during provisioning.
	// Defaults to true; disable when migrations are driven externally.
	Migrate *bool `yaml:"migrate"`
}

func (c *Config) defaults() {
	if c.WAL == nil {
		t := true
		c.WAL = &t
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = defaultMaxOpenConns
	}
	if c.Migrate == nil {
		t := true
		c.Migrate = &t
	}
}

func (c *Config) walEnabled() bool {
	return c.WAL == nil || *c.WAL
}

func (c *Config) migrateEnabled() bool {
	return c.Migrate == nil || *c.Migrate
}

// Dialect returns the SQL dialect the DSN selects.
func (c *Config) Dialect() storage.Dialect {
	if strings.HasPrefix(c.DSN, "postgres://") || strings.HasPrefix(c.DSN, "postgresql://") {
		return storage.DialectPostgres
	}
	return storage.DialectSQLite
}

func (c *Config) validate() error {
	if c.BusyTimeout < 0 {
		return fmt.Errorf("store: busy_timeout must be non-negative, got %d", c.BusyTimeout)
	}
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("store: max_open_conns must be non-negative, got %d", c.MaxOpenConns)
	}
	return nil
}
