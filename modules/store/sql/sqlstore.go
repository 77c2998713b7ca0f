// Package sqlstore implements the persistent store module backing the
// analysis pipeline. One DSN selects the engine: SQLite via modernc.org/sqlite
// (pure Go, no CGO) for single-node deployments, or PostgreSQL via pgx for
// shared ones. Schema is managed by the versioned migration runner.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/storage"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ storage.Store     = (*Store)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module wires the SQL store into the module lifecycle.
type Module struct {
	config Config
	db     *sql.DB
	store  *Store
	runner *storage.Runner
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "store.sql",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("store: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner. It opens the database, applies
// pending migrations, and publishes the store for other modules.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	if m.config.DSN == "" {
		m.config.DSN = filepath.Join(ctx.DataDir, DefaultDBFile)
	}

	db, err := Open(context.TODO(), m.config)
	if err != nil {
		return err
	}

	dialect := m.config.Dialect()

	runner, err := storage.NewRunner(db, dialect, storage.Migrations, m.logger)
	if err != nil {
		_ = db.Close()
		return err
	}

	if m.config.migrateEnabled() {
		applied, err := runner.Upgrade(context.TODO())
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("store: migrate: %w", err)
		}
		if applied > 0 {
			m.logger.Info("schema migrated", "applied", applied)
		}
	}

	m.db = db
	m.runner = runner
	m.store = NewStore(db, dialect)

	ctx.RegisterService("store", m.store)
	ctx.RegisterService("store.migrations", m.runner)

	m.logger.Info("sql store provisioned", "dialect", string(dialect))

	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}
	if err := m.db.PingContext(context.TODO()); err != nil {
		return fmt.Errorf("store: ping failed: %w", err)
	}
	return nil
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("sql store stopping")
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Store returns the storage implementation.
func (m *Module) Store() storage.Store {
	return m.store
}

// Migrations returns the migration runner.
func (m *Module) Migrations() *storage.Runner {
	return m.runner
}
