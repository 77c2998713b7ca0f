package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Migration is a single versioned schema change with forward and reverse
// statement lists. Statements are executed in order inside one transaction.
type Migration struct {
	Version int
	Name    string
	Up      []string
	Down    []string
}

// AppliedMigration is a row from the schema_migrations tracking table.
type AppliedMigration struct {
	Version   int
	Name      string
	AppliedAt time.Time
}

// ErrNoMigrations is returned by Downgrade when nothing is applied.
var ErrNoMigrations = errors.New("no applied migrations")

// Runner applies and rolls back migrations against a database.
// It is not safe for concurrent use; run migrations from one process.
type Runner struct {
	db         *sql.DB
	dialect    Dialect
	migrations []Migration
	logger     *slog.Logger
}

// NewRunner creates a migration runner over db. The migrations slice must
// be sorted by ascending version with no duplicates; this is validated.
func NewRunner(db *sql.DB, dialect Dialect, migrations []Migration, logger *slog.Logger) (*Runner, error) {
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version <= migrations[i-1].Version {
			return nil, fmt.Errorf("storage: migrations out of order at version %d", migrations[i].Version)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{db: db, dialect: dialect, migrations: migrations, logger: logger}, nil
}

// ensureTable creates the schema_migrations tracking table.
func (r *Runner) ensureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    BIGINT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("storage: create schema_migrations: %w", err)
	}
	return nil
}

// Current returns the highest applied migration version, or 0 when the
// database is at the baseline.
func (r *Runner) Current(ctx context.Context) (int, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, err
	}

	var version sql.NullInt64
	err := r.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("storage: read current version: %w", err)
	}
	return int(version.Int64), nil
}

// History returns all applied migrations in ascending version order.
func (r *Runner) History(ctx context.Context) ([]AppliedMigration, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT version, name, applied_at FROM schema_migrations ORDER BY version ASC")
	if err != nil {
		return nil, fmt.Errorf("storage: query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []AppliedMigration
	for rows.Next() {
		var (
			m         AppliedMigration
			appliedAt string
		)
		if err := rows.Scan(&m.Version, &m.Name, &appliedAt); err != nil {
			return nil, fmt.Errorf("storage: scan history row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, appliedAt); err == nil {
			m.AppliedAt = t
		}
		history = append(history, m)
	}
	return history, rows.Err()
}

// Pending returns migrations newer than the current version.
func (r *Runner) Pending(ctx context.Context) ([]Migration, error) {
	current, err := r.Current(ctx)
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, m := range r.migrations {
		if m.Version > current {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Upgrade applies all pending migrations. Each migration runs in its own
// transaction; a failure leaves earlier migrations applied.
func (r *Runner) Upgrade(ctx context.Context) (int, error) {
	pending, err := r.Pending(ctx)
	if err != nil {
		return 0, err
	}

	for _, m := range pending {
		if err := r.apply(ctx, m); err != nil {
			return 0, err
		}
		r.logger.Info("migration applied", "version", m.Version, "name", m.Name)
	}

	return len(pending), nil
}

// Downgrade rolls back the most recent steps applied migrations.
// steps <= 0 rolls back a single migration.
func (r *Runner) Downgrade(ctx context.Context, steps int) (int, error) {
	if steps <= 0 {
		steps = 1
	}

	history, err := r.History(ctx)
	if err != nil {
		return 0, err
	}
	if len(history) == 0 {
		return 0, ErrNoMigrations
	}

	rolled := 0
	for i := len(history) - 1; i >= 0 && rolled < steps; i-- {
		m, ok := r.migrationByVersion(history[i].Version)
		if !ok {
			return rolled, fmt.Errorf("storage: no definition for applied version %d", history[i].Version)
		}
		if err := r.revert(ctx, m); err != nil {
			return rolled, err
		}
		r.logger.Info("migration rolled back", "version", m.Version, "name", m.Name)
		rolled++
	}

	return rolled, nil
}

func (r *Runner) migrationByVersion(version int) (Migration, bool) {
	for _, m := range r.migrations {
		if m.Version == version {
			return m, true
		}
	}
	return Migration{}, false
}

// apply runs a migration's Up statements and records it, in one transaction.
func (r *Runner) apply(ctx context.Context, m Migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin migration %d: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.Up {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("storage: migration %d (%s): %w\nstatement: %s", m.Version, m.Name, err, stmt)
		}
	}

	_, err = tx.ExecContext(ctx,
		r.dialect.Rebind("INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)"),
		m.Version, m.Name, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storage: record migration %d: %w", m.Version, err)
	}

	return tx.Commit()
}

// revert runs a migration's Down statements and removes its record.
func (r *Runner) revert(ctx context.Context, m Migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin rollback %d: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.Down {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("storage: rollback %d (%s): %w\nstatement: %s", m.Version, m.Name, err, stmt)
		}
	}

	_, err = tx.ExecContext(ctx,
		r.dialect.Rebind("DELETE FROM schema_migrations WHERE version = ?"),
		m.Version,
	)
	if err != nil {
		return fmt.Errorf("storage: unrecord migration %d: %w", m.Version, err)
	}

	return tx.Commit()
}
