package database

import (
	"fmt"

	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are embedded rather than read from disk: the database is
// in-memory, so they run on every start anyway.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_departments",
		SQL: `
			CREATE TABLE IF NOT EXISTS departments (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				designation TEXT NOT NULL,
				secret      TEXT NOT NULL
			);
		`,
	},
	{
		Version: 2,
		Name:    "create_invoices",
		SQL: `
			CREATE TABLE IF NOT EXISTS invoices (
				id              TEXT PRIMARY KEY,
				file_name       TEXT NOT NULL,
				deposit_date    DATETIME NOT NULL,
				expense_type    TEXT NOT NULL,
				amount          REAL NOT NULL DEFAULT 0,
				department_id   TEXT NOT NULL,
				procurement_ref TEXT NOT NULL DEFAULT '',
				status          TEXT NOT NULL,
				is_invalid      INTEGER NOT NULL DEFAULT 0,
				age_days        INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status);
			CREATE INDEX IF NOT EXISTS idx_invoices_department ON invoices(department_id);
		`,
	},
	{
		Version: 3,
		Name:    "create_comments",
		SQL: `
			CREATE TABLE IF NOT EXISTS comments (
				id         TEXT PRIMARY KEY,
				invoice_id TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
				author     TEXT NOT NULL,
				text       TEXT NOT NULL,
				timestamp  DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_comments_invoice ON comments(invoice_id);
		`,
	},
}

// Migrator handles database migrations
type Migrator struct {
	db     *DB
	logger *zap.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
	}
}

// createMigrationsTable creates the migrations tracking table
func (m *Migrator) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := m.db.Exec(query)
	return err
}

// getAppliedMigrations returns the list of applied migration versions
func (m *Migrator) getAppliedMigrations() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// RunMigrations executes all pending embedded migrations
func (m *Migrator) RunMigrations() error {
	if err := m.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}

		if _, err := m.db.Exec(migration.SQL); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}
		if _, err := m.db.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version, migration.Name,
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		m.logger.Info("Applied migration",
			zap.Int("version", migration.Version),
			zap.String("name", migration.Name))
	}

	return nil
}
