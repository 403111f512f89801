package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
// Statements must be valid in both SQLite and Postgres.
type Migration struct {
	Description string
	Statements  []string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				username TEXT UNIQUE NOT NULL,
				email TEXT,
				goals TEXT,
				budget DOUBLE PRECISION,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,

			`CREATE TABLE IF NOT EXISTS product_events (
				id TEXT PRIMARY KEY,
				hash TEXT UNIQUE NOT NULL,
				user_id TEXT NOT NULL REFERENCES users(id),
				session_id TEXT,
				platform TEXT,
				product_url TEXT,
				product_title TEXT,
				price DOUBLE PRECISION,
				occurred_at TIMESTAMP NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_product_events_user ON product_events(user_id)`,
		},
	},
	{
		Version:     2,
		Description: "Index events by time for range queries",
		Statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_product_events_user_time ON product_events(user_id, occurred_at)`,
			// Superseded by the composite index
			`DROP INDEX IF EXISTS idx_product_events_user`,
		},
	},
	{
		Version:     3,
		Description: "Index events by platform",
		Statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_product_events_platform ON product_events(platform)`,
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if err := s.ensureVersionTable(ctx); err != nil {
		return err
	}

	// Get current version
	currentVersion, err := s.schemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		for _, query := range migration.Statements {
			if _, execErr := tx.ExecContext(ctx, query); execErr != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d failed: query '%s': %w", migration.Version, query, execErr)
			}
		}

		// Update version
		if execErr := s.setSchemaVersion(ctx, tx, migration.Version); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description,
			"dialect", s.dialect)
	}

	// Verify we're at the expected schema version
	finalVersion, err := s.schemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the applied schema version.
func (s *SQLStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := s.ensureVersionTable(ctx); err != nil {
		return 0, err
	}
	return s.schemaVersion(ctx)
}

// SQLite tracks the version in PRAGMA user_version; Postgres has no
// equivalent, so it gets a one-row table.
func (s *SQLStorage) ensureVersionTable(ctx context.Context) error {
	if s.dialect != DialectPostgres {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

func (s *SQLStorage) schemaVersion(ctx context.Context) (int, error) {
	var version int
	if s.dialect != DialectPostgres {
		err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
		return version, err
	}

	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	return version, err
}

func (s *SQLStorage) setSchemaVersion(ctx context.Context, tx *sql.Tx, version int) error {
	if s.dialect != DialectPostgres {
		_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version))
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO schema_version (version) VALUES (?)`), version)
	return err
}
