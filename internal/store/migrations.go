package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const migrationsTable = "schema_migrations"

// migration is one versioned schema step. Statements run inside a single
// transaction; a recorded name is never re-applied.
type migration struct {
	Name       string
	Statements []string
}

// migrations are embedded rather than read from disk: the cache database
// travels with the client and must always be able to build itself.
var migrations = []migration{
	{
		Name: "0001_safety_evaluations",
		Statements: []string{`
			CREATE TABLE IF NOT EXISTS safety_evaluations (
				id              INTEGER PRIMARY KEY,
				pilot_name      TEXT NOT NULL,
				health_score    INTEGER NOT NULL,
				weather_score   INTEGER NOT NULL,
				aircraft_score  INTEGER NOT NULL,
				mission_score   INTEGER NOT NULL,
				risk_level      TEXT NOT NULL,
				total_score     INTEGER NOT NULL,
				timestamp       TEXT NOT NULL,
				mitigation_plan TEXT
			);`,
			`CREATE INDEX IF NOT EXISTS idx_safety_evaluations_pilot
				ON safety_evaluations(pilot_name);`,
		},
	},
	{
		Name: "0002_custom_checklists",
		Statements: []string{`
			CREATE TABLE IF NOT EXISTS custom_checklists (
				id         TEXT PRIMARY KEY,
				title      TEXT NOT NULL,
				items      TEXT NOT NULL,
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL
			);`,
		},
	},
}

func migrate(ctx context.Context, db *sql.DB) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name       TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		);`, migrationsTable)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("store: ensure migrations table: %w", err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Name] {
			continue
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := applyMigration(ctx, tx, m); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store: apply migration %s: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(ctx context.Context, tx *sql.Tx, m migration) error {
	for _, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s(name, applied_at) VALUES (?, ?)`, migrationsTable),
		m.Name, time.Now().UTC().Format(time.RFC3339))
	return err
}

func appliedMigrations(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT name FROM %s`, migrationsTable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}
