package sqlite

import (
	"database/sql"
	"fmt"
)

type migration struct {
	Version int
	Name    string
	Apply   func(tx *sql.Tx) error
}

// MigrationRunner applies pending schema migrations to a SQLite database.
type MigrationRunner struct {
	db         *sql.DB
	migrations []migration
}

func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{
		db: db,
		migrations: []migration{
			{Version: 1, Name: "initial_schema", Apply: migrateV001},
		},
	}
}

// Run enables foreign keys, ensures schema_migrations exists and applies
// each migration not yet recorded.
func (r *MigrationRunner) Run() error {
	if _, err := r.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, m := range r.migrations {
		var count int
		if err := r.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}
		if err := r.apply(m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func (r *MigrationRunner) apply(m migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.Apply(tx); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}

func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE domain_category_rules (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			domain_pattern TEXT NOT NULL,
			category       TEXT NOT NULL,
			priority       INTEGER NOT NULL DEFAULT 1,
			created_at     DATETIME NOT NULL
		)`,
		`CREATE INDEX idx_domain_category_rules_user ON domain_category_rules (user_id)`,
		`CREATE TABLE sessions (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			url              TEXT NOT NULL,
			domain           TEXT NOT NULL DEFAULT '',
			start_time       DATETIME NOT NULL,
			end_time         DATETIME NOT NULL,
			duration_seconds REAL,
			clicks           INTEGER NOT NULL DEFAULT 0,
			keypresses       INTEGER NOT NULL DEFAULT 0,
			created_at       DATETIME NOT NULL
		)`,
		`CREATE INDEX idx_sessions_user_start ON sessions (user_id, start_time)`,
		`CREATE TABLE content_analysis (
			url             TEXT PRIMARY KEY,
			domain          TEXT NOT NULL DEFAULT '',
			category        TEXT,
			category_group  TEXT,
			sentiment_label TEXT,
			sentiment_score REAL,
			emotion_happy   REAL NOT NULL DEFAULT 0,
			emotion_sad     REAL NOT NULL DEFAULT 0,
			emotion_angry   REAL NOT NULL DEFAULT 0,
			emotion_neutral REAL NOT NULL DEFAULT 0,
			updated_at      DATETIME NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
