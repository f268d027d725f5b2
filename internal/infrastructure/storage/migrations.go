package storage

import (
	"database/sql"
	"fmt"
	"sort"
)

// Migration is one versioned schema step.
type Migration struct {
	Version int
	Name    string
	Up      string
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_articles",
		Up: `
			CREATE TABLE IF NOT EXISTS articles (
				url              TEXT PRIMARY KEY,
				title            TEXT NOT NULL DEFAULT '',
				body_text        TEXT NOT NULL DEFAULT '',
				summary          TEXT NOT NULL DEFAULT '',
				language         TEXT NOT NULL DEFAULT 'unknown',
				authors          TEXT[] NOT NULL DEFAULT '{}',
				published_at     TIMESTAMPTZ,
				meta_description TEXT NOT NULL DEFAULT '',
				top_image        TEXT NOT NULL DEFAULT '',
				source_domain    TEXT NOT NULL DEFAULT '',
				tags             TEXT NOT NULL DEFAULT '',
				word_count       INTEGER NOT NULL DEFAULT 0,
				status           TEXT NOT NULL DEFAULT 'pending',
				failure_reason   TEXT NOT NULL DEFAULT '',
				retry_count      INTEGER NOT NULL DEFAULT 0,
				created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		Version: 2,
		Name:    "add_query_indexes",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_articles_status ON articles (status);
			CREATE INDEX IF NOT EXISTS idx_articles_language ON articles (language);
			CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles (created_at);
			CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles (published_at);
			CREATE INDEX IF NOT EXISTS idx_articles_source_domain ON articles (source_domain);
		`,
	},
}

// Migrate applies all pending schema migrations.
func Migrate(db *sql.DB) error {
	if err := ensureMigrationsTable(db); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}

	pending := make([]Migration, len(migrations))
	copy(pending, migrations)
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	for _, m := range pending {
		if m.Version <= current {
			continue
		}
		if err := runMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func currentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	return version, err
}

func runMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.Up); err != nil {
		return fmt.Errorf("execute migration sql: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
		m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}
