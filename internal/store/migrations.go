package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// migrate brings the database up to the current schema. The version row is
// read before any migration runs, so re-opening an up-to-date (or newer)
// database never re-applies a step.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create meta table: %w", err)
	}

	version, err := s.schemaVersion()
	if err != nil {
		return err
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) schemaVersion() (int, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid schema version %q: %w", value, err)
	}
	return v, nil
}

func (s *Store) setSchemaVersion(v int) error {
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO meta(key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(v)); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return nil
}

func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		format     TEXT NOT NULL DEFAULT 'landscape',
		owner_id   TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scenes (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id),
		name        TEXT NOT NULL,
		ord         INTEGER NOT NULL DEFAULT 0,
		duration    INTEGER NOT NULL DEFAULT 0,
		source_code TEXT NOT NULL DEFAULT '',
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scenes_project ON scenes(project_id, ord);

	CREATE TABLE IF NOT EXISTS targets (
		id            TEXT PRIMARY KEY,
		project_id    TEXT NOT NULL REFERENCES projects(id),
		website_url   TEXT NOT NULL,
		company_name  TEXT,
		contact_email TEXT,
		status        TEXT NOT NULL DEFAULT 'pending',
		error_message TEXT,
		brand_theme   TEXT,
		created_at    INTEGER NOT NULL,
		updated_at    INTEGER NOT NULL,
		extracted_at  INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_targets_project ON targets(project_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_targets_status ON targets(status);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute migration v1: %w", err)
	}
	return s.setSchemaVersion(1)
}

func (s *Store) migrateV2() error {
	for _, stmt := range []string{
		`ALTER TABLE targets ADD COLUMN sector TEXT`,
		`ALTER TABLE targets ADD COLUMN notes TEXT`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute migration v2: %w", err)
		}
	}
	return s.setSchemaVersion(2)
}
