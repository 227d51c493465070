package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the version written to the metadata table.
const SchemaVersion = "1"

// CreateSchema creates all tables and indexes for the report store.
// Uses a transaction so that schema creation succeeds or fails as a whole.
// Safe to call on an existing database.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"metadata", createMetadataTable},
		{"runs", createRunsTable},
		{"problems", createProblemsTable},
		{"failures", createFailuresTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(upsertSchemaVersion, SchemaVersion, now); err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion returns the stored schema version, or "0" for a new database.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const upsertSchemaVersion = `
INSERT INTO metadata (key, value, updated_at)
VALUES ('schema_version', ?, ?)
ON CONFLICT(key) DO UPDATE SET
    value = excluded.value,
    updated_at = excluded.updated_at
`

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,                     -- UUID
    started_at TEXT NOT NULL,                    -- ISO 8601
    php_version TEXT NOT NULL DEFAULT '',        -- Runtime that produced the reflection data
    stub_root TEXT NOT NULL DEFAULT '',
    stub_revision TEXT NOT NULL DEFAULT '',      -- git HEAD of the stubs, "-dirty" when modified
    stub_branch TEXT NOT NULL DEFAULT '',
    checked INTEGER NOT NULL DEFAULT 0,          -- Reflected functions compared
    problem_count INTEGER NOT NULL DEFAULT 0,
    muted_count INTEGER NOT NULL DEFAULT 0,
    failure_count INTEGER NOT NULL DEFAULT 0
)
`

const createProblemsTable = `
CREATE TABLE IF NOT EXISTS problems (
    run_id TEXT NOT NULL,
    seq INTEGER NOT NULL,                        -- Report order
    function_name TEXT NOT NULL,
    code INTEGER NOT NULL,                       -- model.ProblemCode
    detail TEXT NOT NULL DEFAULT '',
    muted INTEGER NOT NULL DEFAULT 0,            -- Boolean
    PRIMARY KEY (run_id, seq),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createFailuresTable = `
CREATE TABLE IF NOT EXISTS failures (
    run_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    function_name TEXT NOT NULL,
    source TEXT NOT NULL,                        -- reflection or stub
    message TEXT NOT NULL,
    PRIMARY KEY (run_id, seq),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)",
	"CREATE INDEX IF NOT EXISTS idx_problems_function ON problems(function_name)",
}
