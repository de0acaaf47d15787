// Package storage persists the marker inventory produced by a scan in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens (creating if needed) the database at path and ensures the schema.
// Foreign keys are enabled on every connection.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMemory opens a private in-memory database. It is limited to one
// connection, since each SQLite connection to :memory: is a separate database.
func OpenMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateSchema creates the scan_runs and markers tables and their indexes.
// It is idempotent and runs in one transaction.
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
		{"scan_runs", createScanRunsTable},
		{"markers", createMarkersTable},
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

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

const createScanRunsTable = `
CREATE TABLE IF NOT EXISTS scan_runs (
    id TEXT PRIMARY KEY,                         -- UUID
    root TEXT NOT NULL,                          -- Directory that was scanned
    started_at TEXT NOT NULL,                    -- RFC 3339
    finished_at TEXT NOT NULL,                   -- RFC 3339
    files INTEGER NOT NULL DEFAULT 0,            -- Files read
    skipped INTEGER NOT NULL DEFAULT 0           -- Files that could not be read
)
`

const createMarkersTable = `
CREATE TABLE IF NOT EXISTS markers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    path TEXT NOT NULL,
    line INTEGER NOT NULL,                       -- 1-based
    name TEXT NOT NULL,
    args TEXT NOT NULL,                          -- JSON array of raw argument strings
    FOREIGN KEY (run_id) REFERENCES scan_runs(id) ON DELETE CASCADE
)
`

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_markers_run ON markers(run_id, path, line)`,
	`CREATE INDEX IF NOT EXISTS idx_markers_name ON markers(name)`,
}
