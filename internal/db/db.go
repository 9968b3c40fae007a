package db

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle for the timeline store.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the sqlite database at path, enables WAL mode
// and runs schema migration. Use ":memory:" for an in-memory store.
func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The sqlite driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent writers.
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = d.Close()
		return nil, err
	}
	store := &DB{sql: d}
	if err := store.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database handle.
func (d *DB) Close() error { return d.sql.Close() }

// SQL exposes the raw handle for the repository implementations.
func (d *DB) SQL() *sql.DB { return d.sql }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
CREATE TABLE IF NOT EXISTS timeline_events (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    category TEXT NOT NULL,
    action TEXT NOT NULL,
    subject TEXT NOT NULL DEFAULT '',
    target TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT '{}',
    severity TEXT NOT NULL DEFAULT 'INFO',
    timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON timeline_events(timestamp);
CREATE INDEX IF NOT EXISTS idx_events_category ON timeline_events(category);
CREATE INDEX IF NOT EXISTS idx_events_action ON timeline_events(action);

CREATE TABLE IF NOT EXISTS alerts (
    id TEXT PRIMARY KEY,
    severity TEXT NOT NULL,
    message TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT '{}',
    acknowledged INTEGER NOT NULL DEFAULT 0,
    snoozed_until TEXT,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts(created_at);
CREATE INDEX IF NOT EXISTS idx_alerts_severity ON alerts(severity);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`)
	return err
}
