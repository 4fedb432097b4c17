// Package cache persists remote species records in SQLite so repeated
// evaluations skip the network.
package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS species_fields (
	species    TEXT NOT NULL,
	field      TEXT NOT NULL,
	value      REAL NOT NULL,
	unit       TEXT NOT NULL DEFAULT '',
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (species, field)
);

CREATE INDEX IF NOT EXISTS idx_species_fields_fetched ON species_fields(fetched_at);
`

// DB wraps a sql.DB holding cached species records.
type DB struct {
	conn *sql.DB
	ttl  time.Duration
	now  func() time.Time
}

// Open opens (or creates) the cache database. Records older than ttl are
// treated as absent; ttl <= 0 keeps records forever.
func Open(dsn string, ttl time.Duration) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}
	return &DB{conn: conn, ttl: ttl, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
