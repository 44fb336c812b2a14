package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
}

// Open opens the database and initializes the schema
func Open(dataDir string) (*DB, error) {
	dbPath := filepath.Join(dataDir, "macrorec.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the database schema
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recordings (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		duration_ms INTEGER NOT NULL,
		event_count INTEGER NOT NULL,

		-- The recorded event stream, as the JSON array from the
		-- persisted recording document.
		events TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_recordings_created_at ON recordings(created_at);
	CREATE INDEX IF NOT EXISTS idx_recordings_name ON recordings(name);
	`

	_, err := db.conn.Exec(schema)
	return err
}
