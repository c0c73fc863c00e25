package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the database file kept in the result directory
const FileName = "osdgen.db"

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	path string
}

// PathIn returns the database location inside a result directory
func PathIn(dir string) string {
	return filepath.Join(dir, FileName)
}

// New opens or creates the SQLite database at the given path
func New(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps PRAGMAs applied
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	db := &DB{conn: conn, path: path}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

// schema lists the migrations in order; entry i is schema version i+1
var schema = []string{
	migrationV1,
	migrationV2,
}

// migrate brings the schema up to the newest version, one transaction per step
func (d *DB) migrate() error {
	if _, err := d.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return err
	}

	current, err := d.SchemaVersion()
	if err != nil {
		return err
	}
	for v := current + 1; v <= len(schema); v++ {
		if err := d.applyMigration(v, schema[v-1]); err != nil {
			return fmt.Errorf("migration v%d failed: %w", v, err)
		}
	}
	return nil
}

// SchemaVersion returns the newest applied migration, 0 for an empty database
func (d *DB) SchemaVersion() (int, error) {
	var v int
	err := d.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v)
	return v, err
}

func (d *DB) applyMigration(v int, stmt string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", v); err != nil {
		return err
	}
	return tx.Commit()
}

// migrationV1 creates the introspection cache
const migrationV1 = `
-- Node list from the last 'baremetal node list'
CREATE TABLE IF NOT EXISTS nodes (
    position INTEGER PRIMARY KEY,
    uuid TEXT UNIQUE NOT NULL
);

-- Raw introspection documents, one per node
CREATE TABLE IF NOT EXISTS records (
    uuid TEXT PRIMARY KEY,
    data BLOB,
    fetched_at INTEGER NOT NULL
);
`

// migrationV2 adds run history
const migrationV2 = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY,
    started_at INTEGER NOT NULL,
    hosts INTEGER NOT NULL,
    selected INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
    id INTEGER PRIMARY KEY,
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    host_uuid TEXT NOT NULL,
    position INTEGER NOT NULL,
    device_name TEXT NOT NULL,
    device_path TEXT NOT NULL,
    journal_path TEXT
);

CREATE INDEX IF NOT EXISTS idx_assignments_run ON assignments(run_id, host_uuid, position);
`

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
