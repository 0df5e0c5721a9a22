// ABOUTME: SQLite store for factors, daily entries, and check-ins.
// ABOUTME: Tracks the schema version in PRAGMA user_version and refuses newer files.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SchemaVersion is written to PRAGMA user_version once the schema is applied.
const SchemaVersion = 1

// ErrSchemaTooNew is returned when a database was written by a newer build.
var ErrSchemaTooNew = errors.New("database schema is newer than this build")

// connPragmas run on the single pooled connection. Deleting a factor relies
// on foreign_keys to cascade to its entries, and backfill holds write
// transactions long enough that LogFactor needs the busy timeout.
var connPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
}

// DB is the SQLite Repository.
type DB struct {
	db     *sql.DB
	dbPath string
}

var _ Repository = (*DB)(nil)

// Open opens or creates the wellness database at dbPath and brings its
// schema up to SchemaVersion.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	d := &DB{db: db, dbPath: dbPath}
	if err := d.prepare(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) prepare() error {
	for _, pragma := range connPragmas {
		if _, err := d.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	// The file exists once the first pragma has run.
	if err := os.Chmod(d.dbPath, 0600); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("set database permissions: %w", err)
	}

	version, err := d.SchemaVersion()
	if err != nil {
		return err
	}
	if version > SchemaVersion {
		return fmt.Errorf("%s is at schema %d, this build supports %d: %w",
			d.dbPath, version, SchemaVersion, ErrSchemaTooNew)
	}

	if err := d.initSchema(); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	if version < SchemaVersion {
		// user_version does not accept bound parameters.
		if _, err := d.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	}
	return nil
}

// SchemaVersion reports the schema version recorded in the database file.
func (d *DB) SchemaVersion() (int, error) {
	var v int
	if err := d.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// DataDir returns the wellness directory under XDG_DATA_HOME, falling back
// to ~/.local/share.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "wellness")
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
