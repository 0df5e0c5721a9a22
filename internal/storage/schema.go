// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for factors, factor_entries, and metric_entries.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS factors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'general',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS factor_entries (
		id TEXT PRIMARY KEY,
		factor_id TEXT NOT NULL,
		date TEXT NOT NULL,
		completed INTEGER NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (factor_id, date),
		FOREIGN KEY (factor_id) REFERENCES factors(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS metric_entries (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		mood_score REAL NOT NULL,
		energy_level REAL,
		stress_level REAL,
		anxiety_level REAL,
		rumination_level REAL,
		anger_level REAL,
		general_health REAL,
		sleep_quality REAL,
		sweating_level REAL,
		libido_level REAL,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_factors_active ON factors(is_active);
	CREATE INDEX IF NOT EXISTS idx_factor_entries_date ON factor_entries(date);
	CREATE INDEX IF NOT EXISTS idx_metric_entries_date ON metric_entries(date DESC, time DESC);
	`

	_, err := d.db.Exec(schema)
	return err
}
