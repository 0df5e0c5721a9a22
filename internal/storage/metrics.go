// ABOUTME: Metric entry CRUD operations for SQLite storage.
// ABOUTME: Optional wellbeing scales are stored as nullable REAL columns.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/wellness/internal/models"
)

const metricColumns = `id, date, time, mood_score, energy_level, stress_level, anxiety_level,
	rumination_level, anger_level, general_health, sleep_quality, sweating_level,
	libido_level, notes, created_at`

// CreateMetricEntry stores a new metric entry in the database.
func (d *DB) CreateMetricEntry(m *models.MetricEntry) error {
	query := `INSERT INTO metric_entries (` + metricColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := d.db.Exec(query,
		m.ID.String(),
		m.Date.String(),
		m.Time.UTC().Format(time.RFC3339),
		m.MoodScore,
		m.EnergyLevel,
		m.StressLevel,
		m.AnxietyLevel,
		m.RuminationLevel,
		m.AngerLevel,
		m.GeneralHealth,
		m.SleepQuality,
		m.SweatingLevel,
		m.LibidoLevel,
		m.Notes,
		m.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create metric entry: %w", err)
	}
	return nil
}

// GetMetricEntry retrieves a metric entry by ID or ID prefix.
func (d *DB) GetMetricEntry(idOrPrefix string) (*models.MetricEntry, error) {
	id, err := d.resolveID("metric_entries", idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + metricColumns + ` FROM metric_entries WHERE id = ?`
	m, err := scanMetricEntry(d.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("metric entry %w: %s", ErrNotFound, idOrPrefix)
		}
		return nil, fmt.Errorf("get metric entry: %w", err)
	}
	return m, nil
}

// UpdateMetricEntry overwrites every mutable field of an existing entry.
func (d *DB) UpdateMetricEntry(m *models.MetricEntry) error {
	query := `
		UPDATE metric_entries SET
			date = ?, time = ?, mood_score = ?, energy_level = ?, stress_level = ?,
			anxiety_level = ?, rumination_level = ?, anger_level = ?, general_health = ?,
			sleep_quality = ?, sweating_level = ?, libido_level = ?, notes = ?
		WHERE id = ?
	`
	result, err := d.db.Exec(query,
		m.Date.String(),
		m.Time.UTC().Format(time.RFC3339),
		m.MoodScore,
		m.EnergyLevel,
		m.StressLevel,
		m.AnxietyLevel,
		m.RuminationLevel,
		m.AngerLevel,
		m.GeneralHealth,
		m.SleepQuality,
		m.SweatingLevel,
		m.LibidoLevel,
		m.Notes,
		m.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update metric entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update metric entry: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("metric entry %w: %s", ErrNotFound, m.ID)
	}
	return nil
}

// ListMetricEntries retrieves entries within an optional date range.
// Results are sorted most recent first.
func (d *DB) ListMetricEntries(r *models.DateRange, limit int) ([]*models.MetricEntry, error) {
	query := `SELECT ` + metricColumns + ` FROM metric_entries WHERE 1 = 1`
	var args []interface{}

	if r != nil && r.Start != nil {
		query += " AND date >= ?"
		args = append(args, r.Start.String())
	}
	if r != nil && r.End != nil {
		query += " AND date <= ?"
		args = append(args, r.End.String())
	}
	query += " ORDER BY date DESC, time DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list metric entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.MetricEntry
	for rows.Next() {
		m, err := scanMetricEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan metric entry: %w", err)
		}
		entries = append(entries, m)
	}
	return entries, rows.Err()
}

// DeleteMetricEntry removes a metric entry by ID or prefix.
func (d *DB) DeleteMetricEntry(idOrPrefix string) error {
	id, err := d.resolveID("metric_entries", idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete metric entry: %w", err)
	}

	result, err := d.db.Exec("DELETE FROM metric_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete metric entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete metric entry: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("metric entry %w: %s", ErrNotFound, idOrPrefix)
	}
	return nil
}

func scanMetricEntry(row rowScanner) (*models.MetricEntry, error) {
	var m models.MetricEntry
	var idStr, date, ts, createdAt string
	var energy, stress, anxiety, rumination, anger, health, sleep, sweating, libido sql.NullFloat64
	var notes sql.NullString

	err := row.Scan(&idStr, &date, &ts, &m.MoodScore,
		&energy, &stress, &anxiety, &rumination, &anger, &health, &sleep, &sweating, &libido,
		&notes, &createdAt)
	if err != nil {
		return nil, err
	}

	m.ID, _ = uuid.Parse(idStr)
	m.Date, err = models.ParseDate(date)
	if err != nil {
		return nil, err
	}
	m.Time, _ = time.Parse(time.RFC3339, ts)
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	m.EnergyLevel = nullFloat(energy)
	m.StressLevel = nullFloat(stress)
	m.AnxietyLevel = nullFloat(anxiety)
	m.RuminationLevel = nullFloat(rumination)
	m.AngerLevel = nullFloat(anger)
	m.GeneralHealth = nullFloat(health)
	m.SleepQuality = nullFloat(sleep)
	m.SweatingLevel = nullFloat(sweating)
	m.LibidoLevel = nullFloat(libido)
	if notes.Valid {
		m.Notes = &notes.String
	}
	return &m, nil
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
