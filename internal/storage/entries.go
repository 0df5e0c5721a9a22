// ABOUTME: Factor entry operations for SQLite storage.
// ABOUTME: Upsert keyed by (factor_id, date); insert-if-absent for backfill padding.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/wellness/internal/models"
)

// UpsertFactorEntry writes e, overwriting completed and notes when an entry
// for the same factor and date exists. e.ID and e.CreatedAt are updated to
// the stored row's values.
func (d *DB) UpsertFactorEntry(e *models.FactorEntry) error {
	query := `
		INSERT INTO factor_entries (id, factor_id, date, completed, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (factor_id, date) DO UPDATE SET
			completed = excluded.completed,
			notes = excluded.notes,
			updated_at = excluded.updated_at
		RETURNING id, created_at
	`
	var idStr, createdAt string
	err := d.db.QueryRow(query,
		e.ID.String(),
		e.FactorID.String(),
		e.Date.String(),
		e.Completed,
		e.Notes,
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.UpdatedAt.UTC().Format(time.RFC3339),
	).Scan(&idStr, &createdAt)
	if err != nil {
		return fmt.Errorf("upsert factor entry: %w", err)
	}

	e.ID, _ = uuid.Parse(idStr)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return nil
}

// InsertFactorEntryIfAbsent writes e only when no entry exists for its
// factor and date. It reports whether a row was inserted.
func (d *DB) InsertFactorEntryIfAbsent(e *models.FactorEntry) (bool, error) {
	query := `
		INSERT INTO factor_entries (id, factor_id, date, completed, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (factor_id, date) DO NOTHING
	`
	result, err := d.db.Exec(query,
		e.ID.String(),
		e.FactorID.String(),
		e.Date.String(),
		e.Completed,
		e.Notes,
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert factor entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert factor entry: %w", err)
	}
	return affected > 0, nil
}

// ListFactorEntries returns entries, optionally for one factor and within a
// date range, ordered by date then factor.
func (d *DB) ListFactorEntries(factorID *uuid.UUID, r *models.DateRange) ([]*models.FactorEntry, error) {
	query := `
		SELECT id, factor_id, date, completed, notes, created_at, updated_at
		FROM factor_entries
		WHERE 1 = 1
	`
	var args []interface{}

	if factorID != nil {
		query += " AND factor_id = ?"
		args = append(args, factorID.String())
	}
	if r != nil && r.Start != nil {
		query += " AND date >= ?"
		args = append(args, r.Start.String())
	}
	if r != nil && r.End != nil {
		query += " AND date <= ?"
		args = append(args, r.End.String())
	}
	query += " ORDER BY date, factor_id"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list factor entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.FactorEntry
	for rows.Next() {
		var e models.FactorEntry
		var idStr, factorIDStr, date, createdAt, updatedAt string
		var notes sql.NullString

		if err := rows.Scan(&idStr, &factorIDStr, &date, &e.Completed, &notes, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan factor entry: %w", err)
		}

		e.ID, _ = uuid.Parse(idStr)
		e.FactorID, _ = uuid.Parse(factorIDStr)
		e.Date, err = models.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("scan factor entry: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		if notes.Valid {
			e.Notes = &notes.String
		}

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
