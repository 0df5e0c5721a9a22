// ABOUTME: Factor CRUD operations for SQLite storage.
// ABOUTME: Deleting a factor cascades to its entries via the foreign key.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/wellness/internal/models"
)

// CreateFactor stores a new factor in the database.
func (d *DB) CreateFactor(f *models.Factor) error {
	query := `
		INSERT INTO factors (id, name, category, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query,
		f.ID.String(),
		f.Name,
		f.Category,
		f.IsActive,
		f.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create factor: %w", err)
	}
	return nil
}

// GetFactor retrieves a factor by ID or ID prefix.
func (d *DB) GetFactor(idOrPrefix string) (*models.Factor, error) {
	id, err := d.resolveID("factors", idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, category, is_active, created_at
		FROM factors
		WHERE id = ?
	`
	f, err := scanFactor(d.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("factor %w: %s", ErrNotFound, idOrPrefix)
		}
		return nil, fmt.Errorf("get factor: %w", err)
	}
	return f, nil
}

// ListFactors returns factors ordered by creation time.
func (d *DB) ListFactors(includeInactive bool) ([]*models.Factor, error) {
	query := `
		SELECT id, name, category, is_active, created_at
		FROM factors
	`
	if !includeInactive {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY created_at, name"

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list factors: %w", err)
	}
	defer rows.Close()

	var factors []*models.Factor
	for rows.Next() {
		f, err := scanFactor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan factor: %w", err)
		}
		factors = append(factors, f)
	}
	return factors, rows.Err()
}

// UpdateFactor saves name, category, and active state.
func (d *DB) UpdateFactor(f *models.Factor) error {
	result, err := d.db.Exec(
		"UPDATE factors SET name = ?, category = ?, is_active = ? WHERE id = ?",
		f.Name, f.Category, f.IsActive, f.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update factor: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update factor: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("factor %w: %s", ErrNotFound, f.ID)
	}
	return nil
}

// DeleteFactor removes a factor and all of its entries.
func (d *DB) DeleteFactor(idOrPrefix string) error {
	id, err := d.resolveID("factors", idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete factor: %w", err)
	}

	result, err := d.db.Exec("DELETE FROM factors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete factor: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete factor: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("factor %w: %s", ErrNotFound, idOrPrefix)
	}
	return nil
}

// ListCategories returns the distinct non-empty factor categories.
func (d *DB) ListCategories() ([]string, error) {
	rows, err := d.db.Query("SELECT DISTINCT category FROM factors WHERE category != '' ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// resolveID finds the full ID in table from a full ID or unique prefix.
func (d *DB) resolveID(table, idOrPrefix string) (string, error) {
	// If it looks like a full UUID, use it directly
	if looksLikeUUID(idOrPrefix) {
		return idOrPrefix, nil
	}
	if idOrPrefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}

	// Search by prefix. table is always a package constant.
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id LIKE ? || '%%'`, table)
	rows, err := d.db.Query(query, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve ID: %w", err)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}

	return matches[0], nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFactor(row rowScanner) (*models.Factor, error) {
	var f models.Factor
	var idStr, createdAt string

	if err := row.Scan(&idStr, &f.Name, &f.Category, &f.IsActive, &createdAt); err != nil {
		return nil, err
	}

	f.ID, _ = uuid.Parse(idStr)
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &f, nil
}
