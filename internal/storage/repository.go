// ABOUTME: Repository interface for wellness data storage.
// ABOUTME: Defines the entry store contract for factors, factor entries, and metric entries.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/wellness/internal/models"
)

// ErrNotFound is wrapped by lookups that match no record.
var ErrNotFound = errors.New("not found")

// Repository defines the storage interface for wellness data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Factor operations
	CreateFactor(f *models.Factor) error
	GetFactor(idOrPrefix string) (*models.Factor, error)
	ListFactors(includeInactive bool) ([]*models.Factor, error)
	UpdateFactor(f *models.Factor) error
	DeleteFactor(idOrPrefix string) error
	ListCategories() ([]string, error)

	// Factor entry operations. Entries are unique per (factor, date).
	UpsertFactorEntry(e *models.FactorEntry) error
	InsertFactorEntryIfAbsent(e *models.FactorEntry) (bool, error)
	ListFactorEntries(factorID *uuid.UUID, r *models.DateRange) ([]*models.FactorEntry, error)

	// Metric entry operations
	CreateMetricEntry(m *models.MetricEntry) error
	GetMetricEntry(idOrPrefix string) (*models.MetricEntry, error)
	UpdateMetricEntry(m *models.MetricEntry) error
	ListMetricEntries(r *models.DateRange, limit int) ([]*models.MetricEntry, error)
	DeleteMetricEntry(idOrPrefix string) error

	// Export/Import
	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) error

	// Lifecycle
	Close() error
}

// FindFactor resolves a factor by ID, ID prefix, or case-insensitive name.
func FindFactor(repo Repository, ref string) (*models.Factor, error) {
	f, err := repo.GetFactor(ref)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	factors, listErr := repo.ListFactors(true)
	if listErr != nil {
		return nil, fmt.Errorf("find factor: %w", listErr)
	}
	for _, f := range factors {
		if strings.EqualFold(f.Name, ref) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("factor %w: %s", ErrNotFound, ref)
}

// looksLikeUUID reports whether s is a full hyphenated UUID.
func looksLikeUUID(s string) bool {
	return len(s) == 36 && strings.Count(s, "-") == 4
}
