// ABOUTME: Data migration between wellness storage backends.
// ABOUTME: Copies factors, factor entries, and metric entries from source to destination.

package storage

import (
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Factors       int
	FactorEntries int
	MetricEntries int
}

// MigrateData copies all data from src to dst storage.
// Factors are created first so entries always reference an existing factor.
// The destination should be empty before calling this function.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	factors, err := src.ListFactors(true)
	if err != nil {
		return nil, fmt.Errorf("list source factors: %w", err)
	}
	for _, f := range factors {
		if err := dst.CreateFactor(f); err != nil {
			return nil, fmt.Errorf("create factor %s: %w", f.ID, err)
		}
		summary.Factors++
	}

	entries, err := src.ListFactorEntries(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list source factor entries: %w", err)
	}
	for _, e := range entries {
		if err := dst.UpsertFactorEntry(e); err != nil {
			return nil, fmt.Errorf("upsert factor entry %s: %w", e.ID, err)
		}
		summary.FactorEntries++
	}

	metrics, err := src.ListMetricEntries(nil, 0)
	if err != nil {
		return nil, fmt.Errorf("list source metric entries: %w", err)
	}
	for _, m := range metrics {
		if err := dst.CreateMetricEntry(m); err != nil {
			return nil, fmt.Errorf("create metric entry %s: %w", m.ID, err)
		}
		summary.MetricEntries++
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
