// ABOUTME: Badger-backed key-value implementation of the Repository interface.
// ABOUTME: Factor entries are keyed by factor and date, so a write is naturally an upsert.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/harperreed/wellness/internal/models"
)

const (
	factorPrefix      = "factor/"
	factorEntryPrefix = "fentry/"
	metricEntryPrefix = "mentry/"
)

// KVStore stores wellness data as JSON values in an embedded Badger database.
type KVStore struct {
	db  *badger.DB
	dir string
}

// Compile-time check that KVStore implements Repository.
var _ Repository = (*KVStore)(nil)

// OpenKV opens or creates a Badger store in dir.
func OpenKV(dir string) (*KVStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &KVStore{db: db, dir: dir}, nil
}

// Close closes the Badger database.
func (s *KVStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func factorKey(id uuid.UUID) []byte {
	return []byte(factorPrefix + id.String())
}

func factorEntryKey(factorID uuid.UUID, d models.Date) []byte {
	return []byte(factorEntryPrefix + factorID.String() + "/" + d.String())
}

func metricEntryKey(id uuid.UUID) []byte {
	return []byte(metricEntryPrefix + id.String())
}

func putJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

// scanPrefix calls fn with every value under prefix.
func scanPrefix(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

// keysWithPrefix returns copies of every key under prefix.
func keysWithPrefix(txn *badger.Txn, prefix string) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

// resolveKey finds the single key under prefix matching a full ID or ID prefix.
func (s *KVStore) resolveKey(txn *badger.Txn, prefix, idOrPrefix string) ([]byte, error) {
	if idOrPrefix == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	keys := keysWithPrefix(txn, prefix+strings.ToLower(idOrPrefix))
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	if len(keys) > 1 && !looksLikeUUID(idOrPrefix) {
		return nil, fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}
	return keys[0], nil
}

// CreateFactor stores a new factor.
func (s *KVStore) CreateFactor(f *models.Factor) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(factorKey(f.ID)); err == nil {
			return fmt.Errorf("factor %s already exists", f.ID)
		}
		return putJSON(txn, factorKey(f.ID), f)
	})
	if err != nil {
		return fmt.Errorf("create factor: %w", err)
	}
	return nil
}

// GetFactor retrieves a factor by ID or ID prefix.
func (s *KVStore) GetFactor(idOrPrefix string) (*models.Factor, error) {
	var f models.Factor
	err := s.db.View(func(txn *badger.Txn) error {
		key, err := s.resolveKey(txn, factorPrefix, idOrPrefix)
		if err != nil {
			return err
		}
		return getJSON(txn, key, &f)
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFactors returns factors ordered by creation time.
func (s *KVStore) ListFactors(includeInactive bool) ([]*models.Factor, error) {
	var factors []*models.Factor
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, factorPrefix, func(val []byte) error {
			var f models.Factor
			if err := json.Unmarshal(val, &f); err != nil {
				return err
			}
			if includeInactive || f.IsActive {
				factors = append(factors, &f)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list factors: %w", err)
	}
	sort.SliceStable(factors, func(i, j int) bool {
		if !factors[i].CreatedAt.Equal(factors[j].CreatedAt) {
			return factors[i].CreatedAt.Before(factors[j].CreatedAt)
		}
		return factors[i].Name < factors[j].Name
	})
	return factors, nil
}

// UpdateFactor saves an existing factor.
func (s *KVStore) UpdateFactor(f *models.Factor) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(factorKey(f.ID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("factor %w: %s", ErrNotFound, f.ID)
			}
			return err
		}
		return putJSON(txn, factorKey(f.ID), f)
	})
	if err != nil {
		return fmt.Errorf("update factor: %w", err)
	}
	return nil
}

// DeleteFactor removes a factor and all of its entries.
func (s *KVStore) DeleteFactor(idOrPrefix string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key, err := s.resolveKey(txn, factorPrefix, idOrPrefix)
		if err != nil {
			return err
		}
		id := strings.TrimPrefix(string(key), factorPrefix)
		for _, k := range keysWithPrefix(txn, factorEntryPrefix+id+"/") {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("delete factor: %w", err)
	}
	return nil
}

// ListCategories returns the distinct non-empty factor categories.
func (s *KVStore) ListCategories() ([]string, error) {
	factors, err := s.ListFactors(true)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var categories []string
	for _, f := range factors {
		if f.Category != "" && !seen[f.Category] {
			seen[f.Category] = true
			categories = append(categories, f.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// UpsertFactorEntry writes e, keeping the original ID and creation time when
// an entry for the same factor and date exists.
func (s *KVStore) UpsertFactorEntry(e *models.FactorEntry) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(factorKey(e.FactorID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("factor %w: %s", ErrNotFound, e.FactorID)
			}
			return err
		}

		key := factorEntryKey(e.FactorID, e.Date)
		var existing models.FactorEntry
		switch err := getJSON(txn, key, &existing); {
		case err == nil:
			e.ID = existing.ID
			e.CreatedAt = existing.CreatedAt
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return putJSON(txn, key, e)
	})
	if err != nil {
		return fmt.Errorf("upsert factor entry: %w", err)
	}
	return nil
}

// InsertFactorEntryIfAbsent writes e only if its (factor, date) key is unused.
func (s *KVStore) InsertFactorEntryIfAbsent(e *models.FactorEntry) (bool, error) {
	inserted := false
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(factorKey(e.FactorID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("factor %w: %s", ErrNotFound, e.FactorID)
			}
			return err
		}

		key := factorEntryKey(e.FactorID, e.Date)
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		inserted = true
		return putJSON(txn, key, e)
	})
	if err != nil {
		return false, fmt.Errorf("insert factor entry: %w", err)
	}
	return inserted, nil
}

// ListFactorEntries returns entries ordered by date then factor.
func (s *KVStore) ListFactorEntries(factorID *uuid.UUID, r *models.DateRange) ([]*models.FactorEntry, error) {
	prefix := factorEntryPrefix
	if factorID != nil {
		prefix += factorID.String() + "/"
	}

	var entries []*models.FactorEntry
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, prefix, func(val []byte) error {
			var e models.FactorEntry
			if err := json.Unmarshal(val, &e); err != nil {
				return err
			}
			if r == nil || r.Contains(e.Date) {
				entries = append(entries, &e)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list factor entries: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].FactorID.String() < entries[j].FactorID.String()
	})
	return entries, nil
}

// CreateMetricEntry stores a new metric entry.
func (s *KVStore) CreateMetricEntry(m *models.MetricEntry) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(metricEntryKey(m.ID)); err == nil {
			return fmt.Errorf("metric entry %s already exists", m.ID)
		}
		return putJSON(txn, metricEntryKey(m.ID), m)
	})
	if err != nil {
		return fmt.Errorf("create metric entry: %w", err)
	}
	return nil
}

// GetMetricEntry retrieves a metric entry by ID or ID prefix.
func (s *KVStore) GetMetricEntry(idOrPrefix string) (*models.MetricEntry, error) {
	var m models.MetricEntry
	err := s.db.View(func(txn *badger.Txn) error {
		key, err := s.resolveKey(txn, metricEntryPrefix, idOrPrefix)
		if err != nil {
			return err
		}
		return getJSON(txn, key, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMetricEntry overwrites an existing metric entry.
func (s *KVStore) UpdateMetricEntry(m *models.MetricEntry) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(metricEntryKey(m.ID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("metric entry %w: %s", ErrNotFound, m.ID)
			}
			return err
		}
		return putJSON(txn, metricEntryKey(m.ID), m)
	})
	if err != nil {
		return fmt.Errorf("update metric entry: %w", err)
	}
	return nil
}

// ListMetricEntries returns entries in an optional date range, most recent first.
func (s *KVStore) ListMetricEntries(r *models.DateRange, limit int) ([]*models.MetricEntry, error) {
	var entries []*models.MetricEntry
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, metricEntryPrefix, func(val []byte) error {
			var m models.MetricEntry
			if err := json.Unmarshal(val, &m); err != nil {
				return err
			}
			if r == nil || r.Contains(m.Date) {
				entries = append(entries, &m)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list metric entries: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].Time.After(entries[j].Time)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// DeleteMetricEntry removes a metric entry by ID or prefix.
func (s *KVStore) DeleteMetricEntry(idOrPrefix string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key, err := s.resolveKey(txn, metricEntryPrefix, idOrPrefix)
		if err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("delete metric entry: %w", err)
	}
	return nil
}

// GetAllData retrieves all data for export.
func (s *KVStore) GetAllData() (*ExportData, error) {
	return collectAll(s)
}

// ImportData imports data from an export file.
func (s *KVStore) ImportData(data *ExportData) error {
	return importAll(s, data)
}
