// ABOUTME: Tests for Repository interface implementations.
// ABOUTME: Runs the same CRUD and upsert checks against SQLite and Badger backends.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/wellness/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "wellness.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestKV(t *testing.T) *KVStore {
	t.Helper()
	kv, err := OpenKV(filepath.Join(t.TempDir(), "kv"))
	if err != nil {
		t.Fatalf("Failed to open kv store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

// forEachBackend runs fn once per Repository implementation.
func forEachBackend(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, setupTestDB(t)) })
	t.Run("badger", func(t *testing.T) { fn(t, setupTestKV(t)) })
}

var testDay = models.Date{Year: 2025, Month: time.April, Day: 10}

func mustCreateFactor(t *testing.T, repo Repository, name string) *models.Factor {
	t.Helper()
	f := models.NewFactor(name)
	if err := repo.CreateFactor(f); err != nil {
		t.Fatalf("CreateFactor failed: %v", err)
	}
	return f
}

func TestCreateAndGetFactor(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		f := models.NewFactor("Exercise").WithCategory("fitness")
		if err := repo.CreateFactor(f); err != nil {
			t.Fatalf("CreateFactor failed: %v", err)
		}

		got, err := repo.GetFactor(f.ID.String())
		if err != nil {
			t.Fatalf("GetFactor failed: %v", err)
		}
		if got.ID != f.ID || got.Name != "Exercise" || got.Category != "fitness" || !got.IsActive {
			t.Errorf("unexpected factor: %+v", got)
		}

		byPrefix, err := repo.GetFactor(f.ID.String()[:8])
		if err != nil {
			t.Fatalf("GetFactor by prefix failed: %v", err)
		}
		if byPrefix.ID != f.ID {
			t.Errorf("ID mismatch: got %v, want %v", byPrefix.ID, f.ID)
		}
	})
}

func TestGetFactorNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		_, err := repo.GetFactor("deadbeef")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		_, err = repo.GetFactor(uuid.New().String())
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for full UUID, got %v", err)
		}
	})
}

func TestAmbiguousPrefixError(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		a := models.NewFactor("A")
		a.ID = uuid.MustParse("abcd0000-0000-0000-0000-000000000001")
		b := models.NewFactor("B")
		b.ID = uuid.MustParse("abcd0000-0000-0000-0000-000000000002")
		for _, f := range []*models.Factor{a, b} {
			if err := repo.CreateFactor(f); err != nil {
				t.Fatalf("CreateFactor failed: %v", err)
			}
		}

		_, err := repo.GetFactor("abcd")
		if err == nil || !strings.Contains(err.Error(), "ambiguous") {
			t.Errorf("expected ambiguous prefix error, got %v", err)
		}
	})
}

func TestListFactorsAndArchive(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		walk := models.NewFactor("Walk")
		walk.CreatedAt = time.Now().Add(-time.Hour)
		read := models.NewFactor("Read").WithCategory("mind")
		for _, f := range []*models.Factor{walk, read} {
			if err := repo.CreateFactor(f); err != nil {
				t.Fatalf("CreateFactor failed: %v", err)
			}
		}

		read.IsActive = false
		if err := repo.UpdateFactor(read); err != nil {
			t.Fatalf("UpdateFactor failed: %v", err)
		}

		active, err := repo.ListFactors(false)
		if err != nil {
			t.Fatalf("ListFactors failed: %v", err)
		}
		if len(active) != 1 || active[0].ID != walk.ID {
			t.Errorf("expected only Walk active, got %d factors", len(active))
		}

		all, err := repo.ListFactors(true)
		if err != nil {
			t.Fatalf("ListFactors failed: %v", err)
		}
		if len(all) != 2 || all[0].ID != walk.ID {
			t.Errorf("expected 2 factors ordered by creation, got %d", len(all))
		}

		cats, err := repo.ListCategories()
		if err != nil {
			t.Fatalf("ListCategories failed: %v", err)
		}
		if strings.Join(cats, ",") != "general,mind" {
			t.Errorf("categories = %v", cats)
		}
	})
}

func TestUpdateFactorNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		err := repo.UpdateFactor(models.NewFactor("ghost"))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestUpsertFactorEntryOverwrites(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		f := mustCreateFactor(t, repo, "Meditate")

		first := models.NewFactorEntry(f.ID, testDay, false)
		if err := repo.UpsertFactorEntry(first); err != nil {
			t.Fatalf("UpsertFactorEntry failed: %v", err)
		}

		second := models.NewFactorEntry(f.ID, testDay, true).WithNotes("10 min")
		if err := repo.UpsertFactorEntry(second); err != nil {
			t.Fatalf("UpsertFactorEntry failed: %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("upsert should keep original ID %v, got %v", first.ID, second.ID)
		}

		entries, err := repo.ListFactorEntries(&f.ID, nil)
		if err != nil {
			t.Fatalf("ListFactorEntries failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry after re-log, got %d", len(entries))
		}
		if !entries[0].Completed || entries[0].Notes == nil || *entries[0].Notes != "10 min" {
			t.Errorf("entry not overwritten: %+v", entries[0])
		}
	})
}

func TestUpsertFactorEntryUnknownFactor(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		err := repo.UpsertFactorEntry(models.NewFactorEntry(uuid.New(), testDay, true))
		if err == nil {
			t.Error("expected error for unknown factor")
		}
	})
}

func TestInsertFactorEntryIfAbsent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		f := mustCreateFactor(t, repo, "Stretch")

		logged := models.NewFactorEntry(f.ID, testDay, true)
		if err := repo.UpsertFactorEntry(logged); err != nil {
			t.Fatalf("UpsertFactorEntry failed: %v", err)
		}

		inserted, err := repo.InsertFactorEntryIfAbsent(models.NewFactorEntry(f.ID, testDay, false))
		if err != nil {
			t.Fatalf("InsertFactorEntryIfAbsent failed: %v", err)
		}
		if inserted {
			t.Error("existing entry must not be replaced")
		}

		inserted, err = repo.InsertFactorEntryIfAbsent(models.NewFactorEntry(f.ID, testDay.AddDays(1), false))
		if err != nil {
			t.Fatalf("InsertFactorEntryIfAbsent failed: %v", err)
		}
		if !inserted {
			t.Error("expected padding row to be inserted")
		}

		entries, _ := repo.ListFactorEntries(&f.ID, nil)
		if len(entries) != 2 || !entries[0].Completed || entries[1].Completed {
			t.Errorf("unexpected entries after insert-if-absent: %d", len(entries))
		}
	})
}

func TestListFactorEntriesRange(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		a := mustCreateFactor(t, repo, "A")
		b := mustCreateFactor(t, repo, "B")
		for i := 0; i < 5; i++ {
			for _, f := range []*models.Factor{a, b} {
				if err := repo.UpsertFactorEntry(models.NewFactorEntry(f.ID, testDay.AddDays(i), i%2 == 0)); err != nil {
					t.Fatalf("UpsertFactorEntry failed: %v", err)
				}
			}
		}

		start, end := testDay.AddDays(1), testDay.AddDays(3)
		r := &models.DateRange{Start: &start, End: &end}

		all, err := repo.ListFactorEntries(nil, r)
		if err != nil {
			t.Fatalf("ListFactorEntries failed: %v", err)
		}
		if len(all) != 6 {
			t.Errorf("expected 6 entries in range, got %d", len(all))
		}
		for i := 1; i < len(all); i++ {
			if all[i].Date.Before(all[i-1].Date) {
				t.Error("entries should be sorted by date")
			}
		}

		onlyA, err := repo.ListFactorEntries(&a.ID, r)
		if err != nil {
			t.Fatalf("ListFactorEntries failed: %v", err)
		}
		if len(onlyA) != 3 {
			t.Errorf("expected 3 entries for A, got %d", len(onlyA))
		}
		for _, e := range onlyA {
			if e.FactorID != a.ID {
				t.Errorf("entry for wrong factor: %v", e.FactorID)
			}
		}
	})
}

func TestDeleteFactorCascades(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		keep := mustCreateFactor(t, repo, "Keep")
		drop := mustCreateFactor(t, repo, "Drop")
		for _, f := range []*models.Factor{keep, drop} {
			if err := repo.UpsertFactorEntry(models.NewFactorEntry(f.ID, testDay, true)); err != nil {
				t.Fatalf("UpsertFactorEntry failed: %v", err)
			}
		}

		if err := repo.DeleteFactor(drop.ID.String()[:8]); err != nil {
			t.Fatalf("DeleteFactor failed: %v", err)
		}

		entries, err := repo.ListFactorEntries(nil, nil)
		if err != nil {
			t.Fatalf("ListFactorEntries failed: %v", err)
		}
		if len(entries) != 1 || entries[0].FactorID != keep.ID {
			t.Errorf("expected only Keep's entry to survive, got %d", len(entries))
		}

		if err := repo.DeleteFactor(drop.ID.String()); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestMetricEntryCRUD(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ts := time.Date(2025, time.April, 10, 8, 30, 0, 0, time.UTC)
		m := models.NewMetricEntry(6).WithTime(ts).
			With(models.FieldStress, 4).
			With(models.FieldSleepQuality, 7).
			WithNotes("rested")
		if err := repo.CreateMetricEntry(m); err != nil {
			t.Fatalf("CreateMetricEntry failed: %v", err)
		}

		got, err := repo.GetMetricEntry(m.ID.String()[:8])
		if err != nil {
			t.Fatalf("GetMetricEntry failed: %v", err)
		}
		if got.MoodScore != 6 || got.Date != m.Date || !got.Time.Equal(ts) {
			t.Errorf("unexpected entry: %+v", got)
		}
		if v, ok := got.Value(models.FieldStress); !ok || v != 4 {
			t.Errorf("stress = %v, %v", v, ok)
		}
		if _, ok := got.Value(models.FieldEnergy); ok {
			t.Error("energy should be null")
		}
		if got.Notes == nil || *got.Notes != "rested" {
			t.Error("notes mismatch")
		}

		got.With(models.FieldEnergy, 3)
		got.StressLevel = nil
		if err := repo.UpdateMetricEntry(got); err != nil {
			t.Fatalf("UpdateMetricEntry failed: %v", err)
		}
		updated, _ := repo.GetMetricEntry(m.ID.String())
		if _, ok := updated.Value(models.FieldStress); ok {
			t.Error("stress should be cleared")
		}
		if v, ok := updated.Value(models.FieldEnergy); !ok || v != 3 {
			t.Errorf("energy = %v, %v", v, ok)
		}

		if err := repo.DeleteMetricEntry(m.ID.String()); err != nil {
			t.Fatalf("DeleteMetricEntry failed: %v", err)
		}
		if _, err := repo.GetMetricEntry(m.ID.String()); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.UpdateMetricEntry(got); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound updating deleted entry, got %v", err)
		}
	})
}

func TestListMetricEntries(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		base := time.Date(2025, time.April, 10, 9, 0, 0, 0, time.UTC)
		var ids []uuid.UUID
		for i := 0; i < 4; i++ {
			m := models.NewMetricEntry(float64(i + 1)).WithTime(base.AddDate(0, 0, i))
			if err := repo.CreateMetricEntry(m); err != nil {
				t.Fatalf("CreateMetricEntry failed: %v", err)
			}
			ids = append(ids, m.ID)
		}
		// Second entry on the last day, later in the evening.
		late := models.NewMetricEntry(9).WithTime(base.AddDate(0, 0, 3).Add(10 * time.Hour))
		if err := repo.CreateMetricEntry(late); err != nil {
			t.Fatalf("CreateMetricEntry failed: %v", err)
		}

		all, err := repo.ListMetricEntries(nil, 0)
		if err != nil {
			t.Fatalf("ListMetricEntries failed: %v", err)
		}
		if len(all) != 5 {
			t.Fatalf("expected 5 entries, got %d", len(all))
		}
		if all[0].ID != late.ID || all[1].ID != ids[3] {
			t.Error("expected most recent first")
		}

		limited, _ := repo.ListMetricEntries(nil, 2)
		if len(limited) != 2 {
			t.Errorf("expected 2 with limit, got %d", len(limited))
		}

		start := testDay.AddDays(1)
		end := testDay.AddDays(2)
		ranged, _ := repo.ListMetricEntries(&models.DateRange{Start: &start, End: &end}, 0)
		if len(ranged) != 2 {
			t.Errorf("expected 2 in range, got %d", len(ranged))
		}
	})
}

func TestFindFactor(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		f := mustCreateFactor(t, repo, "Cold Shower")

		for _, ref := range []string{f.ID.String(), f.ID.String()[:8], "cold shower", "Cold Shower"} {
			got, err := FindFactor(repo, ref)
			if err != nil {
				t.Errorf("FindFactor(%q) failed: %v", ref, err)
				continue
			}
			if got.ID != f.ID {
				t.Errorf("FindFactor(%q) = %v", ref, got.ID)
			}
		}

		if _, err := FindFactor(repo, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestDBClose(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "close.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if (&DB{}).Close() != nil {
		t.Error("Close on nil db should be a no-op")
	}
}

func TestOpenRecordsSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wellness.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != SchemaVersion {
		t.Errorf("SchemaVersion() = %d, want %d", v, SchemaVersion)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected file mode 0600, got %v", info.Mode().Perm())
	}
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wellness.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := db.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("Failed to bump user_version: %v", err)
	}
	db.Close()

	_, err = Open(path)
	if !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("Open on newer schema: got %v, want ErrSchemaTooNew", err)
	}
}

func TestOpenReopensExistingData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wellness.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	f := models.NewFactor("Reading")
	if err := db.CreateFactor(f); err != nil {
		t.Fatalf("CreateFactor failed: %v", err)
	}
	db.Close()

	again, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer again.Close()
	if _, err := again.GetFactor(f.ID.String()); err != nil {
		t.Errorf("GetFactor after reopen: %v", err)
	}
}
