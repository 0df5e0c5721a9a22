// ABOUTME: Tests for the insights service over a real SQLite store.
// ABOUTME: Covers stats, summaries, correlations, matrix, and persisted backfill.
package insights

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/wellness/internal/analytics"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day1 = models.Date{Year: 2025, Month: time.May, Day: 1}

func setupService(t *testing.T) (*Service, storage.Repository) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "wellness.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db, nil), db
}

func addFactor(t *testing.T, repo storage.Repository, name string) *models.Factor {
	t.Helper()
	f := models.NewFactor(name)
	require.NoError(t, repo.CreateFactor(f))
	return f
}

func logOn(t *testing.T, repo storage.Repository, f *models.Factor, offset int, completed bool) {
	t.Helper()
	require.NoError(t, repo.UpsertFactorEntry(models.NewFactorEntry(f.ID, day1.AddDays(offset), completed)))
}

func moodOn(t *testing.T, repo storage.Repository, offset int, mood float64) *models.MetricEntry {
	t.Helper()
	m := models.NewMetricEntry(mood).WithTime(day1.AddDays(offset).Time().Add(20 * time.Hour))
	require.NoError(t, repo.CreateMetricEntry(m))
	return m
}

func TestFactorStatsExerciseScenario(t *testing.T) {
	svc, repo := setupService(t)
	ex := addFactor(t, repo, "Exercise")
	logOn(t, repo, ex, 0, true)
	logOn(t, repo, ex, 1, true)
	logOn(t, repo, ex, 3, true)

	stats, err := svc.FactorStats(context.Background(), "exercise", day1.AddDays(3))
	require.NoError(t, err)
	assert.Equal(t, ex.ID, stats.FactorID)
	assert.Equal(t, 4, stats.TotalDays)
	assert.Equal(t, 3, stats.CompletedDays)
	assert.Equal(t, 75.0, stats.CompletionRate)
	assert.Equal(t, 2, stats.LongestStreak)
	assert.Equal(t, 1, stats.CurrentStreak)
}

func TestFactorStatsUsesGlobalFloor(t *testing.T) {
	svc, repo := setupService(t)
	early := addFactor(t, repo, "Journal")
	late := addFactor(t, repo, "Run")
	logOn(t, repo, early, 0, true)
	logOn(t, repo, late, 4, true)

	stats, err := svc.FactorStats(context.Background(), late.ID.String(), day1.AddDays(4))
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalDays, "range starts at the earliest entry of any factor")
	assert.Equal(t, 1, stats.CompletedDays)
	assert.Equal(t, 20.0, stats.CompletionRate)
}

func TestFactorStatsIgnoresEntriesAfterAsOf(t *testing.T) {
	svc, repo := setupService(t)
	f := addFactor(t, repo, "Read")
	logOn(t, repo, f, 0, true)
	logOn(t, repo, f, 1, true)
	logOn(t, repo, f, 2, true)

	stats, err := svc.FactorStats(context.Background(), "Read", day1.AddDays(1))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalDays)
	assert.Equal(t, 2, stats.CurrentStreak)
}

func TestFactorStatsFreshStore(t *testing.T) {
	svc, repo := setupService(t)
	reading := addFactor(t, repo, "Reading")
	addFactor(t, repo, "Walking")

	stats, err := svc.FactorStats(context.Background(), "Reading", day1)
	require.NoError(t, err)
	assert.Equal(t, reading.ID, stats.FactorID)
	assert.Equal(t, 0, stats.TotalDays)
	assert.Equal(t, 0, stats.CompletedDays)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 0, stats.LongestStreak)
	assert.Equal(t, 0.0, stats.CompletionRate)

	all, err := svc.AllFactorStats(context.Background(), day1, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, st := range all {
		assert.Equal(t, 0, st.TotalDays, st.FactorName)
		assert.Equal(t, 0.0, st.CompletionRate, st.FactorName)
	}
}

func TestFactorStatsOnlyFutureEntries(t *testing.T) {
	svc, repo := setupService(t)
	f := addFactor(t, repo, "Reading")
	logOn(t, repo, f, 5, true)

	stats, err := svc.FactorStats(context.Background(), "Reading", day1)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalDays)
	assert.Equal(t, 0, stats.CompletedDays)

	report, err := svc.Backfill(context.Background(), day1, false)
	require.NoError(t, err)
	assert.Nil(t, report.Start)
	assert.Empty(t, report.Factors)
}

func TestFactorStatsNotFound(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.FactorStats(context.Background(), "missing", day1)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestAllFactorStats(t *testing.T) {
	svc, repo := setupService(t)
	a := addFactor(t, repo, "A")
	b := addFactor(t, repo, "B")
	archived := addFactor(t, repo, "C")
	archived.IsActive = false
	require.NoError(t, repo.UpdateFactor(archived))

	for i := 0; i < 3; i++ {
		logOn(t, repo, a, i, true)
	}
	logOn(t, repo, b, 2, true)

	stats, err := svc.AllFactorStats(context.Background(), day1.AddDays(2), false)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byName := map[string]analytics.FactorStats{}
	for _, st := range stats {
		byName[st.FactorName] = st
	}
	assert.Equal(t, 3, byName["A"].CurrentStreak)
	assert.Equal(t, 3, byName["B"].TotalDays)
	assert.Equal(t, 1, byName["B"].LongestStreak)

	all, err := svc.AllFactorStats(context.Background(), day1.AddDays(2), true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAllFactorStatsCancelled(t *testing.T) {
	svc, repo := setupService(t)
	f := addFactor(t, repo, "A")
	logOn(t, repo, f, 0, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.AllFactorStats(ctx, day1, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMetricSummaryScenario(t *testing.T) {
	svc, repo := setupService(t)
	m1 := moodOn(t, repo, 0, 3)
	m1.With(models.FieldStress, 7)
	require.NoError(t, repo.UpdateMetricEntry(m1))
	m2 := moodOn(t, repo, 1, 5)
	m2.With(models.FieldStress, 5)
	require.NoError(t, repo.UpdateMetricEntry(m2))

	summary, err := svc.MetricSummary(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalEntries)

	mood := summary.Fields[models.FieldMood]
	v, ok := mood.Average.Get()
	require.True(t, ok)
	assert.Equal(t, 4.0, v)
	assert.Equal(t, 2, mood.Count)

	stress := summary.Fields[models.FieldStress]
	v, ok = stress.Average.Get()
	require.True(t, ok)
	assert.Equal(t, 6.0, v)

	assert.False(t, summary.Fields[models.FieldLibido].Average.Defined())
	assert.Equal(t, 0, summary.Fields[models.FieldLibido].Count)
}

func TestMetricAggregate(t *testing.T) {
	svc, repo := setupService(t)
	moodOn(t, repo, 0, 2)
	moodOn(t, repo, 1, 4)
	moodOn(t, repo, 5, 9)

	end := day1.AddDays(1)
	agg, err := svc.MetricAggregate(context.Background(), models.FieldMood, &models.DateRange{End: &end})
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Count)
	v, _ := agg.Average.Get()
	assert.Equal(t, 3.0, v)

	_, err = svc.MetricAggregate(context.Background(), "bogus", nil)
	assert.Error(t, err)
}

func TestFactorCorrelations(t *testing.T) {
	svc, repo := setupService(t)
	walk := addFactor(t, repo, "Walk")
	always := addFactor(t, repo, "Vitamins")

	pattern := []bool{true, false, true, false}
	for i, done := range pattern {
		logOn(t, repo, walk, i, done)
		logOn(t, repo, always, i, true)
		if done {
			moodOn(t, repo, i, 8)
		} else {
			moodOn(t, repo, i, 4)
		}
	}

	results, err := svc.FactorCorrelations(context.Background(), models.FieldMood, nil, day1.AddDays(3))
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Walk", results[0].FactorName, "defined coefficients sort first")
	r, ok := results[0].Coefficient.Get()
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-9)
	assert.Equal(t, 4, results[0].Samples)

	assert.Equal(t, "Vitamins", results[1].FactorName)
	assert.False(t, results[1].Coefficient.Defined(), "constant completion has no correlation")
}

func TestFactorCorrelationsSkipsDatesWithoutMetrics(t *testing.T) {
	svc, repo := setupService(t)
	f := addFactor(t, repo, "Nap")
	for i := 0; i < 5; i++ {
		logOn(t, repo, f, i, i%2 == 0)
	}
	moodOn(t, repo, 0, 6)
	moodOn(t, repo, 1, 3)

	results, err := svc.FactorCorrelations(context.Background(), models.FieldMood, nil, day1.AddDays(4))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Samples)
}

func TestFactorCorrelationsInvalidInput(t *testing.T) {
	svc, repo := setupService(t)
	f := addFactor(t, repo, "A")
	logOn(t, repo, f, 0, true)

	_, err := svc.FactorCorrelations(context.Background(), "nope", nil, day1)
	assert.Error(t, err)

	start := day1.AddDays(5)
	_, err = svc.FactorCorrelations(context.Background(), models.FieldMood, &models.DateRange{Start: &start}, day1)
	assert.ErrorIs(t, err, analytics.ErrInvalidRange)
}

func TestCorrelationMatrix(t *testing.T) {
	svc, repo := setupService(t)
	walk := addFactor(t, repo, "Walk")
	sleep := addFactor(t, repo, "Early Bed")

	for i := 0; i < 4; i++ {
		logOn(t, repo, walk, i, i%2 == 0)
		logOn(t, repo, sleep, i, i%2 == 1)
		m := moodOn(t, repo, i, float64(5+i%2*3))
		m.With(models.FieldEnergy, float64(2+i))
		require.NoError(t, repo.UpdateMetricEntry(m))
	}

	res, err := svc.CorrelationMatrix(context.Background(), MatrixRequest{
		Fields: []models.MetricField{models.FieldMood, models.FieldEnergy},
		AsOf:   day1.AddDays(3),
		Top:    1,
	})
	require.NoError(t, err)
	assert.Len(t, res.Matrix.Labels, 4)

	r, ok := res.Matrix.At("Walk", "Early Bed")
	require.True(t, ok)
	v, defined := r.Get()
	require.True(t, defined)
	assert.InDelta(t, -1.0, v, 1e-9)

	ab, _ := res.Matrix.At("Walk", "mood_score")
	ba, _ := res.Matrix.At("mood_score", "Walk")
	assert.InDelta(t, ab.Float(), ba.Float(), 1e-12)

	require.Len(t, res.TopPairs, 1)
	top, _ := res.TopPairs[0].Coefficient.Get()
	assert.InDelta(t, 1.0, math.Abs(top), 1e-9)
}

func TestCorrelationMatrixSelectedFactors(t *testing.T) {
	svc, repo := setupService(t)
	alpha := addFactor(t, repo, "Alpha")
	addFactor(t, repo, "Omega")
	logOn(t, repo, alpha, 0, true)

	res, err := svc.CorrelationMatrix(context.Background(), MatrixRequest{
		Factors: []string{"alpha"},
		Fields:  []models.MetricField{models.FieldMood},
		AsOf:    day1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "mood_score"}, res.Matrix.Labels)

	_, err = svc.CorrelationMatrix(context.Background(), MatrixRequest{Factors: []string{"ghost"}, AsOf: day1})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBackfillPadsActiveFactors(t *testing.T) {
	svc, repo := setupService(t)
	a := addFactor(t, repo, "A")
	b := addFactor(t, repo, "B")
	archived := addFactor(t, repo, "Archived")
	archived.IsActive = false
	require.NoError(t, repo.UpdateFactor(archived))

	logOn(t, repo, a, 0, true)
	logOn(t, repo, b, 2, true)
	asOf := day1.AddDays(3)

	dry, err := svc.Backfill(context.Background(), asOf, true)
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.Equal(t, 0, dry.TotalInserted)
	require.Len(t, dry.Factors, 2)
	for _, f := range dry.Factors {
		assert.Equal(t, 3, f.Missing)
	}
	entries, err := repo.ListFactorEntries(nil, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "dry run writes nothing")

	report, err := svc.Backfill(context.Background(), asOf, false)
	require.NoError(t, err)
	require.NotNil(t, report.Start)
	assert.Equal(t, day1, *report.Start)
	assert.Equal(t, 6, report.TotalInserted)

	bEntries, err := repo.ListFactorEntries(&b.ID, nil)
	require.NoError(t, err)
	require.Len(t, bEntries, 4)
	for _, e := range bEntries {
		assert.Equal(t, e.Date == day1.AddDays(2), e.Completed, "only the real entry is completed")
	}

	archivedEntries, err := repo.ListFactorEntries(&archived.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, archivedEntries)

	again, err := svc.Backfill(context.Background(), asOf, false)
	require.NoError(t, err)
	assert.Equal(t, 0, again.TotalInserted, "backfill is idempotent")
}

func TestBackfillNoEntries(t *testing.T) {
	svc, repo := setupService(t)
	addFactor(t, repo, "A")

	report, err := svc.Backfill(context.Background(), day1, false)
	require.NoError(t, err)
	assert.Nil(t, report.Start)
	assert.Empty(t, report.Factors)
}

func TestBackfillMatchesNormalize(t *testing.T) {
	svc, repo := setupService(t)
	f := addFactor(t, repo, "Stretch")
	logOn(t, repo, f, 0, true)
	logOn(t, repo, f, 4, false)
	logOn(t, repo, f, 5, true)
	asOf := day1.AddDays(6)

	before, err := svc.FactorStats(context.Background(), f.ID.String(), asOf)
	require.NoError(t, err)

	_, err = svc.Backfill(context.Background(), asOf, false)
	require.NoError(t, err)

	after, err := svc.FactorStats(context.Background(), f.ID.String(), asOf)
	require.NoError(t, err)
	assert.Equal(t, before.StreakStats, after.StreakStats)
}

func TestLogFactorOverwrites(t *testing.T) {
	svc, repo := setupService(t)
	addFactor(t, repo, "Yoga")

	_, first, err := svc.LogFactor("yoga", day1, false, "")
	require.NoError(t, err)
	factor, second, err := svc.LogFactor("Yoga", day1, true, "evening class")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	entries, err := repo.ListFactorEntries(&factor.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Completed)
	require.NotNil(t, entries[0].Notes)
	assert.Equal(t, "evening class", *entries[0].Notes)
}

func TestConcurrentLogAndBackfill(t *testing.T) {
	svc, repo := setupService(t)
	f := addFactor(t, repo, "Water")
	logOn(t, repo, f, 0, true)
	asOf := day1.AddDays(9)

	var wg sync.WaitGroup
	for i := 1; i <= 9; i++ {
		wg.Add(2)
		go func(offset int) {
			defer wg.Done()
			_, _, err := svc.LogFactor(f.ID.String(), day1.AddDays(offset), true, "")
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_, err := svc.Backfill(context.Background(), asOf, false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := repo.ListFactorEntries(&f.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	for _, e := range entries {
		assert.True(t, e.Completed, "explicit log on %s must win over padding", e.Date)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	k := newKeyedMutex()
	a, b := uuid.New(), uuid.New()

	unlockA := k.Lock(a)
	done := make(chan struct{})
	go func() {
		unlockB := k.Lock(b)
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on a different key blocked")
	}
	unlockA()
}
