// ABOUTME: Insights service joining the entry store with the analytics engine.
// ABOUTME: Loads store snapshots, normalizes factor history, and computes streak and metric stats.
package insights

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/wellness/internal/analytics"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
	"golang.org/x/sync/errgroup"
)

// maxParallel bounds concurrent per-factor computations.
const maxParallel = 8

// Service computes derived statistics over a Repository.
type Service struct {
	repo   storage.Repository
	logger *log.Logger
	locks  *keyedMutex
}

// NewService creates a Service. A nil logger discards output.
func NewService(repo storage.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{repo: repo, logger: logger, locks: newKeyedMutex()}
}

// snapshot is a point-in-time read of all factor entries plus the
// normalization window derived from them.
type snapshot struct {
	entries []*models.FactorEntry
	start   models.Date
	end     models.Date
	// tracked is false when no entry falls on or before end.
	tracked bool
}

// loadSnapshot reads every factor entry and computes [floor, asOf].
// The floor is the earliest entry date across all factors.
func (s *Service) loadSnapshot(asOf models.Date) (*snapshot, error) {
	entries, err := s.repo.ListFactorEntries(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("load factor entries: %w", err)
	}
	floor, tracked := analytics.GlobalFloor(entries, asOf)
	return &snapshot{
		entries: entries,
		start:   floor,
		end:     asOf,
		tracked: tracked,
	}, nil
}

// window narrows the snapshot range with optional user bounds.
func (sn *snapshot) window(r *models.DateRange) (models.Date, models.Date, error) {
	start, end := sn.start, sn.end
	if r != nil && r.Start != nil {
		start = *r.Start
	}
	if r != nil && r.End != nil {
		end = *r.End
	}
	if start.After(end) {
		return start, end, fmt.Errorf("window %s..%s: %w", start, end, analytics.ErrInvalidRange)
	}
	return start, end, nil
}

func (sn *snapshot) series(factorID uuid.UUID, start, end models.Date) (*analytics.DenseSeries, error) {
	return analytics.Normalize(factorID, sn.entries, start, end)
}

// stats computes streak stats over the full snapshot range. Before anything
// has been logged the series is empty and every count is zero.
func (sn *snapshot) stats(factor *models.Factor) (analytics.FactorStats, error) {
	if !sn.tracked {
		return analytics.StatsFor(factor, nil, sn.end), nil
	}
	series, err := sn.series(factor.ID, sn.start, sn.end)
	if err != nil {
		return analytics.FactorStats{}, fmt.Errorf("normalize %s: %w", factor.Name, err)
	}
	return analytics.StatsFor(factor, series, sn.end), nil
}

// FactorStats computes streak stats for one factor, resolved by ID, prefix,
// or name, as of asOf.
func (s *Service) FactorStats(ctx context.Context, ref string, asOf models.Date) (*analytics.FactorStats, error) {
	factor, err := storage.FindFactor(s.repo, ref)
	if err != nil {
		return nil, err
	}
	sn, err := s.loadSnapshot(asOf)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats, err := sn.stats(factor)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// AllFactorStats computes stats for every factor, in factor order.
// Per-factor work runs concurrently over a shared read-only snapshot.
func (s *Service) AllFactorStats(ctx context.Context, asOf models.Date, includeInactive bool) ([]analytics.FactorStats, error) {
	factors, err := s.repo.ListFactors(includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list factors: %w", err)
	}
	sn, err := s.loadSnapshot(asOf)
	if err != nil {
		return nil, err
	}

	results := make([]analytics.FactorStats, len(factors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, f := range factors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stats, err := sn.stats(f)
			if err != nil {
				return err
			}
			results[i] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("computed factor stats", "factors", len(results), "from", sn.start, "to", sn.end)
	return results, nil
}

// MetricSummary aggregates every metric field over entries in r.
func (s *Service) MetricSummary(ctx context.Context, r *models.DateRange) (analytics.Summary, error) {
	entries, err := s.repo.ListMetricEntries(r, 0)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("list metric entries: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(entries), nil
}

// MetricAggregate averages a single field over entries in r.
func (s *Service) MetricAggregate(ctx context.Context, field models.MetricField, r *models.DateRange) (analytics.FieldAggregate, error) {
	if !models.IsValidMetricField(string(field)) {
		return analytics.FieldAggregate{}, fmt.Errorf("unknown metric field: %s", field)
	}
	entries, err := s.repo.ListMetricEntries(r, 0)
	if err != nil {
		return analytics.FieldAggregate{}, fmt.Errorf("list metric entries: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return analytics.FieldAggregate{}, err
	}
	return analytics.Aggregate(entries, field), nil
}

// LogFactor records completion of a factor on date, overwriting any entry
// already logged for that date. It shares the factor's lock with Backfill.
func (s *Service) LogFactor(ref string, date models.Date, completed bool, notes string) (*models.Factor, *models.FactorEntry, error) {
	factor, err := storage.FindFactor(s.repo, ref)
	if err != nil {
		return nil, nil, err
	}

	entry := models.NewFactorEntry(factor.ID, date, completed)
	if notes != "" {
		entry.WithNotes(notes)
	}

	unlock := s.locks.Lock(factor.ID)
	defer unlock()
	if err := s.repo.UpsertFactorEntry(entry); err != nil {
		return nil, nil, fmt.Errorf("log %s: %w", factor.Name, err)
	}
	s.logger.Debug("logged factor", "factor", factor.Name, "date", date, "completed", completed)
	return factor, entry, nil
}
