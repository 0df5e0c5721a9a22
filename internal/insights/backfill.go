// ABOUTME: Persisted backfill of missing factor entries as not completed.
// ABOUTME: Writes only absent (factor, date) rows, serialized per factor.
package insights

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/wellness/internal/analytics"
	"github.com/harperreed/wellness/internal/models"
)

// BackfillFactor reports padding for one factor.
type BackfillFactor struct {
	FactorID   uuid.UUID `json:"factor_id" yaml:"factor_id"`
	FactorName string    `json:"factor_name" yaml:"factor_name"`
	Missing    int       `json:"missing" yaml:"missing"`
	Inserted   int       `json:"inserted" yaml:"inserted"`
}

// BackfillReport summarizes a backfill run.
type BackfillReport struct {
	Start         *models.Date     `json:"start,omitempty" yaml:"start,omitempty"`
	End           models.Date      `json:"end" yaml:"end"`
	DryRun        bool             `json:"dry_run" yaml:"dry_run"`
	Factors       []BackfillFactor `json:"factors" yaml:"factors"`
	TotalInserted int              `json:"total_inserted" yaml:"total_inserted"`
}

// Backfill pads every active factor with not-completed entries for each date
// from the earliest logged entry through asOf. Existing entries are never
// modified. With dryRun, missing rows are counted but not written.
func (s *Service) Backfill(ctx context.Context, asOf models.Date, dryRun bool) (*BackfillReport, error) {
	report := &BackfillReport{End: asOf, DryRun: dryRun}

	sn, err := s.loadSnapshot(asOf)
	if err != nil {
		return nil, err
	}
	if !sn.tracked {
		s.logger.Info("nothing to backfill", "reason", "no factor entries on or before as-of date")
		return report, nil
	}
	start := sn.start
	report.Start = &start

	factors, err := s.repo.ListFactors(false)
	if err != nil {
		return nil, fmt.Errorf("list factors: %w", err)
	}

	for _, f := range factors {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := s.backfillFactor(f, start, asOf, dryRun)
		if err != nil {
			return report, err
		}
		report.Factors = append(report.Factors, res)
		report.TotalInserted += res.Inserted
		s.logger.Debug("backfilled factor", "factor", f.Name, "missing", res.Missing, "inserted", res.Inserted)
	}

	s.logger.Info("backfill complete", "from", start, "to", asOf, "factors", len(factors), "inserted", report.TotalInserted, "dry_run", dryRun)
	return report, nil
}

// backfillFactor holds the factor's lock while reading and padding its entries.
func (s *Service) backfillFactor(f *models.Factor, start, end models.Date, dryRun bool) (BackfillFactor, error) {
	unlock := s.locks.Lock(f.ID)
	defer unlock()

	res := BackfillFactor{FactorID: f.ID, FactorName: f.Name}
	r := &models.DateRange{Start: &start, End: &end}
	entries, err := s.repo.ListFactorEntries(&f.ID, r)
	if err != nil {
		return res, fmt.Errorf("list entries for %s: %w", f.Name, err)
	}

	missing, err := analytics.Missing(f.ID, entries, start, end)
	if err != nil {
		return res, fmt.Errorf("backfill %s: %w", f.Name, err)
	}
	res.Missing = len(missing)
	if dryRun {
		return res, nil
	}

	for _, e := range missing {
		inserted, err := s.repo.InsertFactorEntryIfAbsent(e)
		if err != nil {
			return res, fmt.Errorf("backfill %s on %s: %w", f.Name, e.Date, err)
		}
		if inserted {
			res.Inserted++
		}
	}
	return res, nil
}
