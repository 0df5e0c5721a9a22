// ABOUTME: Backfill normalizer turning sparse factor entries into dense daily series.
// ABOUTME: Missing dates are synthesized as not completed; real entries are kept verbatim.
package analytics

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/wellness/internal/models"
)

// DenseSeries is a completion value for every date in [Start, End].
// Construct with Normalize or NewDenseSeries.
type DenseSeries struct {
	Start  models.Date
	End    models.Date
	values []bool
}

// NewDenseSeries builds a series from a per-date map covering [start, end].
// It fails with ErrNotDense if any date in the range is missing.
func NewDenseSeries(values map[models.Date]bool, start, end models.Date) (*DenseSeries, error) {
	if start.After(end) {
		return nil, fmt.Errorf("new dense series %s..%s: %w", start, end, ErrInvalidRange)
	}
	s := &DenseSeries{Start: start, End: end, values: make([]bool, start.DaysUntil(end)+1)}
	for i := range s.values {
		d := start.AddDays(i)
		v, ok := values[d]
		if !ok {
			return nil, fmt.Errorf("new dense series: missing %s: %w", d, ErrNotDense)
		}
		s.values[i] = v
	}
	return s, nil
}

// Len returns the number of days in the series.
func (s *DenseSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// At returns the completion value on d; ok is false outside the range.
func (s *DenseSeries) At(d models.Date) (completed bool, ok bool) {
	if s == nil || d.Before(s.Start) || d.After(s.End) {
		return false, false
	}
	return s.values[s.Start.DaysUntil(d)], true
}

// Map returns the series as a date-keyed map.
func (s *DenseSeries) Map() map[models.Date]bool {
	out := make(map[models.Date]bool, s.Len())
	for i := 0; i < s.Len(); i++ {
		out[s.Start.AddDays(i)] = s.values[i]
	}
	return out
}

// Entries materializes the series as factor entries for factorID.
func (s *DenseSeries) Entries(factorID uuid.UUID) []*models.FactorEntry {
	out := make([]*models.FactorEntry, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		out = append(out, models.NewFactorEntry(factorID, s.Start.AddDays(i), s.values[i]))
	}
	return out
}

// Normalize builds the dense completion series for factorID over [start, end].
// Entries of other factors or outside the range are ignored.
func Normalize(factorID uuid.UUID, entries []*models.FactorEntry, start, end models.Date) (*DenseSeries, error) {
	if start.After(end) {
		return nil, fmt.Errorf("normalize %s..%s: %w", start, end, ErrInvalidRange)
	}
	values := make(map[models.Date]bool, start.DaysUntil(end)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		values[d] = false
	}
	for _, e := range entries {
		if e.FactorID != factorID {
			continue
		}
		if _, inRange := values[e.Date]; inRange {
			values[e.Date] = e.Completed
		}
	}
	return NewDenseSeries(values, start, end)
}

// Missing returns the padding entries Normalize would synthesize for factorID,
// in ascending date order. Used by the persisted backfill path.
func Missing(factorID uuid.UUID, entries []*models.FactorEntry, start, end models.Date) ([]*models.FactorEntry, error) {
	if start.After(end) {
		return nil, fmt.Errorf("missing %s..%s: %w", start, end, ErrInvalidRange)
	}
	present := make(map[models.Date]bool)
	for _, e := range entries {
		if e.FactorID == factorID {
			present[e.Date] = true
		}
	}
	var out []*models.FactorEntry
	for d := start; !d.After(end); d = d.AddDays(1) {
		if !present[d] {
			out = append(out, models.NewFactorEntry(factorID, d, false))
		}
	}
	return out, nil
}

// GlobalFloor returns the earliest entry date across all factors. ok is
// false when no entry falls on or before asOf, leaving nothing to track.
func GlobalFloor(entries []*models.FactorEntry, asOf models.Date) (floor models.Date, ok bool) {
	floor = asOf
	for _, e := range entries {
		if e.Date.After(asOf) {
			continue
		}
		ok = true
		if e.Date.Before(floor) {
			floor = e.Date
		}
	}
	return floor, ok
}
