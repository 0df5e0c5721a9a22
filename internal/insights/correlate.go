// ABOUTME: Correlation queries between factor completion and wellbeing metrics.
// ABOUTME: Builds aligned daily series from a store snapshot and ranks coefficients.
package insights

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/harperreed/wellness/internal/analytics"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
)

// FactorCorrelation is r between one factor's completion and a metric field.
type FactorCorrelation struct {
	FactorID    uuid.UUID          `json:"factor_id" yaml:"factor_id"`
	FactorName  string             `json:"factor_name" yaml:"factor_name"`
	Field       models.MetricField `json:"field" yaml:"field"`
	Coefficient analytics.Stat     `json:"coefficient" yaml:"coefficient"`
	Samples     int                `json:"samples" yaml:"samples"`
}

// MatrixRequest selects the variables for a correlation matrix.
// Empty Factors means all active factors; empty Fields means every metric field.
type MatrixRequest struct {
	Factors []string
	Fields  []models.MetricField
	Range   *models.DateRange
	AsOf    models.Date
	Top     int
}

// MatrixResult is the full matrix plus its strongest pairs.
type MatrixResult struct {
	Matrix   analytics.CorrelationMatrix `json:"matrix" yaml:"matrix"`
	TopPairs []analytics.Pair            `json:"top_pairs" yaml:"top_pairs"`
}

// FactorCorrelations correlates every active factor with field over r.
// Results are ordered by |r| descending, undefined coefficients last.
func (s *Service) FactorCorrelations(ctx context.Context, field models.MetricField, r *models.DateRange, asOf models.Date) ([]FactorCorrelation, error) {
	if !models.IsValidMetricField(string(field)) {
		return nil, fmt.Errorf("unknown metric field: %s", field)
	}
	factors, err := s.repo.ListFactors(false)
	if err != nil {
		return nil, fmt.Errorf("list factors: %w", err)
	}
	sn, err := s.loadSnapshot(asOf)
	if err != nil {
		return nil, err
	}
	start, end, err := sn.window(r)
	if err != nil {
		return nil, err
	}
	metric, err := s.metricSeries(field, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]FactorCorrelation, 0, len(factors))
	for _, f := range factors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dense, err := sn.series(f.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", f.Name, err)
		}
		fs := analytics.FactorSeries(dense)
		xs, _ := analytics.Align(fs, metric)
		out = append(out, FactorCorrelation{
			FactorID:    f.ID,
			FactorName:  f.Name,
			Field:       field,
			Coefficient: analytics.Correlate(fs, metric),
			Samples:     len(xs),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, aok := out[i].Coefficient.Get()
		b, bok := out[j].Coefficient.Get()
		if aok != bok {
			return aok
		}
		return math.Abs(a) > math.Abs(b)
	})
	return out, nil
}

// CorrelationMatrix correlates the requested factors and metric fields pairwise.
func (s *Service) CorrelationMatrix(ctx context.Context, req MatrixRequest) (*MatrixResult, error) {
	factors, err := s.selectFactors(req.Factors)
	if err != nil {
		return nil, err
	}
	fields := req.Fields
	if len(fields) == 0 {
		fields = models.AllMetricFields
	}
	for _, f := range fields {
		if !models.IsValidMetricField(string(f)) {
			return nil, fmt.Errorf("unknown metric field: %s", f)
		}
	}

	sn, err := s.loadSnapshot(req.AsOf)
	if err != nil {
		return nil, err
	}
	start, end, err := sn.window(req.Range)
	if err != nil {
		return nil, err
	}

	series := make([]analytics.LabeledSeries, 0, len(factors)+len(fields))
	for _, f := range factors {
		dense, err := sn.series(f.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", f.Name, err)
		}
		series = append(series, analytics.LabeledSeries{Label: f.Name, Series: analytics.FactorSeries(dense)})
	}

	metrics, err := s.repo.ListMetricEntries(&models.DateRange{Start: &start, End: &end}, 0)
	if err != nil {
		return nil, fmt.Errorf("list metric entries: %w", err)
	}
	for _, field := range fields {
		series = append(series, analytics.LabeledSeries{Label: string(field), Series: analytics.MetricSeries(metrics, field)})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := analytics.Matrix(series)
	s.logger.Debug("computed correlation matrix", "variables", len(series), "from", start, "to", end)
	return &MatrixResult{Matrix: m, TopPairs: analytics.TopPairs(m, req.Top)}, nil
}

func (s *Service) metricSeries(field models.MetricField, start, end models.Date) (analytics.Series, error) {
	entries, err := s.repo.ListMetricEntries(&models.DateRange{Start: &start, End: &end}, 0)
	if err != nil {
		return nil, fmt.Errorf("list metric entries: %w", err)
	}
	return analytics.MetricSeries(entries, field), nil
}

// selectFactors resolves refs, or returns all active factors when refs is empty.
func (s *Service) selectFactors(refs []string) ([]*models.Factor, error) {
	if len(refs) == 0 {
		factors, err := s.repo.ListFactors(false)
		if err != nil {
			return nil, fmt.Errorf("list factors: %w", err)
		}
		return factors, nil
	}
	factors := make([]*models.Factor, 0, len(refs))
	for _, ref := range refs {
		f, err := storage.FindFactor(s.repo, ref)
		if err != nil {
			return nil, err
		}
		factors = append(factors, f)
	}
	return factors, nil
}
