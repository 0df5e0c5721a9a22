// ABOUTME: Metric aggregator computing per-field averages over wellbeing entries.
// ABOUTME: Each field averages only its non-null values; the divisor is that count.
package analytics

import (
	"github.com/harperreed/wellness/internal/models"
)

// FieldAggregate is the average of one metric field.
type FieldAggregate struct {
	Field     models.MetricField `json:"field" yaml:"field"`
	Average   Stat               `json:"average" yaml:"average"`
	Count     int                `json:"count" yaml:"count"`
	DateRange models.DateRange   `json:"date_range" yaml:"date_range"`
}

// Summary aggregates every metric field over the same entry set.
type Summary struct {
	TotalEntries int                                   `json:"total_entries" yaml:"total_entries"`
	DateRange    models.DateRange                      `json:"date_range" yaml:"date_range"`
	Fields       map[models.MetricField]FieldAggregate `json:"fields" yaml:"fields"`
}

// Aggregate averages field over entries that carry a value for it.
// DateRange spans all supplied entries, not only contributing ones.
func Aggregate(entries []*models.MetricEntry, field models.MetricField) FieldAggregate {
	agg := FieldAggregate{Field: field, DateRange: Span(entries)}

	var sum float64
	for _, e := range entries {
		if v, ok := e.Value(field); ok {
			sum += v
			agg.Count++
		}
	}
	if agg.Count > 0 {
		agg.Average = Value(round2(sum / float64(agg.Count)))
	}
	return agg
}

// Summarize aggregates all metric fields independently.
func Summarize(entries []*models.MetricEntry) Summary {
	s := Summary{
		TotalEntries: len(entries),
		DateRange:    Span(entries),
		Fields:       make(map[models.MetricField]FieldAggregate, len(models.AllMetricFields)),
	}
	for _, f := range models.AllMetricFields {
		s.Fields[f] = Aggregate(entries, f)
	}
	return s
}

// Span returns the min and max entry dates, or an empty range.
func Span(entries []*models.MetricEntry) models.DateRange {
	if len(entries) == 0 {
		return models.DateRange{}
	}
	start, end := entries[0].Date, entries[0].Date
	for _, e := range entries[1:] {
		if e.Date.Before(start) {
			start = e.Date
		}
		if e.Date.After(end) {
			end = e.Date
		}
	}
	return models.DateRange{Start: &start, End: &end}
}
