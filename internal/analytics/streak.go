// ABOUTME: Streak calculator over dense factor completion series.
// ABOUTME: Computes completion counts, rate, longest streak, and current streak as of a date.
package analytics

import (
	"github.com/google/uuid"
	"github.com/harperreed/wellness/internal/models"
)

// StreakStats summarizes a factor's completion history.
type StreakStats struct {
	TotalDays      int     `json:"total_days" yaml:"total_days"`
	CompletedDays  int     `json:"completed_days" yaml:"completed_days"`
	CompletionRate float64 `json:"completion_rate" yaml:"completion_rate"`
	CurrentStreak  int     `json:"current_streak" yaml:"current_streak"`
	LongestStreak  int     `json:"longest_streak" yaml:"longest_streak"`
}

// FactorStats pairs streak stats with the factor they describe.
type FactorStats struct {
	FactorID   uuid.UUID `json:"factor_id" yaml:"factor_id"`
	FactorName string    `json:"factor_name" yaml:"factor_name"`
	StreakStats `yaml:",inline"`
}

// Streaks computes stats for a dense series. Dates after asOf never count
// toward the current streak, which is anchored at min(asOf, series end).
func Streaks(series *DenseSeries, asOf models.Date) StreakStats {
	var st StreakStats
	if series.Len() == 0 {
		return st
	}

	run := 0
	for _, done := range series.values {
		st.TotalDays++
		if !done {
			run = 0
			continue
		}
		st.CompletedDays++
		run++
		if run > st.LongestStreak {
			st.LongestStreak = run
		}
	}
	st.CompletionRate = CompletionRate(st.CompletedDays, st.TotalDays)

	anchor := asOf
	if series.End.Before(anchor) {
		anchor = series.End
	}
	for d := anchor; !d.Before(series.Start); d = d.AddDays(-1) {
		done, _ := series.At(d)
		if !done {
			break
		}
		st.CurrentStreak++
	}
	return st
}

// StatsFor computes FactorStats for factor from its dense series.
func StatsFor(factor *models.Factor, series *DenseSeries, asOf models.Date) FactorStats {
	return FactorStats{
		FactorID:    factor.ID,
		FactorName:  factor.Name,
		StreakStats: Streaks(series, asOf),
	}
}

// CompletionRate returns completed/total as a percentage rounded to 2 decimals.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(completed) / float64(total) * 100)
}
