// ABOUTME: JSON views returned by MCP tools and resources.
// ABOUTME: Flattens model types to strings and nullable numbers for client schemas.
package mcp

import (
	"fmt"
	"time"

	"github.com/harperreed/wellness/internal/analytics"
	"github.com/harperreed/wellness/internal/models"
)

type factorView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Active   bool   `json:"active"`
}

func newFactorView(f *models.Factor) factorView {
	return factorView{ID: f.ID.String()[:8], Name: f.Name, Category: f.Category, Active: f.IsActive}
}

type entryView struct {
	ID        string `json:"id"`
	Factor    string `json:"factor"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	Notes     string `json:"notes,omitempty"`
}

func newEntryView(factorName string, e *models.FactorEntry) entryView {
	v := entryView{ID: e.ID.String()[:8], Factor: factorName, Date: e.Date.String(), Completed: e.Completed}
	if e.Notes != nil {
		v.Notes = *e.Notes
	}
	return v
}

type moodView struct {
	ID     string              `json:"id"`
	Date   string              `json:"date"`
	Time   string              `json:"time"`
	Values map[string]*float64 `json:"values"`
	Notes  string              `json:"notes,omitempty"`
}

func newMoodView(m *models.MetricEntry) moodView {
	v := moodView{
		ID:     m.ID.String()[:8],
		Date:   m.Date.String(),
		Time:   m.Time.Format(time.RFC3339),
		Values: make(map[string]*float64, len(models.AllMetricFields)),
	}
	for _, f := range models.AllMetricFields {
		if x, ok := m.Value(f); ok {
			v.Values[string(f)] = &x
		}
	}
	if m.Notes != nil {
		v.Notes = *m.Notes
	}
	return v
}

type factorStatsView struct {
	Factor         string  `json:"factor"`
	TotalDays      int     `json:"total_days"`
	CompletedDays  int     `json:"completed_days"`
	CompletionRate float64 `json:"completion_rate"`
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
}

func newFactorStatsView(st analytics.FactorStats) factorStatsView {
	return factorStatsView{
		Factor:         st.FactorName,
		TotalDays:      st.TotalDays,
		CompletedDays:  st.CompletedDays,
		CompletionRate: st.CompletionRate,
		CurrentStreak:  st.CurrentStreak,
		LongestStreak:  st.LongestStreak,
	}
}

type fieldView struct {
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

type summaryView struct {
	TotalEntries int                  `json:"total_entries"`
	From         string               `json:"from,omitempty"`
	To           string               `json:"to,omitempty"`
	Fields       map[string]fieldView `json:"fields"`
}

func newSummaryView(s analytics.Summary) summaryView {
	v := summaryView{
		TotalEntries: s.TotalEntries,
		From:         dateString(s.DateRange.Start),
		To:           dateString(s.DateRange.End),
		Fields:       make(map[string]fieldView, len(s.Fields)),
	}
	for field, agg := range s.Fields {
		v.Fields[string(field)] = fieldView{Average: statPtr(agg.Average), Count: agg.Count}
	}
	return v
}

type pairView struct {
	A           string   `json:"a"`
	B           string   `json:"b"`
	Coefficient *float64 `json:"coefficient"`
}

// statPtr maps an undefined Stat to nil.
func statPtr(s analytics.Stat) *float64 {
	v, ok := s.Get()
	if !ok {
		return nil
	}
	return &v
}

func dateString(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// parseAsOf parses an optional YYYY-MM-DD date, defaulting to today.
func (s *Server) parseAsOf(raw string) (models.Date, error) {
	if raw == "" {
		return s.today(), nil
	}
	return models.ParseDate(raw)
}

// parseRange builds an optional inclusive date range.
func parseRange(from, to string) (*models.DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	r := &models.DateRange{}
	if from != "" {
		d, err := models.ParseDate(from)
		if err != nil {
			return nil, err
		}
		r.Start = &d
	}
	if to != "" {
		d, err := models.ParseDate(to)
		if err != nil {
			return nil, err
		}
		r.End = &d
	}
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return nil, fmt.Errorf("from %s is after to %s", r.Start, r.End)
	}
	return r, nil
}
