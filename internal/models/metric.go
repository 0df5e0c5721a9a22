// ABOUTME: MetricEntry model and MetricField enum for wellbeing measurements.
// ABOUTME: Mood is required; the other nine scales are optional per entry.
package models

import (
	"time"

	"github.com/google/uuid"
)

// MetricField names a numeric scale on a MetricEntry.
type MetricField string

const (
	FieldMood          MetricField = "mood_score"
	FieldEnergy        MetricField = "energy_level"
	FieldStress        MetricField = "stress_level"
	FieldAnxiety       MetricField = "anxiety_level"
	FieldRumination    MetricField = "rumination_level"
	FieldAnger         MetricField = "anger_level"
	FieldGeneralHealth MetricField = "general_health"
	FieldSleepQuality  MetricField = "sleep_quality"
	FieldSweating      MetricField = "sweating_level"
	FieldLibido        MetricField = "libido_level"
)

// AllMetricFields lists every numeric field in display order.
var AllMetricFields = []MetricField{
	FieldMood, FieldEnergy, FieldStress, FieldAnxiety, FieldRumination,
	FieldAnger, FieldGeneralHealth, FieldSleepQuality, FieldSweating, FieldLibido,
}

// IsValidMetricField checks if a string names a metric field.
func IsValidMetricField(s string) bool {
	for _, f := range AllMetricFields {
		if string(f) == s {
			return true
		}
	}
	return false
}

// MetricEntry is one wellbeing logging event. Several may share a date.
type MetricEntry struct {
	ID              uuid.UUID `json:"id" yaml:"id"`
	Date            Date      `json:"date" yaml:"date"`
	Time            time.Time `json:"time" yaml:"time"`
	MoodScore       float64   `json:"mood_score" yaml:"mood_score"`
	EnergyLevel     *float64  `json:"energy_level,omitempty" yaml:"energy_level,omitempty"`
	StressLevel     *float64  `json:"stress_level,omitempty" yaml:"stress_level,omitempty"`
	AnxietyLevel    *float64  `json:"anxiety_level,omitempty" yaml:"anxiety_level,omitempty"`
	RuminationLevel *float64  `json:"rumination_level,omitempty" yaml:"rumination_level,omitempty"`
	AngerLevel      *float64  `json:"anger_level,omitempty" yaml:"anger_level,omitempty"`
	GeneralHealth   *float64  `json:"general_health,omitempty" yaml:"general_health,omitempty"`
	SleepQuality    *float64  `json:"sleep_quality,omitempty" yaml:"sleep_quality,omitempty"`
	SweatingLevel   *float64  `json:"sweating_level,omitempty" yaml:"sweating_level,omitempty"`
	LibidoLevel     *float64  `json:"libido_level,omitempty" yaml:"libido_level,omitempty"`
	Notes           *string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
}

// NewMetricEntry creates an entry with generated UUID stamped now.
func NewMetricEntry(mood float64) *MetricEntry {
	now := time.Now()
	return &MetricEntry{
		ID:        uuid.New(),
		Date:      DateOf(now),
		Time:      now,
		MoodScore: mood,
		CreatedAt: now,
	}
}

// WithTime sets the logging time and derives the date from it.
func (m *MetricEntry) WithTime(t time.Time) *MetricEntry {
	m.Time = t
	m.Date = DateOf(t)
	return m
}

// WithNotes sets notes on the entry.
func (m *MetricEntry) WithNotes(notes string) *MetricEntry {
	m.Notes = &notes
	return m
}

// With sets an optional field. Setting FieldMood overwrites the mood score.
func (m *MetricEntry) With(field MetricField, v float64) *MetricEntry {
	if field == FieldMood {
		m.MoodScore = v
		return m
	}
	if p := m.fieldPtr(field); p != nil {
		*p = &v
	}
	return m
}

// Value returns the field's value; ok is false when the field is null.
func (m *MetricEntry) Value(field MetricField) (float64, bool) {
	if field == FieldMood {
		return m.MoodScore, true
	}
	p := m.fieldPtr(field)
	if p == nil || *p == nil {
		return 0, false
	}
	return **p, true
}

func (m *MetricEntry) fieldPtr(field MetricField) **float64 {
	switch field {
	case FieldEnergy:
		return &m.EnergyLevel
	case FieldStress:
		return &m.StressLevel
	case FieldAnxiety:
		return &m.AnxietyLevel
	case FieldRumination:
		return &m.RuminationLevel
	case FieldAnger:
		return &m.AngerLevel
	case FieldGeneralHealth:
		return &m.GeneralHealth
	case FieldSleepQuality:
		return &m.SleepQuality
	case FieldSweating:
		return &m.SweatingLevel
	case FieldLibido:
		return &m.LibidoLevel
	}
	return nil
}
