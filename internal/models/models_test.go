// ABOUTME: Tests for Date, Factor, FactorEntry, and MetricEntry models.
// ABOUTME: Validates date arithmetic, JSON encoding, and optional field access.
package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    Date
		wantErr bool
	}{
		{"2025-01-31", Date{2025, time.January, 31}, false},
		{"2024-02-29", Date{2024, time.February, 29}, false},
		{"2025-02-29", Date{}, true},
		{"31-01-2025", Date{}, true},
		{"", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDate(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateArithmetic(t *testing.T) {
	d := Date{2024, time.February, 28}

	if got := d.AddDays(1); got != (Date{2024, time.February, 29}) {
		t.Errorf("AddDays(1) = %v", got)
	}
	if got := d.AddDays(2); got != (Date{2024, time.March, 1}) {
		t.Errorf("AddDays(2) = %v", got)
	}
	if got := d.AddDays(-59); got != (Date{2023, time.December, 31}) {
		t.Errorf("AddDays(-59) = %v", got)
	}
	if n := d.DaysUntil(Date{2024, time.March, 2}); n != 3 {
		t.Errorf("DaysUntil = %d, want 3", n)
	}
	if !d.Before(d.AddDays(1)) || d.After(d.AddDays(1)) {
		t.Error("Before/After disagree with AddDays")
	}
}

func TestDateJSON(t *testing.T) {
	d := Date{2025, time.March, 7}
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"2025-03-07"` {
		t.Errorf("Marshal = %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back != d {
		t.Errorf("Unmarshal = %v, want %v", back, d)
	}
}

func TestDateRangeContains(t *testing.T) {
	start := Date{2025, time.January, 10}
	end := Date{2025, time.January, 20}
	r := DateRange{Start: &start, End: &end}

	if !r.Contains(start) || !r.Contains(end) {
		t.Error("range should be inclusive")
	}
	if r.Contains(start.AddDays(-1)) || r.Contains(end.AddDays(1)) {
		t.Error("range should exclude outside dates")
	}
	if !(DateRange{}).Contains(start) {
		t.Error("unbounded range should contain everything")
	}
}

func TestNewFactor(t *testing.T) {
	f := NewFactor("Exercise")

	if f.ID.String() == "" {
		t.Error("expected UUID to be set")
	}
	if !f.IsActive {
		t.Error("new factor should be active")
	}
	if f.Category != DefaultCategory {
		t.Errorf("Category = %s, want %s", f.Category, DefaultCategory)
	}
	if f.WithCategory("").Category != DefaultCategory {
		t.Error("empty category should keep default")
	}
	if f.WithCategory("fitness").Category != "fitness" {
		t.Error("expected category fitness")
	}
}

func TestNewFactorEntry(t *testing.T) {
	f := NewFactor("Meditate")
	d := Date{2025, time.May, 1}
	e := NewFactorEntry(f.ID, d, true).WithNotes("10 min")

	if e.FactorID != f.ID {
		t.Error("expected FactorID to match")
	}
	if e.Date != d || !e.Completed {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Notes == nil || *e.Notes != "10 min" {
		t.Error("expected notes to be set")
	}
}

func TestMetricEntryValue(t *testing.T) {
	m := NewMetricEntry(6).With(FieldStress, 3).With(FieldLibido, 4)

	if v, ok := m.Value(FieldMood); !ok || v != 6 {
		t.Errorf("mood = %v, %v", v, ok)
	}
	if v, ok := m.Value(FieldStress); !ok || v != 3 {
		t.Errorf("stress = %v, %v", v, ok)
	}
	if _, ok := m.Value(FieldEnergy); ok {
		t.Error("energy should be null")
	}
	if _, ok := m.Value(MetricField("bogus")); ok {
		t.Error("unknown field should be null")
	}

	m.With(FieldMood, 8)
	if m.MoodScore != 8 {
		t.Errorf("MoodScore = %v, want 8", m.MoodScore)
	}
}

func TestAllMetricFieldsAddressable(t *testing.T) {
	for _, f := range AllMetricFields {
		m := NewMetricEntry(1).With(f, 2)
		if v, ok := m.Value(f); !ok || v != 2 {
			t.Errorf("field %s not settable", f)
		}
		if !IsValidMetricField(string(f)) {
			t.Errorf("field %s not valid", f)
		}
	}
	if IsValidMetricField("weight") {
		t.Error("weight should not be a metric field")
	}
}

func TestMetricEntryWithTime(t *testing.T) {
	ts := time.Date(2025, time.June, 3, 21, 15, 0, 0, time.UTC)
	m := NewMetricEntry(5).WithTime(ts)

	if m.Date != (Date{2025, time.June, 3}) {
		t.Errorf("Date = %v", m.Date)
	}
	if !m.Time.Equal(ts) {
		t.Errorf("Time = %v", m.Time)
	}
}
