// ABOUTME: Factor and FactorEntry models for daily lifestyle habits.
// ABOUTME: Entries are unique per (factor, date); re-logging overwrites in place.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategory is assigned when a factor is created without one.
const DefaultCategory = "general"

// Factor is a tracked binary daily habit.
type Factor struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Category  string    `json:"category" yaml:"category"`
	IsActive  bool      `json:"is_active" yaml:"is_active"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewFactor creates an active Factor with generated UUID.
func NewFactor(name string) *Factor {
	return &Factor{
		ID:        uuid.New(),
		Name:      name,
		Category:  DefaultCategory,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

// WithCategory sets the category. Empty keeps the default.
func (f *Factor) WithCategory(category string) *Factor {
	if category != "" {
		f.Category = category
	}
	return f
}

// FactorEntry records whether a factor was completed on a date.
type FactorEntry struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	FactorID  uuid.UUID `json:"factor_id" yaml:"factor_id"`
	Date      Date      `json:"date" yaml:"date"`
	Completed bool      `json:"completed" yaml:"completed"`
	Notes     *string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewFactorEntry creates an entry for factorID on date.
func NewFactorEntry(factorID uuid.UUID, date Date, completed bool) *FactorEntry {
	now := time.Now()
	return &FactorEntry{
		ID:        uuid.New(),
		FactorID:  factorID,
		Date:      date,
		Completed: completed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithNotes sets notes on the entry.
func (e *FactorEntry) WithNotes(notes string) *FactorEntry {
	e.Notes = &notes
	return e
}
