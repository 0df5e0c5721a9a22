// ABOUTME: Tagged statistic result distinguishing computed values from undefined ones.
// ABOUTME: Also holds the engine's contract-violation sentinel errors.
package analytics

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
)

var (
	// ErrNotDense is returned when a completion series has a missing date.
	ErrNotDense = errors.New("series is not dense")
	// ErrUnaligned is returned when paired samples differ in length.
	ErrUnaligned = errors.New("series are not aligned")
	// ErrInvalidRange is returned when a range starts after it ends.
	ErrInvalidRange = errors.New("range start is after range end")
)

// Stat is either a computed value or undefined (not computable).
// The zero Stat is undefined.
type Stat struct {
	value   float64
	defined bool
}

// Value returns a defined Stat holding x.
func Value(x float64) Stat {
	return Stat{value: x, defined: true}
}

// Undefined returns a Stat that carries no value.
func Undefined() Stat {
	return Stat{}
}

// Get returns the value and whether it is defined.
func (s Stat) Get() (float64, bool) {
	return s.value, s.defined
}

// Defined reports whether the statistic was computable.
func (s Stat) Defined() bool {
	return s.defined
}

// Float returns the value, or NaN when undefined.
func (s Stat) Float() float64 {
	if !s.defined {
		return math.NaN()
	}
	return s.value
}

// String renders the value with two decimals, or "n/a".
func (s Stat) String() string {
	if !s.defined {
		return "n/a"
	}
	return strconv.FormatFloat(s.value, 'f', 2, 64)
}

// MarshalJSON encodes a number, or null when undefined.
func (s Stat) MarshalJSON() ([]byte, error) {
	if !s.defined {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

// UnmarshalJSON accepts a number or null.
func (s *Stat) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*s = Undefined()
		return nil
	}
	*s = Value(*v)
	return nil
}

// MarshalYAML encodes a number, or null when undefined.
func (s Stat) MarshalYAML() (interface{}, error) {
	if !s.defined {
		return nil, nil
	}
	return s.value, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
