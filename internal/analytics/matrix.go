// ABOUTME: Pairwise correlation matrix over labeled series and strongest-pair ranking.
// ABOUTME: Every cell is an independent Correlate call; no shortcut is taken.
package analytics

import (
	"math"
	"sort"
)

// LabeledSeries names a series for matrix output.
type LabeledSeries struct {
	Label  string
	Series Series
}

// CorrelationMatrix holds r for every ordered pair of labels.
type CorrelationMatrix struct {
	Labels []string `json:"labels" yaml:"labels"`
	Values [][]Stat `json:"values" yaml:"values"`
}

// Pair is one off-diagonal matrix cell.
type Pair struct {
	A           string `json:"a" yaml:"a"`
	B           string `json:"b" yaml:"b"`
	Coefficient Stat   `json:"coefficient" yaml:"coefficient"`
}

// Matrix correlates every pair of series. The diagonal is 1 when the series
// varies and Undefined otherwise, matching what Correlate would return.
func Matrix(series []LabeledSeries) CorrelationMatrix {
	m := CorrelationMatrix{
		Labels: make([]string, len(series)),
		Values: make([][]Stat, len(series)),
	}
	for i, s := range series {
		m.Labels[i] = s.Label
		m.Values[i] = make([]Stat, len(series))
	}
	for i := range series {
		for j := range series {
			m.Values[i][j] = Correlate(series[i].Series, series[j].Series)
		}
	}
	return m
}

// At returns the coefficient for labels a and b.
func (m CorrelationMatrix) At(a, b string) (Stat, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return Undefined(), false
	}
	return m.Values[i][j], true
}

func (m CorrelationMatrix) index(label string) int {
	for i, l := range m.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// TopPairs returns up to n distinct off-diagonal pairs ordered by |r|
// descending. Undefined cells are skipped. n <= 0 returns all pairs.
func TopPairs(m CorrelationMatrix, n int) []Pair {
	var pairs []Pair
	for i := range m.Labels {
		for j := i + 1; j < len(m.Labels); j++ {
			if !m.Values[i][j].Defined() {
				continue
			}
			pairs = append(pairs, Pair{A: m.Labels[i], B: m.Labels[j], Coefficient: m.Values[i][j]})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return math.Abs(pairs[a].Coefficient.value) > math.Abs(pairs[b].Coefficient.value)
	})
	if n > 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}
