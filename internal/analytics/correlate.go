// ABOUTME: Pearson correlation over aligned daily series with undefined-result handling.
// ABOUTME: Zero variance or fewer than two aligned points yields Undefined, never 0.
package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/harperreed/wellness/internal/models"
)

// MinSamples is the fewest aligned points a correlation needs.
const MinSamples = 2

// Series is a numeric value per date.
type Series map[models.Date]float64

// Dates returns the series dates in ascending order.
func (s Series) Dates() []models.Date {
	out := make([]models.Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// FactorSeries coerces a dense completion series to 0/1 values.
func FactorSeries(dense *DenseSeries) Series {
	out := make(Series, dense.Len())
	for d, done := range dense.Map() {
		if done {
			out[d] = 1
		} else {
			out[d] = 0
		}
	}
	return out
}

// MetricSeries builds a daily series for field. Several entries on one date
// are averaged; dates where the field is always null are left out.
func MetricSeries(entries []*models.MetricEntry, field models.MetricField) Series {
	sums := make(map[models.Date]float64)
	counts := make(map[models.Date]int)
	for _, e := range entries {
		if v, ok := e.Value(field); ok {
			sums[e.Date] += v
			counts[e.Date]++
		}
	}
	out := make(Series, len(sums))
	for d, sum := range sums {
		out[d] = sum / float64(counts[d])
	}
	return out
}

// Align restricts a and b to their common dates, in ascending date order.
func Align(a, b Series) (xs, ys []float64) {
	for _, d := range a.Dates() {
		if y, ok := b[d]; ok {
			xs = append(xs, a[d])
			ys = append(ys, y)
		}
	}
	return xs, ys
}

// Correlate aligns a and b on shared dates and returns Pearson's r.
func Correlate(a, b Series) Stat {
	xs, ys := Align(a, b)
	// Align returns equal-length slices, so Pearson cannot fail here.
	r, _ := Pearson(xs, ys)
	return r
}

// Pearson returns the product-moment correlation of paired samples.
// Mismatched lengths are a contract error; too few samples or a constant
// side give Undefined.
func Pearson(xs, ys []float64) (Stat, error) {
	if len(xs) != len(ys) {
		return Undefined(), fmt.Errorf("pearson: %d vs %d samples: %w", len(xs), len(ys), ErrUnaligned)
	}
	n := len(xs)
	if n < MinSamples || constant(xs) || constant(ys) {
		return Undefined(), nil
	}

	dx, okX := deviations(xs)
	dy, okY := deviations(ys)
	if !okX || !okY {
		return Undefined(), nil
	}

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		cov += dx[i] * dy[i]
		varX += dx[i] * dx[i]
		varY += dy[i] * dy[i]
	}
	if varX == 0 || varY == 0 {
		return Undefined(), nil
	}

	r := cov / (math.Sqrt(varX) * math.Sqrt(varY))
	return Value(math.Max(-1, math.Min(1, r))), nil
}

// deviations centres xs on its mean and divides by the largest absolute
// deviation, so every result lies in [-1, 1] whatever the magnitude of xs.
// ok is false when the spread is zero or not finite.
func deviations(xs []float64) (out []float64, ok bool) {
	n := float64(len(xs))
	var mean float64
	for _, x := range xs {
		mean += x / n
	}

	out = make([]float64, len(xs))
	var scale float64
	for i, x := range xs {
		out[i] = x - mean
		scale = math.Max(scale, math.Abs(out[i]))
	}
	if scale == 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return nil, false
	}
	for i := range out {
		out[i] /= scale
	}
	return out, true
}

// constant compares against the first sample exactly; a float mean of equal
// values can drift and leave a spurious nonzero variance.
func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
