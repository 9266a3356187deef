package utils

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile (0 <= p <= 1) of xs by linear interpolation
// between the order statistics at floor((n-1)p) and ceil((n-1)p). NaN entries
// are ignored; the result is NaN when nothing remains. xs is not modified.
func Quantile(xs []float64, p float64) float64 {
	sorted := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)

	pos := float64(len(sorted)-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
