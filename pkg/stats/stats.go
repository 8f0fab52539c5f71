// Package stats provides statistical helpers for batch reports.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Percentile calculates the p-th percentile of a sorted slice.
// The slice must already be sorted in ascending order.
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Summary describes a distribution of per-file counts.
type Summary struct {
	Mean   float64
	StdDev float64
	Max    int
}

// Summarize computes the mean, population standard deviation and maximum
// of counts. An empty slice yields the zero Summary.
func Summarize(counts []int) Summary {
	if len(counts) == 0 {
		return Summary{}
	}
	xs := make([]float64, len(counts))
	maxCount := counts[0]
	for i, c := range counts {
		xs[i] = float64(c)
		maxCount = max(maxCount, c)
	}

	mean, variance := stat.PopMeanVariance(xs, nil)
	return Summary{
		Mean:   round2(mean),
		StdDev: round2(math.Sqrt(variance)),
		Max:    maxCount,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
