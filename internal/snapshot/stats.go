package snapshot

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// The helpers below return nil for empty input so that callers can tell
// "no data" apart from a real zero.

func ptr[T any](v T) *T { return &v }

// Median averages the two middle values for even-length input.
func Median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return ptr((sorted[mid-1] + sorted[mid]) / 2)
	}
	return ptr(sorted[mid])
}

// StdDev is the population standard deviation. A single value has zero
// spread.
func StdDev(values []float64) *float64 {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return ptr(0.0)
	}
	_, std := stat.PopMeanStdDev(values, nil)
	return ptr(std)
}

// Percentile returns the ceil-rank empirical quantile, p in [0, 1].
func Percentile(values []float64, p float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	p = math.Max(0, math.Min(1, p))
	if p == 0 {
		return ptr(sorted[0])
	}
	return ptr(stat.Quantile(p, stat.Empirical, sorted, nil))
}

func Mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	return ptr(stat.Mean(values, nil))
}

func Min(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	return ptr(floats.Min(values))
}

func Max(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	return ptr(floats.Max(values))
}

// Mode returns the most frequent value; ties go to the value that reached
// the winning count first.
func Mode(values []int) *int {
	if len(values) == 0 {
		return nil
	}
	counts := make(map[int]int, len(values))
	best, bestCount := 0, 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return ptr(best)
}
