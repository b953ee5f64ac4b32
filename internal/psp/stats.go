package psp

import (
	"math"
	"sort"
)

// nonMissingFraction returns the fraction of values in vals that are not
// the missing sentinel.
func nonMissingFraction(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	present := 0
	for _, v := range vals {
		if !IsMissing(v) {
			present++
		}
	}
	return float64(present) / float64(len(vals))
}

// median returns the median of the non-missing values in vals, or NaN if
// none are present.
func median(vals []float64) float64 {
	present := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !IsMissing(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return Missing
	}
	sort.Float64s(present)
	n := len(present)
	if n%2 == 1 {
		return present[n/2]
	}
	return (present[n/2-1] + present[n/2]) / 2
}

// sampleSD returns the sample standard deviation (ddof=1) of the
// non-missing values in vals, or NaN if fewer than two are present.
func sampleSD(vals []float64) float64 {
	present := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !IsMissing(v) {
			present = append(present, v)
		}
	}
	n := len(present)
	if n < 2 {
		return Missing
	}
	var sum float64
	for _, v := range present {
		sum += v
	}
	mean := sum / float64(n)
	var ss float64
	for _, v := range present {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// meanOf returns the arithmetic mean of vals (all assumed present).
func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return Missing
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// column extracts column j from the matrix.
func column(d *Matrix, j int) []float64 {
	out := make([]float64, d.NRows())
	for i, row := range d.Values {
		out[i] = row[j]
	}
	return out
}

// rowMedians returns the per-row median over all columns.
func rowMedians(d *Matrix) []float64 {
	out := make([]float64, d.NRows())
	for i, row := range d.Values {
		out[i] = median(row)
	}
	return out
}
