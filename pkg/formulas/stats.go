package formulas

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// MinMax returns the smallest and largest finite values.
// ok is false when there are none.
func MinMax(data []float64) (lo, hi float64, ok bool) {
	finite := finiteOnly(data)
	if len(finite) == 0 {
		return 0, 0, false
	}
	return floats.Min(finite), floats.Max(finite), true
}

// MaxAbs returns the largest absolute finite value, or 0 for no data.
func MaxAbs(data []float64) float64 {
	finite := finiteOnly(data)
	if len(finite) == 0 {
		return 0
	}
	abs := make([]float64, len(finite))
	for i, v := range finite {
		abs[i] = math.Abs(v)
	}
	return floats.Max(abs)
}

// PercentChange returns (current - previous) / previous * 100.
// Returns nil when previous is zero.
//
// Formula: (Current - Previous) / Previous * 100
func PercentChange(previous, current float64) *float64 {
	if previous == 0 {
		return nil
	}
	result := (current - previous) / previous * 100
	return &result
}

func finiteOnly(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
