package formulas

import (
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

// PopStdDev calculates the population standard deviation (divides by n, not n-1)
func PopStdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	_, std := stat.PopMeanStdDev(data, nil)
	return std
}

// MinMax returns the smallest and largest values of data, or zeros when empty
func MinMax(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}
	return floats.Min(data), floats.Max(data)
}

// PositiveOnly returns a copy of data without zero or negative values
func PositiveOnly(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}

// Tail returns the last n values of data (all of data when n >= len(data))
func Tail(data []float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if n >= len(data) {
		return data
	}
	return data[len(data)-n:]
}

// LinearRegressionSlope fits y = a + b*x with x = 0..n-1 and returns b.
// Returns 0 for fewer than two points.
func LinearRegressionSlope(y []float64) float64 {
	if len(y) < 2 {
		return 0
	}
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	_, beta := stat.LinearRegression(x, y, nil, false)
	return beta
}
