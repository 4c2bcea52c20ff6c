package utils

import "math"

// RoundWithTwoDecimalPlace arredonda para duas casas decimais. NaN é preservado.
func RoundWithTwoDecimalPlace(f float64) float64 {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}

	return math.Round(f*100) / 100
}
