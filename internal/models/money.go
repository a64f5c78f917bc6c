package models

import "math"

// RoundAmount rounds a monetary amount to 2 decimal places.
// Applied to every amount before it reaches a store.
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}
