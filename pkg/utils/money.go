package utils

import "math"

// Monetary amounts are stored as int64 minor units (cents) to avoid
// floating-point drift. The REST surface still speaks decimal values, so
// these helpers convert at the boundary.

// ToMinorUnits converts a decimal amount to minor units.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts minor units back to a decimal amount.
func FromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}
