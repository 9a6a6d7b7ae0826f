package policy

import "math"

// RemainingHours holds the invariant remaining = allocated - used.
func RemainingHours(allocated, used float64) float64 {
	return allocated - used
}

// ProgressPercentage is round-half-up at the integer boundary, clamped to
// [0, 100]. Zero allocation reports zero progress.
func ProgressPercentage(used, allocated float64) int {
	if allocated <= 0 {
		return 0
	}
	p := int(math.Floor(used/allocated*100 + 0.5))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
