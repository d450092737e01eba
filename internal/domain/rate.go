package domain

import "math"

// OpeningRate returns the percentage of eligible newsletter days the user
// read, in [0, 100] at full floating precision.
//
// An empty eligible set yields 100: a user whose window contains no
// newsletter days is vacuously fully caught up. The clamp guards against a
// miscomputed denominator ever reporting more than 100%.
func OpeningRate(reads, eligible DaySet) float64 {
	if len(eligible) == 0 {
		return 100
	}

	hits := 0
	for d := range reads {
		if eligible.Has(d) {
			hits++
		}
	}

	rate := 100 * float64(hits) / float64(len(eligible))
	if rate > 100 {
		return 100
	}
	return rate
}

// Round2 rounds a percentage to two decimal places for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
