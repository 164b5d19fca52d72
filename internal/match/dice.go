package match

import "math"

// Dice computes the token-set Dice coefficient 2*|A∩B| / (|A|+|B|).
// Two empty sets are considered identical.
func Dice(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	shared := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(a)+len(b))
}

// round3 rounds to 3 decimal places for stable comparisons.
func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
