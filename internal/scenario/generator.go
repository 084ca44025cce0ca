// Bounded mean-reverting random walk for target control values
package scenario

import (
	"math"
	"math/rand"
)

// meanReversion is the fixed pull strength toward the range midpoint. It
// keeps the walk from sticking at a boundary.
const meanReversion = 0.2

// NextValue computes the next target value for a controlled quantity.
// The current value is clamped into [min, max] first, drifted toward the
// midpoint, jittered uniformly within ±volatility, clamped again (machine
// limits are never exceeded), and rounded half-away-from-zero to precision
// decimal digits. Deterministic given rng; no side effects.
func NextValue(current, min, max, volatility float64, precision int, rng *rand.Rand) float64 {
	current = clamp(current, min, max)
	center := (min + max) / 2
	drift := (center - current) * meanReversion
	noise := (rng.Float64()*2 - 1) * volatility
	next := clamp(current+drift+noise, min, max)
	pow := math.Pow(10, float64(precision))
	return math.Round(next*pow) / pow
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
