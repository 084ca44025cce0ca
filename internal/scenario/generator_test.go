package scenario

import (
	"math"
	"math/rand"
	"testing"
)

func TestNextValueStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10000; i++ {
		min := rng.Float64() * 10
		max := min + rng.Float64()*10
		current := min + rng.Float64()*(max-min)
		volatility := rng.Float64() * 50 // deliberately larger than the range
		next := NextValue(current, min, max, volatility, 1, rng)
		if next < min || next > max {
			t.Fatalf("NextValue(%f, %f, %f, %f) = %f, out of bounds", current, min, max, volatility, next)
		}
	}
}

func TestNextValueCenterIsFixedPoint(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	min, max := 2.0, 8.0
	center := (min + max) / 2
	if got := NextValue(center, min, max, 0, 1, rng); got != center {
		t.Errorf("zero volatility at center should be a fixed point, got %f", got)
	}
	// An off-grid center rounds to precision.
	if got := NextValue(2.125, 2.0, 2.25, 0, 2, rng); got != 2.13 {
		t.Errorf("expected round-half-away-from-zero to 2.13, got %f", got)
	}
}

func TestNextValuePullsAwayFromLowerBound(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	min, max := 2.0, 8.0
	for i := 0; i < 100; i++ {
		next := NextValue(min, min, max, 0, 3, rng)
		if next < min {
			t.Fatalf("next %f below min", next)
		}
		if next <= min {
			t.Fatalf("expected drift away from the lower bound, got %f", next)
		}
	}
}

func TestNextValueMovesTowardCenter(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	min, max := 2.0, 8.0
	current := 4.0
	next := NextValue(current, min, max, 0, 1, rng)
	if next <= current || next > 5.0 {
		t.Errorf("expected strict move toward 5.0 from 4.0, got %f", next)
	}
	if math.Abs(next-4.2) > 1e-9 {
		t.Errorf("drift is 20%% of distance to center: want 4.2, got %f", next)
	}
}

func TestNextValueClampsOutOfRangeInput(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	// Out-of-range input is treated as the nearest bound.
	next := NextValue(100, 2, 8, 0, 1, rng)
	if next != 7.4 { // 8 + (5-8)*0.2 = 7.4
		t.Errorf("expected clamp-then-drift from max, got %f", next)
	}
}

func TestNextValueRoundsHalfAwayFromZero(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	// current=min=max pins the value; precision does the rest.
	if got := NextValue(2.25, 2.25, 2.25, 0, 1, rng); got != 2.3 {
		t.Errorf("want 2.3, got %f", got)
	}
}
