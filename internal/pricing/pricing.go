// Package pricing computes final reservation totals. It is a pure function
// layer: no storage, no clock of its own, no error paths.
package pricing

import (
	"math"
	"time"
)

// earlyBirdFactor is the time-boxed discount applied while the global
// discount window is open.
const earlyBirdFactor = 0.9

// ComputeTotal returns the final total in base-currency minor units.
//
// Discounts are multiplicative and order-fixed: the time-boxed discount is
// applied first (when now is within the window), the promo percentage second.
// Each step rounds to the nearest minor unit. A promoPct outside (0, 100] is
// treated as no promo; normalizing malformed input is the caller's job.
func ComputeTotal(subtotalRsd int64, discountUntil *time.Time, promoPct int, now time.Time) int64 {
	total := subtotalRsd

	if discountUntil != nil && !now.After(*discountUntil) {
		total = roundToUnit(float64(total) * earlyBirdFactor)
	}

	if promoPct > 0 && promoPct <= 100 {
		total = roundToUnit(float64(total) * (1 - float64(promoPct)/100))
	}

	return total
}

func roundToUnit(v float64) int64 {
	return int64(math.Round(v))
}
