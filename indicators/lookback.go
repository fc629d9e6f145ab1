package indicators

import (
	"math"

	"github.com/rustyeddy/smcbt/market"
)

// AdaptiveLookback scales a base swing lookback by the ratio of long-term
// to short-term ATR:
//
//	round(base * (1 + alpha*(atrLong/atrShort - 1)))
//
// A quiet regime relative to the recent past stretches the lookback, a
// volatile one shrinks it. The result is clamped to a floor of 2; maxClamp
// bounds it from above when > 0 (0 leaves it unbounded, the historical
// behavior).
//
// If either ATR is still undefined, or the short ATR is zero, the base is
// returned (clamped).
func AdaptiveLookback(base int, alpha, atrShort, atrLong float64, maxClamp int) int {
	l := base
	if market.Defined(atrShort) && market.Defined(atrLong) && atrShort > 0 {
		l = int(math.Round(float64(base) * (1 + alpha*(atrLong/atrShort-1))))
	}
	if l < 2 {
		l = 2
	}
	if maxClamp > 0 && l > maxClamp {
		l = maxClamp
	}
	return l
}
