// Package indicators provides the numeric transforms the structure and
// signal layers consume: true range, ATR, ADX, choppiness index and the
// adaptive swing lookback.
package indicators

import "github.com/rustyeddy/smcbt/market"

// Indicator computes a single streaming value from bars.
// It is deterministic and safe to use in replay and backtests.
type Indicator interface {
	// Name returns a stable identifier like "ATR(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* bar and updates internal state.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current value, or market.Undefined() before warmup.
	Value() float64
}

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(cur, prev market.Bar) float64 {
	hl := cur.High - cur.Low
	hc := abs(cur.High - prev.Close)
	lc := abs(cur.Low - prev.Close)
	return max3(hl, hc, lc)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func series(ind Indicator, bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		ind.Update(b)
		out[i] = ind.Value()
	}
	return out
}

// ATRSeries runs a fresh ATR over bars, returning one value per bar
// (Undefined during warmup).
func ATRSeries(bars []market.Bar, period int) []float64 {
	return series(NewATR(period), bars)
}

// ADXSeries runs a fresh ADX over bars.
func ADXSeries(bars []market.Bar, period int) []float64 {
	return series(NewADX(period), bars)
}

// ChopSeries runs a fresh choppiness index over bars.
func ChopSeries(bars []market.Bar, period int) []float64 {
	return series(NewChop(period), bars)
}

// Annotate fills the derived indicator fields on a bar slice in place.
func Annotate(bars []market.Bar, atrPeriod, adxPeriod, chopPeriod int) {
	atr := NewATR(atrPeriod)
	adx := NewADX(adxPeriod)
	chop := NewChop(chopPeriod)
	for i := range bars {
		atr.Update(bars[i])
		adx.Update(bars[i])
		chop.Update(bars[i])
		bars[i].ATR = atr.Value()
		bars[i].ADX = adx.Value()
		bars[i].Chop = chop.Value()
	}
}
