// Package market provides bar series, instrument metadata and
// higher-timeframe bias for the strategy and simulation layers.
package market

import (
	"math"
	"time"
)

// Side: +1 long, -1 short
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	if s == Short {
		return "Short"
	}
	return "Long"
}

// Bar is one OHLC bar. Open/High/Low/Close are mid prices; the Bid/Ask
// variants default to mid when the source file carries no quote columns.
// ATR/ADX/Chop are filled by indicators.Annotate and are NaN until their
// warmup completes — NaN, never zero, so an unwarmed value can't win a
// comparison by accident.
type Bar struct {
	Time time.Time

	Open  float64
	High  float64
	Low   float64
	Close float64

	BidOpen  float64
	BidHigh  float64
	BidLow   float64
	BidClose float64

	AskOpen  float64
	AskHigh  float64
	AskLow   float64
	AskClose float64

	Volume float64

	ATR  float64
	ADX  float64
	Chop float64

	Session string
}

// Body returns the absolute candle body size.
func (b Bar) Body() float64 {
	return math.Abs(b.Close - b.Open)
}

// Range returns high minus low.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// Bullish reports whether the bar closed above its open.
func (b Bar) Bullish() bool { return b.Close > b.Open }

// Bearish reports whether the bar closed below its open.
func (b Bar) Bearish() bool { return b.Close < b.Open }

// Undefined is the missing-value marker for indicator fields.
func Undefined() float64 { return math.NaN() }

// Defined reports whether v carries a real value (not the NaN marker).
func Defined(v float64) bool { return !math.IsNaN(v) }

// Session boundaries in UTC hours. Coarse by design: the scoring context
// bucket only cares whether a bar falls inside a configured session set.
const (
	SessionAsia    = "asia"
	SessionLondon  = "london"
	SessionNewYork = "newyork"
)

// SessionOf tags a timestamp with its trading session.
func SessionOf(t time.Time) string {
	h := t.UTC().Hour()
	switch {
	case h >= 7 && h < 13:
		return SessionLondon
	case h >= 13 && h < 21:
		return SessionNewYork
	default:
		return SessionAsia
	}
}
