package market

import "time"

// Bias is the higher-timeframe directional context for a trading day.
type Bias string

const (
	BiasBullish Bias = "Bullish"
	BiasBearish Bias = "Bearish"
	BiasNeutral Bias = "Neutral"
)

// Matches reports whether the bias agrees with a trade direction.
func (b Bias) Matches(dir Side) bool {
	return (b == BiasBullish && dir == Long) || (b == BiasBearish && dir == Short)
}

// BiasMap maps a calendar day (UTC, truncated to midnight) to its bias.
type BiasMap map[time.Time]Bias

func dayKey(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// For returns the bias that applies to a bar at t: the bias derived from
// the prior calendar day. Neutral when no daily bar exists for that day.
func (m BiasMap) For(t time.Time) Bias {
	if m == nil {
		return BiasNeutral
	}
	if b, ok := m[dayKey(t).AddDate(0, 0, -1)]; ok {
		return b
	}
	return BiasNeutral
}

// DailyBias derives a BiasMap from daily bars: a day that closes above its
// open is Bullish, below is Bearish, a doji is Neutral.
func DailyBias(daily []Bar) BiasMap {
	m := make(BiasMap, len(daily))
	for _, b := range daily {
		switch {
		case b.Close > b.Open:
			m[dayKey(b.Time)] = BiasBullish
		case b.Close < b.Open:
			m[dayKey(b.Time)] = BiasBearish
		default:
			m[dayKey(b.Time)] = BiasNeutral
		}
	}
	return m
}
