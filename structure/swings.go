package structure

import "github.com/rustyeddy/smcbt/market"

// isSwingHigh reports whether the anchor bar's high is the strict maximum
// over the symmetric window [anchor-l, anchor+l]. Callers guarantee the
// window lies inside the series.
func isSwingHigh(bars []market.Bar, anchor, l int) bool {
	h := bars[anchor].High
	for j := anchor - l; j <= anchor+l; j++ {
		if j == anchor {
			continue
		}
		if bars[j].High >= h {
			return false
		}
	}
	return true
}

// isSwingLow is the low-side analog of isSwingHigh.
func isSwingLow(bars []market.Bar, anchor, l int) bool {
	lo := bars[anchor].Low
	for j := anchor - l; j <= anchor+l; j++ {
		if j == anchor {
			continue
		}
		if bars[j].Low <= lo {
			return false
		}
	}
	return true
}
