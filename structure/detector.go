package structure

import (
	"github.com/rustyeddy/smcbt/indicators"
	"github.com/rustyeddy/smcbt/market"
)

// Config holds the structure-detection thresholds. The zero value is not
// usable; take defaults from the config package.
type Config struct {
	SwingLookback    int
	AdaptiveLookback bool
	LookbackAlpha    float64
	LookbackShort    int
	LookbackLong     int
	LookbackMax      int // 0 = unclamped

	FVGATRMin        float64 // gap must exceed this multiple of ATR
	DispBodyRatioMin float64
	DispRangeATRMin  float64
	SweepTolATR      float64

	OBScanBars      int
	OBVolumeFilter  bool
	OBVolumeFactor  float64
	OBVolumePeriod  int
}

// BarStructure is the per-bar structure record. Levels and zone bounds are
// market.Undefined() when absent. Everything here is derived from bars at
// or before the record's index.
type BarStructure struct {
	Lookback  int
	SwingHigh float64 // active confirmed level carried forward
	SwingLow  float64

	FVGBull   bool
	FVGBear   bool
	FVGTop    float64
	FVGBottom float64

	DispBull bool
	DispBear bool

	SweepBull bool
	SweepBear bool

	MSSBull bool
	MSSBear bool

	OBBull   bool // an order block was confirmed on this bar
	OBBear   bool
	OBOrigin int // origin bar index, -1 if none
	OBTop    float64
	OBBottom float64
}

type Detector struct {
	cfg Config
}

func NewDetector(cfg Config) *Detector {
	if cfg.SwingLookback < 2 {
		cfg.SwingLookback = 2
	}
	if cfg.OBScanBars <= 0 {
		cfg.OBScanBars = 10
	}
	if cfg.OBVolumePeriod <= 0 {
		cfg.OBVolumePeriod = 20
	}
	return &Detector{cfg: cfg}
}

// Run performs a single forward pass and returns one BarStructure per bar.
// Bars must already carry their ATR (indicators.Annotate).
func (d *Detector) Run(bars []market.Bar) []BarStructure {
	out := make([]BarStructure, len(bars))
	if len(bars) == 0 {
		return out
	}

	var atrShort, atrLong []float64
	if d.cfg.AdaptiveLookback {
		atrShort = indicators.ATRSeries(bars, d.cfg.LookbackShort)
		atrLong = indicators.ATRSeries(bars, d.cfg.LookbackLong)
	}

	activeHigh := market.Undefined()
	activeLow := market.Undefined()

	obFlaggedBull := make(map[int]bool)
	obFlaggedBear := make(map[int]bool)

	for i := range bars {
		st := &out[i]
		st.OBOrigin = -1
		st.FVGTop = market.Undefined()
		st.FVGBottom = market.Undefined()
		st.OBTop = market.Undefined()
		st.OBBottom = market.Undefined()

		l := d.cfg.SwingLookback
		if d.cfg.AdaptiveLookback {
			l = indicators.AdaptiveLookback(
				d.cfg.SwingLookback, d.cfg.LookbackAlpha,
				atrShort[i], atrLong[i], d.cfg.LookbackMax)
		}
		st.Lookback = l

		// Confirm the swing whose symmetric window closes at this bar.
		if anchor := i - l; anchor-l >= 0 {
			if isSwingHigh(bars, anchor, l) {
				activeHigh = bars[anchor].High
			}
			if isSwingLow(bars, anchor, l) {
				activeLow = bars[anchor].Low
			}
		}
		st.SwingHigh = activeHigh
		st.SwingLow = activeLow

		bar := bars[i]
		atr := bar.ATR

		if i >= 2 && market.Defined(atr) {
			d.detectFVG(bars, i, atr, st)
		}
		d.detectDisplacement(bar, atr, st)
		d.detectSweep(bars, i, activeHigh, activeLow, atr, st)

		if market.Defined(activeHigh) && bar.Close > activeHigh {
			st.MSSBull = true
		}
		if market.Defined(activeLow) && bar.Close < activeLow {
			st.MSSBear = true
		}

		d.detectOrderBlock(bars, i, st, obFlaggedBull, obFlaggedBear)
	}

	return out
}

// detectFVG flags a 3-bar imbalance ending at i. The middle candle must
// close in the gap's direction and the gap must clear the ATR floor.
func (d *Detector) detectFVG(bars []market.Bar, i int, atr float64, st *BarStructure) {
	minSize := d.cfg.FVGATRMin * atr

	if gap := bars[i].Low - bars[i-2].High; gap > 0 && gap >= minSize && bars[i-1].Bullish() {
		st.FVGBull = true
		st.FVGTop = bars[i].Low
		st.FVGBottom = bars[i-2].High
		return
	}
	if gap := bars[i-2].Low - bars[i].High; gap > 0 && gap >= minSize && bars[i-1].Bearish() {
		st.FVGBear = true
		st.FVGTop = bars[i-2].Low
		st.FVGBottom = bars[i].High
	}
}

// detectDisplacement flags a conviction candle: dominant body, range above
// the ATR floor, close in the outer 30% of the range on the move's side.
func (d *Detector) detectDisplacement(bar market.Bar, atr float64, st *BarStructure) {
	r := bar.Range()
	if r <= 0 || !market.Defined(atr) || r < d.cfg.DispRangeATRMin*atr {
		return
	}
	if bar.Body()/r < d.cfg.DispBodyRatioMin {
		return
	}
	closePos := (bar.Close - bar.Low) / r
	if bar.Bullish() && closePos >= 0.7 {
		st.DispBull = true
	}
	if bar.Bearish() && closePos <= 0.3 {
		st.DispBear = true
	}
}

// detectSweep flags liquidity sweeps against the active swing levels, in
// both the wick form (pierce and settle back inside the tolerance band)
// and the delayed fakeout form (previous close beyond, current close back
// through).
func (d *Detector) detectSweep(bars []market.Bar, i int, activeHigh, activeLow, atr float64, st *BarStructure) {
	tol := 0.0
	if market.Defined(atr) {
		tol = d.cfg.SweepTolATR * atr
	}
	bar := bars[i]

	if market.Defined(activeHigh) {
		if bar.High > activeHigh && bar.Close <= activeHigh+tol {
			st.SweepBear = true
		} else if i > 0 && bars[i-1].Close > activeHigh && bar.Close < activeHigh {
			st.SweepBear = true
		}
	}
	if market.Defined(activeLow) {
		if bar.Low < activeLow && bar.Close >= activeLow-tol {
			st.SweepBull = true
		} else if i > 0 && bars[i-1].Close < activeLow && bar.Close > activeLow {
			st.SweepBull = true
		}
	}
}

// detectOrderBlock confirms an order block when the current bar carries an
// FVG and its close breaks the matching structure level. The origin is the
// nearest opposite-colored candle within OBScanBars behind the FVG anchor;
// each origin is flagged at most once per direction.
func (d *Detector) detectOrderBlock(bars []market.Bar, i int, st *BarStructure, flaggedBull, flaggedBear map[int]bool) {
	if st.FVGBull && market.Defined(st.SwingHigh) && bars[i].Close > st.SwingHigh {
		if k := d.findOrigin(bars, i, market.Long, flaggedBull); k >= 0 {
			flaggedBull[k] = true
			st.OBBull = true
			st.OBOrigin = k
			st.OBTop = bars[k].High
			st.OBBottom = bars[k].Low
			return
		}
	}
	if st.FVGBear && market.Defined(st.SwingLow) && bars[i].Close < st.SwingLow {
		if k := d.findOrigin(bars, i, market.Short, flaggedBear); k >= 0 {
			flaggedBear[k] = true
			st.OBBear = true
			st.OBOrigin = k
			st.OBTop = bars[k].High
			st.OBBottom = bars[k].Low
		}
	}
}

// findOrigin walks backward from the FVG anchor (i-2) over a bounded
// window looking for the last opposite-colored candle that clears the
// optional volume filter.
func (d *Detector) findOrigin(bars []market.Bar, i int, dir market.Side, flagged map[int]bool) int {
	lo := i - 2 - (d.cfg.OBScanBars - 1)
	if lo < 0 {
		lo = 0
	}
	for k := i - 2; k >= lo; k-- {
		opposite := (dir == market.Long && bars[k].Bearish()) ||
			(dir == market.Short && bars[k].Bullish())
		if !opposite || flagged[k] {
			continue
		}
		if d.cfg.OBVolumeFilter && !d.volumeConfirmed(bars, k) {
			continue
		}
		return k
	}
	return -1
}

func (d *Detector) volumeConfirmed(bars []market.Bar, k int) bool {
	lo := k - (d.cfg.OBVolumePeriod - 1)
	if lo < 0 {
		lo = 0
	}
	n := k - lo + 1
	if n == 0 {
		return false
	}
	var sum float64
	for j := lo; j <= k; j++ {
		sum += bars[j].Volume
	}
	avg := sum / float64(n)
	return avg > 0 && bars[k].Volume > d.cfg.OBVolumeFactor*avg
}
