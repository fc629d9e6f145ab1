package signal

import (
	"github.com/rustyeddy/smcbt/market"
	"github.com/rustyeddy/smcbt/structure"
)

// ScoreBreakdown records how each confluence bucket contributed to the
// total. Buckets are individually capped by their configured weights.
type ScoreBreakdown struct {
	Bias    int
	Setup   int
	Sweep   int
	Context int
}

func (b ScoreBreakdown) Total() int {
	return b.Bias + b.Setup + b.Sweep + b.Context
}

// score computes the 0-100 confluence score over the four buckets:
// HTF-bias alignment, displacement/FVG setup quality, liquidity-sweep
// recency and context (session window + low choppiness).
func (e *Engine) score(dir market.Side, st structure.BarStructure, bar market.Bar,
	bias market.Bias, nearZone bool, sweepAge int) (int, ScoreBreakdown) {

	var bd ScoreBreakdown

	if bias.Matches(dir) {
		bd.Bias = e.cfg.WeightBias
	}

	// Setup: displacement is a precondition so it seeds the bucket; a
	// same-direction FVG and reacting off a pre-existing zone (or a fresh
	// order block) top it up.
	setup := e.cfg.WeightSetup * 3 / 5
	if (dir == market.Long && st.FVGBull) || (dir == market.Short && st.FVGBear) {
		setup += e.cfg.WeightSetup / 5
	}
	obHere := (dir == market.Long && st.OBBull) || (dir == market.Short && st.OBBear)
	if nearZone || obHere {
		setup += e.cfg.WeightSetup / 5
	}
	if setup > e.cfg.WeightSetup {
		setup = e.cfg.WeightSetup
	}
	bd.Setup = setup

	// Sweep: full weight when the sweep is on the signal bar, decaying
	// linearly with age inside the window.
	if sweepAge >= 0 && sweepAge < e.cfg.SweepBars {
		bd.Sweep = e.cfg.WeightSweep - e.cfg.WeightSweep*sweepAge/e.cfg.SweepBars
	}

	ctx := 0
	for _, s := range e.cfg.Sessions {
		if bar.Session == s {
			ctx += e.cfg.WeightContext * 3 / 5
			break
		}
	}
	if market.Defined(bar.Chop) && bar.Chop < e.cfg.ChopLow {
		ctx += e.cfg.WeightContext - e.cfg.WeightContext*3/5
	}
	bd.Context = ctx

	total := bd.Total()
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return total, bd
}
