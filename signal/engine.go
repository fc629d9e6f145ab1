// Package signal turns detected market structure into scored, directional
// trade candidates.
package signal

import (
	"time"

	"github.com/rustyeddy/smcbt/market"
	"github.com/rustyeddy/smcbt/risk"
	"github.com/rustyeddy/smcbt/structure"
)

// Candidate is a fully specified trade proposal for one bar. At most one
// candidate is produced per (instrument, timestamp).
type Candidate struct {
	Instrument string
	Time       time.Time
	Dir        market.Side

	Entry  float64 // mid close of the signal bar; fills add spread/slippage
	Stop   float64
	Target float64
	ATR    float64 // ATR at the signal bar, used by the fill model

	Score        int
	Breakdown    ScoreBreakdown
	RiskFraction float64 // provisional, re-derived at admission time

	Seq int // generation order within the instrument
}

// Config holds the signal-engine thresholds and scoring weights.
type Config struct {
	ChopMax    float64 // regime filter: skip when Chop > ChopMax and ADX < ADXMin
	ADXMin     float64
	RequireMSS bool
	SweepBars  int // a sweep must have occurred within this many bars

	StopATR        float64 // stop = extreme -/+ this multiple of ATR
	RewardMultiple float64 // target = entry +/- multiple * risk

	WeightBias    int
	WeightSetup   int
	WeightSweep   int
	WeightContext int
	ChopLow       float64  // low-choppiness context bonus threshold
	Sessions      []string // sessions granting the context bonus
}

type Engine struct {
	cfg    Config
	policy risk.Policy
}

func NewEngine(cfg Config, policy risk.Policy) *Engine {
	if cfg.SweepBars < 1 {
		cfg.SweepBars = 1
	}
	return &Engine{cfg: cfg, policy: policy}
}

// Run walks the bar series once and emits candidates. st must be the
// structure records for the same bars. The zone registry is maintained
// here: zones born on a bar become visible to proximity checks from the
// following bar, so a signal can't score proximity to its own gap.
func (e *Engine) Run(instrument string, bars []market.Bar, st []structure.BarStructure, bias market.BiasMap) []Candidate {
	var (
		cands    []Candidate
		arena    structure.Arena
		lastBull = -1
		lastBear = -1
	)

	for i := range bars {
		bar := bars[i]
		arena.Prune(bar.Close)

		if st[i].SweepBull {
			lastBull = i
		}
		if st[i].SweepBear {
			lastBear = i
		}

		if c, ok := e.evaluate(instrument, bars, st, i, lastBull, lastBear, &arena, bias); ok {
			c.Seq = len(cands)
			cands = append(cands, c)
		}

		e.addZones(&arena, st[i], i)
	}

	return cands
}

func (e *Engine) evaluate(instrument string, bars []market.Bar, sts []structure.BarStructure,
	i, lastBull, lastBear int, arena *structure.Arena, bias market.BiasMap) (Candidate, bool) {

	bar := bars[i]
	st := sts[i]

	// Undefined required indicators: not enough history, skip the bar.
	if !market.Defined(bar.ATR) || !market.Defined(bar.ADX) || !market.Defined(bar.Chop) {
		return Candidate{}, false
	}
	// Ranging, low-conviction regime.
	if bar.Chop > e.cfg.ChopMax && bar.ADX < e.cfg.ADXMin {
		return Candidate{}, false
	}

	var dir market.Side
	switch {
	case st.DispBear && (st.MSSBear || !e.cfg.RequireMSS) && e.recent(lastBear, i):
		dir = market.Short
	case st.DispBull && (st.MSSBull || !e.cfg.RequireMSS) && e.recent(lastBull, i):
		dir = market.Long
	default:
		return Candidate{}, false
	}

	near := arena.Touches(dir, bar.Low, bar.High)

	sweepAge := i - lastBear
	if dir == market.Long {
		sweepAge = i - lastBull
	}

	score, bd := e.score(dir, st, bar, bias.For(bar.Time), near, sweepAge)

	fraction := e.policy.Fraction(score, false)
	if fraction == 0 {
		// Below tier 2: silently suppressed, not an error.
		return Candidate{}, false
	}

	entry := bar.Close
	var stop, target float64
	if dir == market.Long {
		stop = bar.Low - e.cfg.StopATR*bar.ATR
		target = entry + e.cfg.RewardMultiple*(entry-stop)
	} else {
		stop = bar.High + e.cfg.StopATR*bar.ATR
		target = entry - e.cfg.RewardMultiple*(stop-entry)
	}

	return Candidate{
		Instrument:   instrument,
		Time:         bar.Time,
		Dir:          dir,
		Entry:        entry,
		Stop:         stop,
		Target:       target,
		ATR:          bar.ATR,
		Score:        score,
		Breakdown:    bd,
		RiskFraction: fraction,
	}, true
}

func (e *Engine) recent(lastSweep, i int) bool {
	return lastSweep >= 0 && i-lastSweep < e.cfg.SweepBars
}

func (e *Engine) addZones(arena *structure.Arena, st structure.BarStructure, i int) {
	if st.FVGBull {
		arena.Add(structure.Zone{Kind: structure.ZoneFVG, Dir: market.Long, Top: st.FVGTop, Bottom: st.FVGBottom, Born: i})
	}
	if st.FVGBear {
		arena.Add(structure.Zone{Kind: structure.ZoneFVG, Dir: market.Short, Top: st.FVGTop, Bottom: st.FVGBottom, Born: i})
	}
	if st.OBBull {
		arena.Add(structure.Zone{Kind: structure.ZoneOrderBlock, Dir: market.Long, Top: st.OBTop, Bottom: st.OBBottom, Born: i})
	}
	if st.OBBear {
		arena.Add(structure.Zone{Kind: structure.ZoneOrderBlock, Dir: market.Short, Top: st.OBTop, Bottom: st.OBBottom, Born: i})
	}
}
