package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/smcbt/market"
	"github.com/rustyeddy/smcbt/risk"
	"github.com/rustyeddy/smcbt/signal"
	"github.com/rustyeddy/smcbt/sim"
)

var t0 = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

func step(n int) time.Time { return t0.Add(time.Duration(n) * time.Hour) }

// pbar builds a bar with a fixed 2-pip spread over the bid quotes.
func pbar(at time.Time, bidLow, bidHigh, bidClose float64) market.Bar {
	return market.Bar{
		Time:     at,
		BidLow:   bidLow,
		BidHigh:  bidHigh,
		BidClose: bidClose,
		AskLow:   bidLow + 0.0002,
		AskHigh:  bidHigh + 0.0002,
		AskClose: bidClose + 0.0002,
		ATR:      0.0010,
	}
}

func cand(at time.Time, inst string, dir market.Side, entry, stop, target float64, score int) signal.Candidate {
	return signal.Candidate{
		Instrument: inst,
		Time:       at,
		Dir:        dir,
		Entry:      entry,
		Stop:       stop,
		Target:     target,
		ATR:        0.0010,
		Score:      score,
	}
}

func newPortfolio(limits Limits) *Portfolio {
	return New(10000, limits, risk.DefaultPolicy(), nil, sim.DefaultConfig())
}

func TestAdmitSizesFixedFractional(t *testing.T) {
	t.Parallel()

	p := newPortfolio(DefaultLimits())

	bar := pbar(step(0), 1.0995, 1.1005, 1.0999)
	c := cand(step(0), "EURUSD", market.Long, 1.1000, 1.0950, 1.1150, 90)

	closed, snap := p.Step(step(0), map[string]market.Bar{"EURUSD": bar}, []signal.Candidate{c})
	assert.Empty(t, closed)
	assert.Equal(t, 1, snap.OpenTrades)
	assert.InDelta(t, 10000, snap.Equity, 1e-9)

	require.Len(t, p.OpenTrades(), 1)
	tr := p.OpenTrades()[0]
	// 1% of 10k over a 50-pip stop distance.
	assert.InDelta(t, 20000, tr.Units, 1e-6)
	assert.InDelta(t, 0.01, tr.RiskFraction, 1e-12)
	// Long entries lift the ask plus slippage (0.1 * ATR).
	assert.InDelta(t, 1.1002, tr.Entry, 1e-9)
}

func TestMarkToMarketEquityIdentity(t *testing.T) {
	t.Parallel()

	p := newPortfolio(DefaultLimits())

	bar := pbar(step(0), 1.0995, 1.1005, 1.0999)
	c := cand(step(0), "EURUSD", market.Long, 1.1000, 1.0950, 1.1150, 90)
	p.Step(step(0), map[string]market.Bar{"EURUSD": bar}, []signal.Candidate{c})

	// Next bar drifts up without touching stop or target.
	up := pbar(step(1), 1.1040, 1.1060, 1.1052)
	closed, snap := p.Step(step(1), map[string]market.Bar{"EURUSD": up}, nil)
	assert.Empty(t, closed)

	// Equity = initial + unrealized at the bid close: (1.1052-1.1002)*20000.
	assert.InDelta(t, 10100, snap.Equity, 1e-6)
	assert.InDelta(t, 10100, snap.HighWaterMark, 1e-6)
	assert.InDelta(t, 0, snap.Drawdown, 1e-12)
	assert.False(t, snap.BreakerActive)
}

func TestConcurrencyCap(t *testing.T) {
	t.Parallel()

	limits := DefaultLimits()
	limits.MaxConcurrent = 1
	p := newPortfolio(limits)

	prices := map[string]market.Bar{
		"EURUSD": pbar(step(0), 1.0995, 1.1005, 1.0999),
		"USDJPY": pbar(step(0), 155.00, 155.20, 155.10),
	}
	cands := []signal.Candidate{
		cand(step(0), "EURUSD", market.Long, 1.1000, 1.0950, 1.1150, 90),
		cand(step(0), "USDJPY", market.Long, 155.10, 154.60, 156.60, 90),
	}

	_, snap := p.Step(step(0), prices, cands)
	assert.Equal(t, 1, snap.OpenTrades)
	assert.Equal(t, "EURUSD", p.OpenTrades()[0].Instrument)
}

func TestCorrelationCountCap(t *testing.T) {
	t.Parallel()

	limits := DefaultLimits()
	limits.MaxCorrelatedPos = 1
	p := newPortfolio(limits)

	prices := map[string]market.Bar{
		"EURUSD": pbar(step(0), 1.0995, 1.1005, 1.0999),
		"GBPUSD": pbar(step(0), 1.2695, 1.2705, 1.2699),
	}
	cands := []signal.Candidate{
		cand(step(0), "EURUSD", market.Long, 1.1000, 1.0950, 1.1150, 90),
		// Same direction on a 0.85-correlated pair: blocked by the count cap.
		cand(step(0), "GBPUSD", market.Long, 1.2700, 1.2650, 1.2850, 90),
	}
	_, snap := p.Step(step(0), prices, cands)
	assert.Equal(t, 1, snap.OpenTrades)

	// The opposite direction on a positively correlated pair is unrelated
	// exposure and passes.
	short := cand(step(1), "GBPUSD", market.Short, 1.2700, 1.2750, 1.2550, 90)
	prices = map[string]market.Bar{
		"EURUSD": pbar(step(1), 1.0995, 1.1005, 1.0999),
		"GBPUSD": pbar(step(1), 1.2695, 1.2705, 1.2699),
	}
	_, snap = p.Step(step(1), prices, []signal.Candidate{short})
	assert.Equal(t, 2, snap.OpenTrades)
}

func TestCorrelatedRiskCap(t *testing.T) {
	t.Parallel()

	limits := DefaultLimits()
	limits.MaxCorrelatedRisk = 0.015 // one 1% position fits, two do not
	p := newPortfolio(limits)

	prices := map[string]market.Bar{
		"EURUSD": pbar(step(0), 1.0995, 1.1005, 1.0999),
		"GBPUSD": pbar(step(0), 1.2695, 1.2705, 1.2699),
	}
	cands := []signal.Candidate{
		cand(step(0), "EURUSD", market.Long, 1.1000, 1.0950, 1.1150, 90),
		cand(step(0), "GBPUSD", market.Long, 1.2700, 1.2650, 1.2850, 90),
	}
	_, snap := p.Step(step(0), prices, cands)
	assert.Equal(t, 1, snap.OpenTrades)
}

func TestInverseCorrelationSemantics(t *testing.T) {
	t.Parallel()

	limits := DefaultLimits()
	limits.MaxCorrelatedPos = 1
	p := newPortfolio(limits)

	prices := map[string]market.Bar{
		"EURUSD": pbar(step(0), 1.0995, 1.1005, 1.0999),
		"USDCHF": pbar(step(0), 0.8795, 0.8805, 0.8799),
	}

	p.Step(step(0), map[string]market.Bar{"EURUSD": prices["EURUSD"]},
		[]signal.Candidate{cand(step(0), "EURUSD", market.Long, 1.1000, 1.0950, 1.1150, 90)})

	// EURUSD/USDCHF are -0.90 correlated: shorting the inverse pair is the
	// same bet, longing it is the opposite one.
	shortInverse := cand(step(1), "USDCHF", market.Short, 0.8800, 0.8850, 0.8650, 90)
	longInverse := cand(step(1), "USDCHF", market.Long, 0.8800, 0.8750, 0.8950, 90)

	prices["EURUSD"] = pbar(step(1), 1.0995, 1.1005, 1.0999)
	prices["USDCHF"] = pbar(step(1), 0.8795, 0.8805, 0.8799)

	_, snap := p.Step(step(1), prices, []signal.Candidate{shortInverse})
	assert.Equal(t, 1, snap.OpenTrades, "short on the inverse pair duplicates the exposure")

	_, snap = p.Step(step(2), map[string]market.Bar{
		"EURUSD": pbar(step(2), 1.0995, 1.1005, 1.0999),
		"USDCHF": pbar(step(2), 0.8795, 0.8805, 0.8799),
	}, []signal.Candidate{longInverse})
	assert.Equal(t, 2, snap.OpenTrades)
}

func TestDegenerateStopRejected(t *testing.T) {
	t.Parallel()

	p := newPortfolio(DefaultLimits())
	bar := pbar(step(0), 1.0995, 1.1005, 1.0999)
	c := cand(step(0), "EURUSD", market.Long, 1.1000, 1.1000, 1.1150, 90)

	_, snap := p.Step(step(0), map[string]market.Bar{"EURUSD": bar}, []signal.Candidate{c})
	assert.Equal(t, 0, snap.OpenTrades)
}

func TestExitFreesSlotWithinStep(t *testing.T) {
	t.Parallel()

	limits := DefaultLimits()
	limits.MaxConcurrent = 1
	p := newPortfolio(limits)

	bar := pbar(step(0), 1.0995, 1.1005, 1.0999)
	c := cand(step(0), "EURUSD", market.Long, 1.1000, 1.0950, 1.1150, 90)
	p.Step(step(0), map[string]market.Bar{"EURUSD": bar}, []signal.Candidate{c})

	// This bar stops out the open trade; the replacement candidate must be
	// admitted in the same step because exits run before entries.
	stopBar := pbar(step(1), 1.0940, 1.1000, 1.0960)
	next := cand(step(1), "EURUSD", market.Short, 1.0960, 1.1010, 1.0810, 90)

	closed, snap := p.Step(step(1), map[string]market.Bar{"EURUSD": stopBar}, []signal.Candidate{next})
	require.Len(t, closed, 1)
	assert.Equal(t, sim.ReasonStopLoss, closed[0].Reason)
	assert.Equal(t, 1, snap.OpenTrades)
	assert.Equal(t, market.Short, p.OpenTrades()[0].Dir)
}

func TestCircuitBreakerLifecycle(t *testing.T) {
	t.Parallel()

	limits := DefaultLimits()
	limits.BreakerDrawdown = 0.01 // trip on a 1% drawdown
	p := newPortfolio(limits)

	bar := pbar(step(0), 1.0995, 1.1005, 1.0999)
	c := cand(step(0), "EURUSD", market.Long, 1.1000, 1.0950, 1.1150, 90)
	p.Step(step(0), map[string]market.Bar{"EURUSD": bar}, []signal.Candidate{c})

	// Stop out: roughly a 1.06% loss on 20000 units.
	stopBar := pbar(step(1), 1.0940, 1.1000, 1.0960)
	closed, snap := p.Step(step(1), map[string]market.Bar{"EURUSD": stopBar}, nil)
	require.Len(t, closed, 1)
	assert.True(t, snap.BreakerActive)
	assert.Less(t, snap.Equity, 9900.0)

	// While the breaker is active, admissions risk half the normal fraction.
	c2 := cand(step(2), "EURUSD", market.Long, 1.1000, 1.0950, 1.1150, 90)
	bar2 := pbar(step(2), 1.0995, 1.1005, 1.0999)
	_, snap = p.Step(step(2), map[string]market.Bar{"EURUSD": bar2}, []signal.Candidate{c2})
	require.Equal(t, 1, snap.OpenTrades)
	assert.True(t, snap.BreakerActive)
	assert.InDelta(t, 0.005, p.OpenTrades()[0].RiskFraction, 1e-12)

	// A drawdown shallower than the threshold does not clear the breaker;
	// only a fresh high-water mark does.
	nearHWM := pbar(step(3), 1.1090, 1.1110, 1.1100)
	_, snap = p.Step(step(3), map[string]market.Bar{"EURUSD": nearHWM}, nil)
	assert.True(t, snap.BreakerActive, "breaker latches until a new high")

	// Target fill realizes enough profit for a new high.
	targetBar := pbar(step(4), 1.1140, 1.1160, 1.1150)
	closed, snap = p.Step(step(4), map[string]market.Bar{"EURUSD": targetBar}, nil)
	require.Len(t, closed, 1)
	assert.Equal(t, sim.ReasonTakeProfit, closed[0].Reason)
	assert.False(t, snap.BreakerActive)
	assert.Greater(t, snap.Equity, 10000.0)
}

func TestCloseAll(t *testing.T) {
	t.Parallel()

	p := newPortfolio(DefaultLimits())
	bar := pbar(step(0), 1.0995, 1.1005, 1.0999)
	c := cand(step(0), "EURUSD", market.Long, 1.1000, 1.0950, 1.1150, 90)
	p.Step(step(0), map[string]market.Bar{"EURUSD": bar}, []signal.Candidate{c})

	last := pbar(step(1), 1.1000, 1.1020, 1.1010)
	done := p.CloseAll(map[string]market.Bar{"EURUSD": last})
	require.Len(t, done, 1)
	assert.Equal(t, sim.ReasonEndOfData, done[0].Reason)
	assert.Empty(t, p.OpenTrades())

	// Final equity reflects the realized ledger.
	assert.InDelta(t, 10000+(1.1010-1.1002)*20000, p.Equity(), 1e-6)
}
