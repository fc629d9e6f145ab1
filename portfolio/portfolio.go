// Package portfolio orchestrates multiple instruments on a shared master
// timeline and owns the canonical open/closed trade ledger.
package portfolio

import (
	"time"

	"github.com/rustyeddy/smcbt/market"
	"github.com/rustyeddy/smcbt/risk"
	"github.com/rustyeddy/smcbt/signal"
	"github.com/rustyeddy/smcbt/sim"
)

// Limits are the portfolio-level admission constraints.
type Limits struct {
	MaxConcurrent        int
	CorrelationThreshold float64
	MaxCorrelatedPos     int
	MaxCorrelatedRisk    float64
	BreakerDrawdown      float64 // drawdown fraction that trips the circuit breaker
}

func DefaultLimits() Limits {
	return Limits{
		MaxConcurrent:        5,
		CorrelationThreshold: 0.75,
		MaxCorrelatedPos:     2,
		MaxCorrelatedRisk:    0.02,
		BreakerDrawdown:      0.05,
	}
}

// Snapshot is the portfolio state after one time step.
type Snapshot struct {
	Time          time.Time
	Equity        float64
	HighWaterMark float64
	Drawdown      float64
	BreakerActive bool
	OpenTrades    int
}

// Portfolio is the single writer of the equity/high-water-mark/breaker
// triple and of both trade registries. It is strictly sequential: one
// Step per master-timeline timestamp.
type Portfolio struct {
	limits Limits
	policy risk.Policy
	corr   risk.CorrelationTable
	simCfg sim.Config

	initial float64
	equity  float64
	hwm     float64
	breaker bool

	open   []*sim.Trade
	closed []*sim.Trade
}

func New(initialEquity float64, limits Limits, policy risk.Policy, corr risk.CorrelationTable, simCfg sim.Config) *Portfolio {
	if corr == nil {
		corr = risk.DefaultCorrelations()
	}
	return &Portfolio{
		limits:  limits,
		policy:  policy,
		corr:    corr,
		simCfg:  simCfg,
		initial: initialEquity,
		equity:  initialEquity,
		hwm:     initialEquity,
	}
}

func (p *Portfolio) Equity() float64            { return p.equity }
func (p *Portfolio) HighWaterMark() float64     { return p.hwm }
func (p *Portfolio) BreakerActive() bool        { return p.breaker }
func (p *Portfolio) OpenTrades() []*sim.Trade   { return p.open }
func (p *Portfolio) ClosedTrades() []*sim.Trade { return p.closed }

// Step advances the portfolio one timestamp: mark-to-market, circuit
// breaker, exits, then entries. Exits always run before entries so a slot
// freed at t is usable at t. prices maps instrument -> the bar at t;
// cands are the candidates stamped exactly t, in generation order.
// Returns the trades closed during the step and the closing snapshot.
func (p *Portfolio) Step(t time.Time, prices map[string]market.Bar, cands []signal.Candidate) ([]*sim.Trade, Snapshot) {
	p.markToMarket(prices)

	closed := p.processExits(prices)
	if len(closed) > 0 {
		// Realized PnL moved ledgers; re-derive equity before sizing.
		p.markToMarket(prices)
	}

	for _, c := range cands {
		bar, ok := prices[c.Instrument]
		if !ok || !bar.Time.Equal(t) {
			continue
		}
		p.admit(c, bar)
	}

	return closed, p.snapshot(t)
}

// markToMarket recomputes equity from scratch (initial plus realized plus
// unrealized) and updates the high-water mark and breaker. Equity is
// never incrementally drifted.
func (p *Portfolio) markToMarket(prices map[string]market.Bar) {
	equity := p.initial
	for _, t := range p.closed {
		equity += t.RealizedPL
	}
	for _, t := range p.open {
		if bar, ok := prices[t.Instrument]; ok {
			equity += t.UnrealizedPL(t.MarkPrice(bar))
		}
	}
	p.equity = equity

	if equity > p.hwm {
		p.hwm = equity
		p.breaker = false // recovered to a new high
	}
	if p.hwm > 0 && (p.hwm-equity)/p.hwm >= p.limits.BreakerDrawdown {
		p.breaker = true
	}
}

func (p *Portfolio) processExits(prices map[string]market.Bar) []*sim.Trade {
	var done []*sim.Trade

	kept := p.open[:0]
	for _, t := range p.open {
		bar, ok := prices[t.Instrument]
		if !ok {
			kept = append(kept, t)
			continue
		}
		price, reason, hit := sim.ResolveExit(p.simCfg, t, bar)
		if !hit {
			kept = append(kept, t)
			continue
		}
		if reason == sim.ReasonStopLoss {
			t.Slippage += sim.Slippage(p.simCfg, t.ATR, market.Meta(t.Instrument).MinTick)
		}
		t.CloseWith(price, bar.Time, reason)
		p.closed = append(p.closed, t)
		done = append(done, t)
	}
	p.open = kept

	return done
}

// admit runs the entry checks for one candidate. Every rejection is
// recoverable by design: it suppresses this candidate and nothing else.
func (p *Portfolio) admit(c signal.Candidate, bar market.Bar) {
	if len(p.open) >= p.limits.MaxConcurrent {
		return
	}

	fraction := p.policy.Fraction(c.Score, p.breaker)
	if fraction <= 0 {
		return
	}

	if !p.correlationOK(c, fraction) {
		return
	}

	stopDist := c.Entry - c.Stop
	if c.Dir == market.Short {
		stopDist = c.Stop - c.Entry
	}
	units := risk.PositionSize(p.equity, fraction, stopDist)
	if units <= 0 {
		return
	}

	c.RiskFraction = fraction
	p.open = append(p.open, sim.NewTrade(p.simCfg, c, units, bar))
}

// correlationOK sums the risk of open positions correlated with the
// candidate: same instrument, or |coefficient| at or above the threshold
// with matching sign semantics (positive + same direction, negative +
// opposite). It rejects on either the count or the combined-risk cap.
func (p *Portfolio) correlationOK(c signal.Candidate, fraction float64) bool {
	var (
		correlatedRisk float64
		correlated     int
	)

	for _, t := range p.open {
		if !p.isCorrelated(c, t) {
			continue
		}
		correlatedRisk += t.RiskFraction
		correlated++
	}

	if correlated >= p.limits.MaxCorrelatedPos {
		return false
	}
	if correlatedRisk+fraction > p.limits.MaxCorrelatedRisk {
		return false
	}
	return true
}

func (p *Portfolio) isCorrelated(c signal.Candidate, t *sim.Trade) bool {
	if t.Instrument == c.Instrument {
		return true
	}
	coeff := p.corr.Coefficient(c.Instrument, t.Instrument)
	if coeff >= p.limits.CorrelationThreshold && c.Dir == t.Dir {
		return true
	}
	if coeff <= -p.limits.CorrelationThreshold && c.Dir != t.Dir {
		return true
	}
	return false
}

func (p *Portfolio) snapshot(t time.Time) Snapshot {
	dd := 0.0
	if p.hwm > 0 {
		dd = (p.hwm - p.equity) / p.hwm
	}
	return Snapshot{
		Time:          t,
		Equity:        p.equity,
		HighWaterMark: p.hwm,
		Drawdown:      dd,
		BreakerActive: p.breaker,
		OpenTrades:    len(p.open),
	}
}

// CloseAll force-closes remaining open positions at their instruments'
// last seen bar. Instruments missing from prices stay open.
func (p *Portfolio) CloseAll(prices map[string]market.Bar) []*sim.Trade {
	var done []*sim.Trade

	kept := p.open[:0]
	for _, t := range p.open {
		bar, ok := prices[t.Instrument]
		if !ok {
			kept = append(kept, t)
			continue
		}
		t.CloseWith(t.MarkPrice(bar), bar.Time, sim.ReasonEndOfData)
		p.closed = append(p.closed, t)
		done = append(done, t)
	}
	p.open = kept

	p.markToMarket(prices)
	return done
}
