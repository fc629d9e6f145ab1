package sim

import (
	"github.com/rustyeddy/smcbt/internal/id"
	"github.com/rustyeddy/smcbt/market"
	"github.com/rustyeddy/smcbt/signal"
)

// Exit priority when stop and target both trigger inside one bar.
const (
	PriorityStop   = "stop" // conservative: assume the stop filled first
	PriorityTarget = "target"
)

// Config is the fill model configuration.
type Config struct {
	ExitPriority string  // PriorityStop (default) or PriorityTarget
	SlippageATR  float64 // slippage = max(SlippageATR*ATR, minTick)
}

func DefaultConfig() Config {
	return Config{ExitPriority: PriorityStop, SlippageATR: 0.1}
}

// Slippage is the market-order slippage for an instrument at a given ATR.
// Undefined ATR degrades to the tick floor.
func Slippage(cfg Config, atr, minTick float64) float64 {
	if !market.Defined(atr) {
		return minTick
	}
	if s := cfg.SlippageATR * atr; s > minTick {
		return s
	}
	return minTick
}

// EntryFill prices a market entry off the bar close: longs lift the ask
// plus slippage, shorts hit the bid minus slippage. Spread cost lives in
// the fill, it is never deducted again later.
func EntryFill(cfg Config, dir market.Side, b market.Bar, minTick float64) (fill, slip, spread float64) {
	slip = Slippage(cfg, b.ATR, minTick)
	spread = b.AskClose - b.BidClose
	if dir == market.Long {
		return b.AskClose + slip, slip, spread
	}
	return b.BidClose - slip, slip, spread
}

// ResolveExit checks an open trade against one bar. Longs exit on bid
// prices, shorts on ask. Stops are market orders and pay slippage in the
// adverse direction; targets are limit orders and fill exactly.
// When both trigger, cfg.ExitPriority decides which fill is assumed.
func ResolveExit(cfg Config, t *Trade, b market.Bar) (price float64, reason string, hit bool) {
	if !t.Open || !b.Time.After(t.OpenTime) {
		return 0, "", false
	}

	slip := Slippage(cfg, t.ATR, market.Meta(t.Instrument).MinTick)

	var stopHit, targetHit bool
	var stopFill, targetFill float64

	if t.Dir == market.Long {
		stopHit = b.BidLow <= t.Stop
		targetHit = b.BidHigh >= t.Target
		stopFill = t.Stop - slip
		targetFill = t.Target
	} else {
		stopHit = b.AskHigh >= t.Stop
		targetHit = b.AskLow <= t.Target
		stopFill = t.Stop + slip
		targetFill = t.Target
	}

	switch {
	case stopHit && targetHit:
		if cfg.ExitPriority == PriorityTarget {
			return targetFill, ReasonTakeProfit, true
		}
		return stopFill, ReasonStopLoss, true
	case stopHit:
		return stopFill, ReasonStopLoss, true
	case targetHit:
		return targetFill, ReasonTakeProfit, true
	}
	return 0, "", false
}

// Simulator owns every trade for a single instrument.
type Simulator struct {
	cfg    Config
	open   []*Trade
	closed []*Trade
}

func New(cfg Config) *Simulator {
	if cfg.ExitPriority == "" {
		cfg.ExitPriority = PriorityStop
	}
	return &Simulator{cfg: cfg}
}

// OpenTrade fills a candidate at the given bar and tracks the position.
func (s *Simulator) OpenTrade(c signal.Candidate, units float64, b market.Bar) *Trade {
	t := NewTrade(s.cfg, c, units, b)
	s.open = append(s.open, t)
	return t
}

// NewTrade builds a filled trade from a candidate without registering it
// with any simulator; the portfolio layer uses this directly.
func NewTrade(cfg Config, c signal.Candidate, units float64, b market.Bar) *Trade {
	fill, slip, spread := EntryFill(cfg, c.Dir, b, market.Meta(c.Instrument).MinTick)
	return &Trade{
		ID:           id.New(),
		Instrument:   c.Instrument,
		Dir:          c.Dir,
		Units:        units,
		Entry:        fill,
		Stop:         c.Stop,
		Target:       c.Target,
		OpenTime:     b.Time,
		ATR:          c.ATR,
		Score:        c.Score,
		Breakdown:    c.Breakdown,
		RiskFraction: c.RiskFraction,
		Slippage:     slip,
		Spread:       spread,
		Open:         true,
	}
}

// OnBar resolves stops and targets for every open trade against one bar
// and returns the trades closed by it.
func (s *Simulator) OnBar(b market.Bar) []*Trade {
	var done []*Trade

	kept := s.open[:0]
	for _, t := range s.open {
		price, reason, hit := ResolveExit(s.cfg, t, b)
		if !hit {
			kept = append(kept, t)
			continue
		}
		if reason == ReasonStopLoss {
			t.Slippage += Slippage(s.cfg, t.ATR, market.Meta(t.Instrument).MinTick)
		}
		t.CloseWith(price, b.Time, reason)
		s.closed = append(s.closed, t)
		done = append(done, t)
	}
	s.open = kept

	return done
}

// CloseAll force-closes remaining open trades at the bar's close-side
// price. Used at end of data.
func (s *Simulator) CloseAll(b market.Bar) []*Trade {
	var done []*Trade
	for _, t := range s.open {
		t.CloseWith(t.MarkPrice(b), b.Time, ReasonEndOfData)
		s.closed = append(s.closed, t)
		done = append(done, t)
	}
	s.open = s.open[:0]
	return done
}

// OpenTrades returns the live positions (owned by the simulator).
func (s *Simulator) OpenTrades() []*Trade { return s.open }

// ClosedTrades returns the realized ledger in close order.
func (s *Simulator) ClosedTrades() []*Trade { return s.closed }
