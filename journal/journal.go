// Package journal persists the closed-trade ledger and equity curve to
// CSV or SQLite.
package journal

import (
	"time"

	"github.com/rustyeddy/smcbt/portfolio"
	"github.com/rustyeddy/smcbt/sim"
)

// TradeRecord is the persisted closed-trade row. This schema is the one
// stability promise the backtester makes to reporting consumers.
type TradeRecord struct {
	TradeID    string
	Instrument string
	Direction  string
	Units      float64
	EntryPrice float64
	ExitPrice  float64
	Stop       float64
	Target     float64
	OpenTime   time.Time
	CloseTime  time.Time

	Score        int
	BiasScore    int
	SetupScore   int
	SweepScore   int
	ContextScore int
	RiskFraction float64

	Slippage   float64
	Spread     float64
	RealizedPL float64
	Result     string
	Reason     string
}

// FromTrade flattens a closed trade into its persisted form.
func FromTrade(t *sim.Trade) TradeRecord {
	return TradeRecord{
		TradeID:      t.ID,
		Instrument:   t.Instrument,
		Direction:    t.Dir.String(),
		Units:        t.Units,
		EntryPrice:   t.Entry,
		ExitPrice:    t.ExitPrice,
		Stop:         t.Stop,
		Target:       t.Target,
		OpenTime:     t.OpenTime,
		CloseTime:    t.CloseTime,
		Score:        t.Score,
		BiasScore:    t.Breakdown.Bias,
		SetupScore:   t.Breakdown.Setup,
		SweepScore:   t.Breakdown.Sweep,
		ContextScore: t.Breakdown.Context,
		RiskFraction: t.RiskFraction,
		Slippage:     t.Slippage,
		Spread:       t.Spread,
		RealizedPL:   t.RealizedPL,
		Result:       t.Result,
		Reason:       t.Reason,
	}
}

// Journal records trades and equity snapshots during a run.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(portfolio.Snapshot) error
	Close() error
}

// Nop discards everything. Useful for tests and dry runs.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error         { return nil }
func (Nop) RecordEquity(portfolio.Snapshot) error { return nil }
func (Nop) Close() error                          { return nil }
