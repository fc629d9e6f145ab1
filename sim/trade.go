// Package sim simulates trade execution against bars: entry fills with
// spread and slippage, and bar-by-bar stop/target resolution.
package sim

import (
	"time"

	"github.com/rustyeddy/smcbt/market"
	"github.com/rustyeddy/smcbt/signal"
)

// Exit reasons recorded on closed trades.
const (
	ReasonStopLoss   = "StopLoss"
	ReasonTakeProfit = "TakeProfit"
	ReasonEndOfData  = "EndOfData"
)

const (
	ResultWin  = "Win"
	ResultLoss = "Loss"
)

// Trade is an open or closed position. Only the simulator that created it
// mutates it, and it transitions at most once per bar: Open ->
// Closed(Win|Loss).
type Trade struct {
	ID         string
	Instrument string
	Dir        market.Side
	Units      float64

	Entry  float64 // fill price, spread and slippage included
	Stop   float64
	Target float64

	OpenTime time.Time
	ATR      float64 // ATR at entry, drives the exit slippage model

	Score        int
	Breakdown    signal.ScoreBreakdown
	RiskFraction float64

	Slippage float64 // total slippage paid, entry + exit
	Spread   float64 // bid/ask spread at entry

	ExitPrice  float64
	CloseTime  time.Time
	RealizedPL float64
	Result     string
	Reason     string
	Open       bool
}

// UnrealizedPL marks the trade against an exit-side price (bid for longs,
// ask for shorts).
func (t *Trade) UnrealizedPL(price float64) float64 {
	return float64(t.Dir) * (price - t.Entry) * t.Units
}

// MarkPrice returns the close-side price for the trade's direction.
func (t *Trade) MarkPrice(b market.Bar) float64 {
	if t.Dir == market.Long {
		return b.BidClose
	}
	return b.AskClose
}

// CloseWith realizes the trade at a fill price. The owning simulator is
// the only caller; a trade is closed at most once.
func (t *Trade) CloseWith(price float64, at time.Time, reason string) {
	t.ExitPrice = price
	t.CloseTime = at
	t.Reason = reason
	t.RealizedPL = t.UnrealizedPL(price)
	if t.RealizedPL > 0 {
		t.Result = ResultWin
	} else {
		t.Result = ResultLoss
	}
	t.Open = false
}
