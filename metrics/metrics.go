// Package metrics aggregates a closed-trade ledger into performance
// statistics.
package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/rustyeddy/smcbt/sim"
)

// Summary is the headline report for one backtest run.
type Summary struct {
	TotalTrades  int
	Wins         int
	Losses       int
	WinRate      float64 // percent
	TotalPnL     float64
	ReturnPct    float64
	MaxDrawdown  float64 // percent, negative or zero
	ProfitFactor float64
	Sharpe       float64

	AvgScore   float64
	AvgBias    float64
	AvgSetup   float64
	AvgSweep   float64
	AvgContext float64

	Tier1Trades int
	Tier2Trades int
}

// Compute walks the closed ledger in close order.
// tier1Threshold splits the tier counters: trades at or above it are
// tier 1, the rest tier 2. Anything below tier 2 never traded.
func Compute(trades []*sim.Trade, initialEquity float64, tier1Threshold int) Summary {
	var s Summary
	s.TotalTrades = len(trades)
	if s.TotalTrades == 0 {
		return s
	}

	var (
		grossProfit float64
		grossLoss   float64
		sumPnL      float64
		sumSq       float64
		equity      = initialEquity
		peak        = initialEquity
		maxDD       float64
	)

	for _, t := range trades {
		pnl := t.RealizedPL
		sumPnL += pnl
		sumSq += pnl * pnl

		if t.Result == sim.ResultWin {
			s.Wins++
			grossProfit += pnl
		} else {
			s.Losses++
			grossLoss += -pnl
		}

		equity += pnl
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (equity - peak) / peak * 100; dd < maxDD {
				maxDD = dd
			}
		}

		s.AvgScore += float64(t.Score)
		s.AvgBias += float64(t.Breakdown.Bias)
		s.AvgSetup += float64(t.Breakdown.Setup)
		s.AvgSweep += float64(t.Breakdown.Sweep)
		s.AvgContext += float64(t.Breakdown.Context)

		if t.Score >= tier1Threshold {
			s.Tier1Trades++
		} else {
			s.Tier2Trades++
		}
	}

	n := float64(s.TotalTrades)
	s.WinRate = float64(s.Wins) / n * 100
	s.TotalPnL = sumPnL
	if initialEquity > 0 {
		s.ReturnPct = sumPnL / initialEquity * 100
	}
	s.MaxDrawdown = maxDD

	if grossLoss > 0 {
		s.ProfitFactor = grossProfit / grossLoss
	} else if grossProfit > 0 {
		s.ProfitFactor = math.Inf(1)
	}

	mean := sumPnL / n
	variance := sumSq/n - mean*mean
	if variance > 0 {
		s.Sharpe = mean / math.Sqrt(variance) * math.Sqrt(n)
	}

	s.AvgScore /= n
	s.AvgBias /= n
	s.AvgSetup /= n
	s.AvgSweep /= n
	s.AvgContext /= n

	return s
}

// MonthlyReturn is realized PnL bucketed by close month.
type MonthlyReturn struct {
	Month string // "2025-01"
	PnL   float64
}

// MonthlyReturns buckets realized PnL by close month, sorted.
func MonthlyReturns(trades []*sim.Trade) []MonthlyReturn {
	byMonth := make(map[string]float64)
	for _, t := range trades {
		key := fmt.Sprintf("%04d-%02d", t.CloseTime.UTC().Year(), int(t.CloseTime.UTC().Month()))
		byMonth[key] += t.RealizedPL
	}

	out := make([]MonthlyReturn, 0, len(byMonth))
	for m, pnl := range byMonth {
		out = append(out, MonthlyReturn{Month: m, PnL: pnl})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
