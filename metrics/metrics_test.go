package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/smcbt/signal"
	"github.com/rustyeddy/smcbt/sim"
)

func closedTrade(pnl float64, score int, closeTime time.Time) *sim.Trade {
	t := &sim.Trade{
		RealizedPL: pnl,
		Score:      score,
		Breakdown:  signal.ScoreBreakdown{Bias: 30, Setup: 20, Sweep: 20, Context: score - 70},
		CloseTime:  closeTime,
	}
	if pnl > 0 {
		t.Result = sim.ResultWin
	} else {
		t.Result = sim.ResultLoss
	}
	return t
}

func TestComputeEmpty(t *testing.T) {
	t.Parallel()

	s := Compute(nil, 10000, 85)
	assert.Equal(t, 0, s.TotalTrades)
	assert.Zero(t, s.WinRate)
	assert.Zero(t, s.Sharpe)
}

func TestCompute(t *testing.T) {
	t.Parallel()

	jan := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	trades := []*sim.Trade{
		closedTrade(200, 90, jan),
		closedTrade(-100, 75, jan),
		closedTrade(300, 88, feb),
		closedTrade(-150, 70, feb),
	}

	s := Compute(trades, 10000, 85)

	assert.Equal(t, 4, s.TotalTrades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 2, s.Losses)
	assert.InDelta(t, 50, s.WinRate, 1e-9)
	assert.InDelta(t, 250, s.TotalPnL, 1e-9)
	assert.InDelta(t, 2.5, s.ReturnPct, 1e-9)
	// Gross profit 500 over gross loss 250.
	assert.InDelta(t, 2.0, s.ProfitFactor, 1e-9)
	assert.Equal(t, 2, s.Tier1Trades)
	assert.Equal(t, 2, s.Tier2Trades)
	assert.InDelta(t, (90+75+88+70)/4.0, s.AvgScore, 1e-9)
	assert.InDelta(t, 30, s.AvgBias, 1e-9)

	// Worst equity trough: 10400 -> 10250 is ~1.44% below the peak.
	assert.Less(t, s.MaxDrawdown, 0.0)
	assert.InDelta(t, (10250.0-10400.0)/10400.0*100, s.MaxDrawdown, 1e-9)

	assert.Greater(t, s.Sharpe, 0.0)
}

func TestComputeAllWins(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	trades := []*sim.Trade{
		closedTrade(100, 90, at),
		closedTrade(100, 90, at),
	}

	s := Compute(trades, 10000, 85)
	assert.InDelta(t, 100, s.WinRate, 1e-9)
	assert.True(t, math.IsInf(s.ProfitFactor, 1))
	assert.Zero(t, s.MaxDrawdown)
	// Identical PnLs have zero variance; Sharpe stays unset rather than Inf.
	assert.Zero(t, s.Sharpe)
}

func TestMonthlyReturns(t *testing.T) {
	t.Parallel()

	trades := []*sim.Trade{
		closedTrade(300, 90, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)),
		closedTrade(200, 90, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		closedTrade(-100, 75, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)),
	}

	monthly := MonthlyReturns(trades)
	require.Len(t, monthly, 2)
	assert.Equal(t, MonthlyReturn{Month: "2024-01", PnL: 100}, monthly[0])
	assert.Equal(t, MonthlyReturn{Month: "2024-02", PnL: 300}, monthly[1])
}
