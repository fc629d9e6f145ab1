package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/smcbt/config"
	"github.com/rustyeddy/smcbt/journal"
	"github.com/rustyeddy/smcbt/market"
	"github.com/rustyeddy/smcbt/portfolio"
	"github.com/rustyeddy/smcbt/signal"
)

type captureJournal struct {
	trades []journal.TradeRecord
	equity []portfolio.Snapshot
	closed bool
}

func (j *captureJournal) RecordTrade(rec journal.TradeRecord) error {
	j.trades = append(j.trades, rec)
	return nil
}

func (j *captureJournal) RecordEquity(s portfolio.Snapshot) error {
	j.equity = append(j.equity, s)
	return nil
}

func (j *captureJournal) Close() error {
	j.closed = true
	return nil
}

var base = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func flatBars(n int, start time.Time, price float64) []market.Bar {
	bars := make([]market.Bar, n)
	for i := range bars {
		bars[i] = market.Bar{
			Time:     start.Add(time.Duration(i) * time.Hour),
			Open:     price,
			High:     price + 0.0005,
			Low:      price - 0.0005,
			Close:    price,
			BidClose: price - 0.0001,
			AskClose: price + 0.0001,
			BidLow:   price - 0.0006,
			BidHigh:  price + 0.0004,
			AskLow:   price - 0.0004,
			AskHigh:  price + 0.0006,
			ATR:      market.Undefined(),
			ADX:      market.Undefined(),
			Chop:     market.Undefined(),
			Session:  market.SessionOf(start),
		}
	}
	return bars
}

func TestMergeCandidates(t *testing.T) {
	t.Parallel()

	t1 := base
	t2 := base.Add(time.Hour)

	perInst := [][]signal.Candidate{
		{
			{Instrument: "EURUSD", Time: t2, Seq: 0},
		},
		{
			{Instrument: "GBPUSD", Time: t1, Seq: 0},
			{Instrument: "GBPUSD", Time: t2, Seq: 1},
		},
	}

	all := mergeCandidates(perInst)
	require.Len(t, all, 3)
	assert.Equal(t, "GBPUSD", all[0].Instrument)
	assert.Equal(t, t1, all[0].Time)
	// At equal timestamps, instrument input order is preserved.
	assert.Equal(t, "EURUSD", all[1].Instrument)
	assert.Equal(t, "GBPUSD", all[2].Instrument)
}

func TestBuildTimeline(t *testing.T) {
	t.Parallel()

	// Second instrument starts one hour late and has a gap.
	series := []Series{
		{Symbol: "EURUSD", Bars: flatBars(3, base, 1.10)},
		{Symbol: "XAUUSD", Bars: []market.Bar{
			{Time: base.Add(time.Hour)},
			{Time: base.Add(3 * time.Hour)},
		}},
	}

	timeline, barAt := buildTimeline(series)
	require.Len(t, timeline, 4)
	for i := 1; i < len(timeline); i++ {
		assert.True(t, timeline[i-1].Before(timeline[i]))
	}

	prices := barAt(timeline[0])
	assert.Len(t, prices, 1)
	assert.Contains(t, prices, "EURUSD")

	prices = barAt(timeline[1])
	assert.Len(t, prices, 2)

	prices = barAt(timeline[3])
	assert.Len(t, prices, 1)
	assert.Contains(t, prices, "XAUUSD")
}

func TestRunnerRunFlatMarket(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Backtest.InitialEquity = 10000

	j := &captureJournal{}
	r := &Runner{Config: cfg, Journal: j, Log: zerolog.Nop()}

	series := []Series{
		{Symbol: "EURUSD", Bars: flatBars(50, base, 1.10)},
		{Symbol: "GBPUSD", Bars: flatBars(50, base.Add(30*time.Minute), 1.27)},
	}

	res, err := r.Run(context.Background(), series)
	require.NoError(t, err)

	// A flat market produces no displacement, so nothing trades.
	assert.Equal(t, 0, res.Candidates)
	assert.Empty(t, res.ClosedTrades)
	assert.InDelta(t, 10000, res.FinalEquity, 1e-9)
	assert.Equal(t, 0, res.Summary.TotalTrades)
	assert.Empty(t, res.Monthly)

	// One equity snapshot per master-timeline step: the two offset series
	// never share a timestamp.
	assert.Len(t, j.equity, 100)
	assert.Empty(t, j.trades)
}

func TestRunnerRunValidation(t *testing.T) {
	t.Parallel()

	r := &Runner{Config: config.Default(), Log: zerolog.Nop()}
	_, err := r.Run(context.Background(), nil)
	assert.Error(t, err)

	r = &Runner{Log: zerolog.Nop()}
	_, err = r.Run(context.Background(), []Series{{Symbol: "EURUSD"}})
	assert.Error(t, err)
}

func TestRunnerRunHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Config: config.Default(), Journal: journal.Nop{}, Log: zerolog.Nop()}
	_, err := r.Run(ctx, []Series{{Symbol: "EURUSD", Bars: flatBars(10, base, 1.10)}})
	assert.ErrorIs(t, err, context.Canceled)
}
