// Package backtest wires the full pipeline: indicators, structure
// detection and signal generation per instrument, then the portfolio fold
// over the merged candidate stream.
package backtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/smcbt/config"
	"github.com/rustyeddy/smcbt/indicators"
	"github.com/rustyeddy/smcbt/journal"
	"github.com/rustyeddy/smcbt/market"
	"github.com/rustyeddy/smcbt/metrics"
	"github.com/rustyeddy/smcbt/portfolio"
	"github.com/rustyeddy/smcbt/risk"
	"github.com/rustyeddy/smcbt/signal"
	"github.com/rustyeddy/smcbt/sim"
	"github.com/rustyeddy/smcbt/structure"
)

// Series is one instrument's input: its bar series and optional daily
// bias map. Bars must have strictly increasing timestamps.
type Series struct {
	Symbol string
	Bars   []market.Bar
	Bias   market.BiasMap
}

// Result is the outcome of a portfolio backtest.
type Result struct {
	ClosedTrades []*sim.Trade
	FinalEquity  float64
	Candidates   int
	Summary      metrics.Summary
	Monthly      []metrics.MonthlyReturn
}

// Runner drives a multi-instrument backtest.
type Runner struct {
	Config  *config.Config
	Journal journal.Journal
	Corr    risk.CorrelationTable // nil uses the default table
	Log     zerolog.Logger
}

// Run generates candidates for every instrument (in parallel; signal
// generation is read-only per instrument), merges them in time order and
// folds the portfolio over the master timeline. The portfolio phase is
// strictly sequential; ctx is only checked between time steps.
func (r *Runner) Run(ctx context.Context, series []Series) (Result, error) {
	if r.Config == nil {
		return Result{}, fmt.Errorf("backtest: Config is required")
	}
	if len(series) == 0 {
		return Result{}, fmt.Errorf("backtest: no instrument series")
	}
	j := r.Journal
	if j == nil {
		j = journal.Nop{}
	}

	perInst := r.generate(series)

	cands := mergeCandidates(perInst)
	r.Log.Info().Int("candidates", len(cands)).Int("instruments", len(series)).
		Msg("signal generation complete")

	pf := portfolio.New(
		r.Config.Backtest.InitialEquity,
		portfolio.Limits{
			MaxConcurrent:        r.Config.Portfolio.MaxConcurrent,
			CorrelationThreshold: r.Config.Portfolio.CorrelationThreshold,
			MaxCorrelatedPos:     r.Config.Portfolio.MaxCorrelatedPos,
			MaxCorrelatedRisk:    r.Config.Portfolio.MaxCorrelatedRisk,
			BreakerDrawdown:      r.Config.Portfolio.BreakerDrawdown,
		},
		riskPolicy(r.Config),
		r.Corr,
		simConfig(r.Config),
	)

	timeline, barAt := buildTimeline(series)

	lastPrices := make(map[string]market.Bar, len(series))
	ci := 0
	for _, t := range timeline {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		prices := barAt(t)
		for inst, b := range prices {
			lastPrices[inst] = b
		}

		var stepCands []signal.Candidate
		for ci < len(cands) && cands[ci].Time.Equal(t) {
			stepCands = append(stepCands, cands[ci])
			ci++
		}

		closed, snap := pf.Step(t, prices, stepCands)
		for _, tr := range closed {
			if err := j.RecordTrade(journal.FromTrade(tr)); err != nil {
				return Result{}, fmt.Errorf("record trade: %w", err)
			}
		}
		if err := j.RecordEquity(snap); err != nil {
			return Result{}, fmt.Errorf("record equity: %w", err)
		}
	}

	if r.Config.Backtest.CloseAtEnd {
		for _, tr := range pf.CloseAll(lastPrices) {
			if err := j.RecordTrade(journal.FromTrade(tr)); err != nil {
				return Result{}, fmt.Errorf("record trade: %w", err)
			}
		}
	}

	closed := pf.ClosedTrades()
	res := Result{
		ClosedTrades: closed,
		FinalEquity:  pf.Equity(),
		Candidates:   len(cands),
		Summary:      metrics.Compute(closed, r.Config.Backtest.InitialEquity, r.Config.Risk.Tier1Threshold),
		Monthly:      metrics.MonthlyReturns(closed),
	}

	r.Log.Info().
		Int("trades", res.Summary.TotalTrades).
		Float64("win_rate", res.Summary.WinRate).
		Float64("final_equity", res.FinalEquity).
		Msg("backtest complete")

	return res, nil
}

// generate runs the per-instrument pipeline. Each instrument is
// independent and read-only over its own bars, so they run concurrently
// with a barrier before the portfolio phase.
func (r *Runner) generate(series []Series) [][]signal.Candidate {
	out := make([][]signal.Candidate, len(series))

	var wg sync.WaitGroup
	for i := range series {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := series[i]

			indicators.Annotate(s.Bars,
				r.Config.Backtest.ATRPeriod,
				r.Config.Backtest.ADXPeriod,
				r.Config.Backtest.ChopPeriod)

			det := structure.NewDetector(structureConfig(r.Config))
			st := det.Run(s.Bars)

			eng := signal.NewEngine(signalConfig(r.Config), riskPolicy(r.Config))
			out[i] = eng.Run(s.Symbol, s.Bars, st, s.Bias)

			r.Log.Debug().Str("instrument", s.Symbol).
				Int("bars", len(s.Bars)).Int("candidates", len(out[i])).
				Msg("instrument pipeline done")
		}(i)
	}
	wg.Wait()

	return out
}

// mergeCandidates flattens per-instrument candidate lists into one stream
// ordered by timestamp; at equal timestamps, instrument input order then
// generation order decides (stable sort over an already grouped slice).
func mergeCandidates(perInst [][]signal.Candidate) []signal.Candidate {
	var all []signal.Candidate
	for _, cs := range perInst {
		all = append(all, cs...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Time.Before(all[j].Time)
	})
	return all
}

// buildTimeline returns the sorted union of all bar timestamps and a
// lookup producing the bars present at a given timestamp.
func buildTimeline(series []Series) ([]time.Time, func(time.Time) map[string]market.Bar) {
	type cursor struct {
		symbol string
		bars   []market.Bar
		idx    int
	}

	set := make(map[int64]time.Time)
	cursors := make([]*cursor, 0, len(series))
	for _, s := range series {
		cursors = append(cursors, &cursor{symbol: s.Symbol, bars: s.Bars})
		for _, b := range s.Bars {
			set[b.Time.UnixNano()] = b.Time
		}
	}

	timeline := make([]time.Time, 0, len(set))
	for _, t := range set {
		timeline = append(timeline, t)
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Before(timeline[j]) })

	barAt := func(t time.Time) map[string]market.Bar {
		prices := make(map[string]market.Bar)
		for _, c := range cursors {
			for c.idx < len(c.bars) && c.bars[c.idx].Time.Before(t) {
				c.idx++
			}
			if c.idx < len(c.bars) && c.bars[c.idx].Time.Equal(t) {
				prices[c.symbol] = c.bars[c.idx]
			}
		}
		return prices
	}

	return timeline, barAt
}
