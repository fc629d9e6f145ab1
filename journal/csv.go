package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/smcbt/portfolio"
)

type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{
		"trade_id", "instrument", "direction", "units", "entry_price", "exit_price",
		"stop", "target", "open_time", "close_time", "score", "bias_score",
		"setup_score", "sweep_score", "context_score", "risk_fraction",
		"slippage", "spread", "realized_pl", "result", "reason",
	}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{
		"time", "equity", "high_water_mark", "drawdown", "breaker_active", "open_trades",
	}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{tw, ew, tf, ef}, nil
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	j.trades.Write([]string{
		t.TradeID,
		t.Instrument,
		t.Direction,
		f(t.Units),
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.Stop),
		f(t.Target),
		t.OpenTime.Format(time.RFC3339),
		t.CloseTime.Format(time.RFC3339),
		strconv.Itoa(t.Score),
		strconv.Itoa(t.BiasScore),
		strconv.Itoa(t.SetupScore),
		strconv.Itoa(t.SweepScore),
		strconv.Itoa(t.ContextScore),
		f(t.RiskFraction),
		f(t.Slippage),
		f(t.Spread),
		f(t.RealizedPL),
		t.Result,
		t.Reason,
	})
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(s portfolio.Snapshot) error {
	j.equity.Write([]string{
		s.Time.Format(time.RFC3339),
		f(s.Equity),
		f(s.HighWaterMark),
		f(s.Drawdown),
		strconv.FormatBool(s.BreakerActive),
		strconv.Itoa(s.OpenTrades),
	})
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	j.equity.Flush()
	if err := j.tf.Close(); err != nil {
		j.ef.Close()
		return err
	}
	return j.ef.Close()
}
