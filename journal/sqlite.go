package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/smcbt/portfolio"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, instrument, direction, units, entry_price, exit_price,
		 stop, target, open_time, close_time, score, bias_score, setup_score,
		 sweep_score, context_score, risk_fraction, slippage, spread,
		 realized_pl, result, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Instrument, t.Direction, t.Units, t.EntryPrice, t.ExitPrice,
		t.Stop, t.Target, t.OpenTime, t.CloseTime, t.Score, t.BiasScore, t.SetupScore,
		t.SweepScore, t.ContextScore, t.RiskFraction, t.Slippage, t.Spread,
		t.RealizedPL, t.Result, t.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(s portfolio.Snapshot) error {
	breaker := 0
	if s.BreakerActive {
		breaker = 1
	}
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, equity, high_water_mark, drawdown, breaker_active, open_trades)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.Time, s.Equity, s.HighWaterMark, s.Drawdown, breaker, s.OpenTrades,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
