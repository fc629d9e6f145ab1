package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	instrument TEXT NOT NULL,
	direction TEXT NOT NULL,
	units REAL NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	stop REAL NOT NULL,
	target REAL NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL,
	score INTEGER NOT NULL,
	bias_score INTEGER NOT NULL,
	setup_score INTEGER NOT NULL,
	sweep_score INTEGER NOT NULL,
	context_score INTEGER NOT NULL,
	risk_fraction REAL NOT NULL,
	slippage REAL NOT NULL,
	spread REAL NOT NULL,
	realized_pl REAL NOT NULL,
	result TEXT NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	equity REAL NOT NULL,
	high_water_mark REAL NOT NULL,
	drawdown REAL NOT NULL,
	breaker_active INTEGER NOT NULL,
	open_trades INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
