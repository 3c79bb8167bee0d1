package journal

const schema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	status TEXT NOT NULL,
	strategy TEXT NOT NULL,
	risk_name TEXT NOT NULL,
	dataset TEXT NOT NULL,
	symbols TEXT NOT NULL,
	start_date DATETIME NOT NULL,
	end_date DATETIME NOT NULL,
	initial_capital REAL NOT NULL,
	fail_reason TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS backtest_metrics (
	run_id TEXT PRIMARY KEY REFERENCES backtest_runs(run_id),
	total_return REAL NOT NULL,
	cagr REAL NOT NULL,
	max_drawdown REAL NOT NULL,
	volatility REAL NOT NULL,
	sharpe_ratio REAL NOT NULL,
	win_rate REAL NOT NULL,
	avg_win REAL NOT NULL,
	avg_loss REAL NOT NULL,
	num_trades INTEGER NOT NULL,
	final_equity REAL NOT NULL,
	profit_factor REAL NOT NULL,
	max_consecutive_wins INTEGER NOT NULL,
	max_consecutive_losses INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL REFERENCES backtest_runs(run_id),
	seq INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity REAL NOT NULL,
	entry_date DATETIME NOT NULL,
	exit_date DATETIME,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	pnl REAL NOT NULL,
	pnl_pct REAL NOT NULL,
	status TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS equity_curve (
	run_id TEXT NOT NULL REFERENCES backtest_runs(run_id),
	time DATETIME NOT NULL,
	equity REAL NOT NULL,
	cash REAL NOT NULL,
	positions_value REAL NOT NULL,
	PRIMARY KEY (run_id, time)
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity_curve(run_id);
`
