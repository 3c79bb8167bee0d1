package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"quantlab/backtest"
	"quantlab/metrics"
	"quantlab/portfolio"
)

// SQLite stores runs in a single sqlite database file.
type SQLite struct {
	db *sql.DB
}

var _ Journal = (*SQLite)(nil)

// NewSQLite opens (creating if needed) the database at path and applies the
// schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) SaveRun(ctx context.Context, run Run, result *backtest.Result) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if run.Status == "" {
		run.Status = StatusCompleted
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO backtest_runs
		(run_id, created, status, strategy, risk_name, dataset, symbols, start_date, end_date, initial_capital)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Created, string(run.Status), run.Strategy, run.RiskName,
		run.Dataset, strings.Join(run.Symbols, ","), run.Start, run.End, run.InitialCapital,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	m := result.Metrics
	_, err = tx.ExecContext(ctx, `
		INSERT INTO backtest_metrics
		(run_id, total_return, cagr, max_drawdown, volatility, sharpe_ratio, win_rate,
		 avg_win, avg_loss, num_trades, final_equity, profit_factor,
		 max_consecutive_wins, max_consecutive_losses)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, m.TotalReturn, m.CAGR, m.MaxDrawdown, m.Volatility, m.SharpeRatio,
		m.WinRate, m.AvgWin, m.AvgLoss, m.NumTrades, m.FinalEquity, m.ProfitFactor,
		m.MaxConsecutiveWins, m.MaxConsecutiveLosses,
	)
	if err != nil {
		return fmt.Errorf("insert metrics for run %s: %w", run.ID, err)
	}

	for i, t := range result.Trades {
		var exit any
		if !t.ExitDate.IsZero() {
			exit = t.ExitDate
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO trades
			(run_id, seq, symbol, side, quantity, entry_date, exit_date, entry_price, exit_price, pnl, pnl_pct, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, t.Symbol, string(t.Side), t.Quantity, t.EntryDate, exit,
			t.EntryPrice, t.ExitPrice, t.PnL, t.PnLPct, string(t.Status),
		)
		if err != nil {
			return fmt.Errorf("insert trade %d for run %s: %w", i, run.ID, err)
		}
	}

	for _, pt := range result.EquityCurve {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO equity_curve (run_id, time, equity, cash, positions_value)
			VALUES (?, ?, ?, ?, ?)`,
			run.ID, pt.Timestamp, pt.Equity, pt.Cash, pt.PositionsValue,
		)
		if err != nil {
			return fmt.Errorf("insert equity point for run %s: %w", run.ID, err)
		}
	}

	return tx.Commit()
}

func (j *SQLite) MarkFailed(ctx context.Context, runID, reason string) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE backtest_runs SET status = ?, fail_reason = ? WHERE run_id = ?`,
		string(StatusFailed), reason, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = j.db.ExecContext(ctx, `
			INSERT INTO backtest_runs
			(run_id, created, status, strategy, risk_name, dataset, symbols, start_date, end_date, initial_capital, fail_reason)
			VALUES (?, ?, ?, '', '', '', '', ?, ?, 0, ?)`,
			runID, time.Now().UTC(), string(StatusFailed), time.Time{}, time.Time{}, reason)
	}
	return err
}

func (j *SQLite) GetRun(ctx context.Context, runID string) (Run, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT r.run_id, r.created, r.status, r.strategy, r.risk_name, r.dataset, r.symbols,
		       r.start_date, r.end_date, r.initial_capital,
		       m.total_return, m.cagr, m.max_drawdown, m.volatility, m.sharpe_ratio,
		       m.win_rate, m.avg_win, m.avg_loss, m.num_trades, m.final_equity,
		       m.profit_factor, m.max_consecutive_wins, m.max_consecutive_losses
		FROM backtest_runs r
		LEFT JOIN backtest_metrics m ON m.run_id = r.run_id
		WHERE r.run_id = ?`, runID)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, fmt.Errorf("run %q not found", runID)
	}
	return run, err
}

func (j *SQLite) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT r.run_id, r.created, r.status, r.strategy, r.risk_name, r.dataset, r.symbols,
		       r.start_date, r.end_date, r.initial_capital,
		       m.total_return, m.cagr, m.max_drawdown, m.volatility, m.sharpe_ratio,
		       m.win_rate, m.avg_win, m.avg_loss, m.num_trades, m.final_equity,
		       m.profit_factor, m.max_consecutive_wins, m.max_consecutive_losses
		FROM backtest_runs r
		LEFT JOIN backtest_metrics m ON m.run_id = r.run_id
		ORDER BY r.run_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (j *SQLite) ListTrades(ctx context.Context, runID string) ([]portfolio.ExecutedTrade, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT symbol, side, quantity, entry_date, exit_date, entry_price, exit_price, pnl, pnl_pct, status
		FROM trades
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []portfolio.ExecutedTrade
	for rows.Next() {
		var (
			t            portfolio.ExecutedTrade
			side, status string
			exit         sql.NullTime
		)
		if err := rows.Scan(&t.Symbol, &side, &t.Quantity, &t.EntryDate, &exit,
			&t.EntryPrice, &t.ExitPrice, &t.PnL, &t.PnLPct, &status); err != nil {
			return nil, err
		}
		t.Side = portfolio.Side(side)
		t.Status = portfolio.TradeStatus(status)
		if exit.Valid {
			t.ExitDate = exit.Time
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLite) ListEquity(ctx context.Context, runID string) ([]portfolio.EquityPoint, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT time, equity, cash, positions_value
		FROM equity_curve
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []portfolio.EquityPoint
	for rows.Next() {
		var pt portfolio.EquityPoint
		if err := rows.Scan(&pt.Timestamp, &pt.Equity, &pt.Cash, &pt.PositionsValue); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run     Run
		status  string
		symbols string
		m       [10]sql.NullFloat64
		n       [3]sql.NullInt64
	)
	err := row.Scan(
		&run.ID, &run.Created, &status, &run.Strategy, &run.RiskName, &run.Dataset,
		&symbols, &run.Start, &run.End, &run.InitialCapital,
		&m[0], &m[1], &m[2], &m[3], &m[4], &m[5], &m[6], &m[7],
		&n[0], &m[8], &m[9], &n[1], &n[2],
	)
	if err != nil {
		return Run{}, err
	}
	run.Status = RunStatus(status)
	if symbols != "" {
		run.Symbols = strings.Split(symbols, ",")
	}
	run.Metrics = metrics.Metrics{
		TotalReturn:          m[0].Float64,
		CAGR:                 m[1].Float64,
		MaxDrawdown:          m[2].Float64,
		Volatility:           m[3].Float64,
		SharpeRatio:          m[4].Float64,
		WinRate:              m[5].Float64,
		AvgWin:               m[6].Float64,
		AvgLoss:              m[7].Float64,
		NumTrades:            int(n[0].Int64),
		FinalEquity:          m[8].Float64,
		ProfitFactor:         m[9].Float64,
		MaxConsecutiveWins:   int(n[1].Int64),
		MaxConsecutiveLosses: int(n[2].Int64),
	}
	return run, nil
}
