// Package backtest orchestrates a deterministic bar-by-bar replay of
// historical data through a strategy and a risk policy, producing a trade
// log, equity curve, and performance statistics.
package backtest

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quantlab/market"
	"quantlab/metrics"
	"quantlab/portfolio"
	"quantlab/risk"
	"quantlab/strategies"
)

// ErrNoData is returned when the filtered bar set is empty before the
// replay loop starts.
var ErrNoData = errors.New("no bar data available for backtest")

// Options are the optional engine settings.
type Options struct {
	StartDate time.Time // zero disables the lower bound
	EndDate   time.Time // zero disables the upper bound
	Symbols   []string  // empty means all symbols in the set
	Logger    *slog.Logger
}

// Engine runs one backtest. It owns the ledger and risk manager for the
// run's duration; the strategy, bar set, and risk config are read-only
// caller inputs. An engine is single-shot: Run may be called once.
type Engine struct {
	strategy       strategies.Strategy
	bars           *market.BarSet
	initialCapital float64
	riskConfig     risk.Config
	opts           Options
	logger         *slog.Logger

	pf  *portfolio.Portfolio
	rm  *risk.Manager
	ran bool
}

// New creates an engine over the given inputs.
func New(strategy strategies.Strategy, bars *market.BarSet, initialCapital float64, riskConfig risk.Config, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		strategy:       strategy,
		bars:           bars,
		initialCapital: initialCapital,
		riskConfig:     riskConfig,
		opts:           opts,
		logger:         logger,
	}
}

// Run executes the replay: once per distinct timestamp in ascending order it
// updates prices, applies risk exits and the drawdown check, generates and
// risk-adjusts strategy signals, executes them, and records one equity
// snapshot. After the loop every remaining position is liquidated at the
// final timestamp's closing prices and the result is assembled.
func (e *Engine) Run() (*Result, error) {
	if e.ran {
		return nil, errors.New("backtest: engine already ran; create a new engine per run")
	}
	e.ran = true

	data := e.bars.FilterSymbols(e.opts.Symbols)
	if !e.opts.StartDate.IsZero() || !e.opts.EndDate.IsZero() {
		start, end := e.opts.StartDate, e.opts.EndDate
		if end.IsZero() {
			end = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
		}
		data = data.FilterRange(start, end)
	}
	if data.Len() == 0 {
		return nil, fmt.Errorf("backtest %q: %w", e.strategy.Name(), ErrNoData)
	}

	e.pf = portfolio.New(e.initialCapital)
	e.rm = risk.NewManager(e.riskConfig)

	timestamps := data.Timestamps()
	e.logger.Info("backtest starting",
		"strategy", e.strategy.Name(),
		"risk_config", e.riskConfig.Name,
		"bars", data.Len(),
		"start", timestamps[0].Format("2006-01-02"),
		"end", timestamps[len(timestamps)-1].Format("2006-01-02"),
	)

	for i, ts := range timestamps {
		Step(e.strategy, e.pf, e.rm, data, ts)

		if (i+1)%100 == 0 {
			e.logger.Debug("backtest progress", "bars", i+1, "equity", e.pf.Equity())
		}
	}

	// Liquidate whatever is still open at the final closing prices so every
	// trade is closed before metrics are computed.
	last := timestamps[len(timestamps)-1]
	e.pf.CloseAllPositions(closePrices(data.At(last)), last)

	result := e.assembleResult(timestamps)
	e.logger.Info("backtest complete",
		"final_equity", result.Metrics.FinalEquity,
		"total_return_pct", result.Metrics.TotalReturn,
		"trades", result.Metrics.NumTrades,
	)
	return result, nil
}

// Step advances one timestamp of a run. The fixed order of operations
// (price update, risk exits, drawdown check, signal generation, risk
// adjustment, execution, equity snapshot) is the determinism contract of
// the engine and must not be reordered.
func Step(strategy strategies.Strategy, pf *portfolio.Portfolio, rm *risk.Manager, data *market.BarSet, ts time.Time) {
	prices := closePrices(data.At(ts))
	pf.UpdatePrices(prices)

	if rm.Config().Enabled {
		// Risk exits execute before strategy orders.
		for _, order := range rm.CheckStopLossTakeProfit(pf, prices) {
			if price, ok := prices[order.Symbol]; ok {
				pf.ExecuteOrder(order, price, ts)
			}
		}
		rm.CheckDrawdown(pf)
	}

	// Strategies only ever see history at or before ts.
	orders := strategy.GenerateSignals(data.UpTo(ts), pf)

	if rm.Config().Enabled {
		orders = rm.ApplyRiskAdjustments(orders, pf, prices)
	}

	for _, order := range orders {
		if price, ok := prices[order.Symbol]; ok {
			pf.ExecuteOrder(order, price, ts)
		}
	}

	pf.RecordEquity(ts)
}

func closePrices(bars []market.Bar) map[string]float64 {
	prices := make(map[string]float64, len(bars))
	for _, b := range bars {
		prices[b.Symbol] = b.Close
	}
	return prices
}

func (e *Engine) assembleResult(timestamps []time.Time) *Result {
	m := metrics.Calculate(e.pf.EquityHistory(), e.pf.Trades(), e.initialCapital)

	return &Result{
		Strategy:    e.strategy.Name(),
		RiskConfig:  e.riskConfig.Name,
		Start:       timestamps[0],
		End:         timestamps[len(timestamps)-1],
		Metrics:     m,
		EquityCurve: e.pf.EquityHistory(),
		Trades:      e.pf.Trades(),
		FinalPortfolio: Summary{
			Equity:      e.pf.Equity(),
			Cash:        e.pf.Cash(),
			Positions:   e.pf.NumPositions(),
			TotalReturn: e.pf.TotalReturn(),
		},
		RiskStats: e.rm.GetStats(),
	}
}
