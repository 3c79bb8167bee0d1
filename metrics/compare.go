package metrics

// Comparison holds the metric deltas between a run and a baseline run,
// typically a risk-managed run against the same strategy without risk
// controls.
type Comparison struct {
	TotalReturnDiff        float64 `json:"total_return_diff"`
	MaxDrawdownDiff        float64 `json:"max_drawdown_diff"`
	SharpeRatioDiff        float64 `json:"sharpe_ratio_diff"`
	WinRateDiff            float64 `json:"win_rate_diff"`
	NumTradesDiff          int     `json:"num_trades_diff"`
	DrawdownImprovementPct float64 `json:"drawdown_improvement_pct"`
}

// Compare diffs current against baseline. DrawdownImprovementPct is 0 when
// the baseline had no drawdown.
func Compare(current, baseline Metrics) Comparison {
	improvement := 0.0
	if baseline.MaxDrawdown > 0 {
		improvement = (baseline.MaxDrawdown - current.MaxDrawdown) / baseline.MaxDrawdown * 100
	}

	return Comparison{
		TotalReturnDiff:        current.TotalReturn - baseline.TotalReturn,
		MaxDrawdownDiff:        current.MaxDrawdown - baseline.MaxDrawdown,
		SharpeRatioDiff:        current.SharpeRatio - baseline.SharpeRatio,
		WinRateDiff:            current.WinRate - baseline.WinRate,
		NumTradesDiff:          current.NumTrades - baseline.NumTrades,
		DrawdownImprovementPct: improvement,
	}
}
