package backtest

import (
	"time"

	"quantlab/metrics"
	"quantlab/portfolio"
	"quantlab/risk"
)

// Summary is the final state of the portfolio after liquidation.
type Summary struct {
	Equity      float64 `json:"equity"`
	Cash        float64 `json:"cash"`
	Positions   int     `json:"positions"`
	TotalReturn float64 `json:"total_return"`
}

// Result is the complete output of one run.
type Result struct {
	Strategy   string    `json:"strategy"`
	RiskConfig string    `json:"risk_config"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`

	Metrics        metrics.Metrics           `json:"metrics"`
	EquityCurve    []portfolio.EquityPoint   `json:"equity_curve"`
	Trades         []portfolio.ExecutedTrade `json:"trades"`
	FinalPortfolio Summary                   `json:"final_portfolio"`
	RiskStats      risk.Stats                `json:"risk_stats"`
}
