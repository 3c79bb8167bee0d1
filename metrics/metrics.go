// Package metrics derives return and risk statistics from a completed run's
// equity history and trade log. All functions are pure; degenerate inputs
// (zero capital, zero volatility, no trades) produce defined fallback values
// rather than errors.
package metrics

import (
	"math"

	"quantlab/portfolio"
)

// DefaultRiskFreeRate is the annual risk-free rate used by the Sharpe ratio.
const DefaultRiskFreeRate = 0.02

// tradingDaysPerYear annualizes per-bar statistics.
const tradingDaysPerYear = 252

// Metrics is the full statistics set of one run. Percentage fields are
// already scaled by 100.
type Metrics struct {
	TotalReturn          float64 `json:"total_return"`
	CAGR                 float64 `json:"cagr"`
	MaxDrawdown          float64 `json:"max_drawdown"`
	Volatility           float64 `json:"volatility"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	WinRate              float64 `json:"win_rate"`
	AvgWin               float64 `json:"avg_win"`
	AvgLoss              float64 `json:"avg_loss"`
	NumTrades            int     `json:"num_trades"`
	FinalEquity          float64 `json:"final_equity"`
	ProfitFactor         float64 `json:"profit_factor"`
	MaxConsecutiveWins   int     `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
}

// Calculate computes every metric from the equity curve and trade log.
func Calculate(equity []portfolio.EquityPoint, trades []portfolio.ExecutedTrade, initialCapital float64) Metrics {
	closed := closedTrades(trades)

	return Metrics{
		TotalReturn:          TotalReturn(equity, initialCapital),
		CAGR:                 CAGR(equity, initialCapital),
		MaxDrawdown:          MaxDrawdown(equity),
		Volatility:           Volatility(equity),
		SharpeRatio:          SharpeRatio(equity, DefaultRiskFreeRate),
		WinRate:              winRate(closed),
		AvgWin:               avgPnL(closed, func(p float64) bool { return p > 0 }),
		AvgLoss:              avgPnL(closed, func(p float64) bool { return p < 0 }),
		NumTrades:            len(closed),
		FinalEquity:          FinalEquity(equity, initialCapital),
		ProfitFactor:         profitFactor(closed),
		MaxConsecutiveWins:   maxRun(closed, func(p float64) bool { return p > 0 }),
		MaxConsecutiveLosses: maxRun(closed, func(p float64) bool { return p < 0 }),
	}
}

// TotalReturn is the percentage return over initial capital.
func TotalReturn(equity []portfolio.EquityPoint, initialCapital float64) float64 {
	if initialCapital == 0 || len(equity) == 0 {
		return 0
	}
	final := equity[len(equity)-1].Equity
	return (final - initialCapital) / initialCapital * 100
}

// CAGR is the compound annual growth rate over the run's elapsed time,
// 0 with fewer than two points, zero capital, or zero elapsed days.
func CAGR(equity []portfolio.EquityPoint, initialCapital float64) float64 {
	if len(equity) < 2 || initialCapital == 0 {
		return 0
	}

	// Whole elapsed days, truncated, over a 365.25-day year.
	days := int(equity[len(equity)-1].Timestamp.Sub(equity[0].Timestamp).Hours() / 24)
	years := float64(days) / 365.25
	if years == 0 {
		return 0
	}

	final := equity[len(equity)-1].Equity
	return (math.Pow(final/initialCapital, 1/years) - 1) * 100
}

// MaxDrawdown is the largest percentage decline from the running peak.
func MaxDrawdown(equity []portfolio.EquityPoint) float64 {
	peak, maxDD := 0.0, 0.0
	for _, pt := range equity {
		if pt.Equity > peak {
			peak = pt.Equity
		}
		if peak > 0 {
			if dd := (peak - pt.Equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD * 100
}

// Volatility is the annualized standard deviation of per-bar returns.
func Volatility(equity []portfolio.EquityPoint) float64 {
	returns := barReturns(equity)
	if len(returns) < 2 {
		return 0
	}
	return stdev(returns) * math.Sqrt(tradingDaysPerYear) * 100
}

// SharpeRatio is the annualized excess return over the risk-free rate
// divided by annualized volatility, 0 when volatility is zero or there are
// fewer than two equity points.
func SharpeRatio(equity []portfolio.EquityPoint, riskFreeRate float64) float64 {
	returns := barReturns(equity)
	if len(returns) < 2 {
		return 0
	}

	annualReturn := mean(returns) * tradingDaysPerYear
	annualVol := stdev(returns) * math.Sqrt(tradingDaysPerYear)
	if annualVol == 0 {
		return 0
	}
	return (annualReturn - riskFreeRate) / annualVol
}

// FinalEquity is the last recorded equity, or initial capital when the
// curve is empty.
func FinalEquity(equity []portfolio.EquityPoint, initialCapital float64) float64 {
	if len(equity) == 0 {
		return initialCapital
	}
	return equity[len(equity)-1].Equity
}

func winRate(closed []portfolio.ExecutedTrade) float64 {
	if len(closed) == 0 {
		return 0
	}
	wins := 0
	for _, t := range closed {
		if t.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(closed)) * 100
}

func avgPnL(closed []portfolio.ExecutedTrade, match func(float64) bool) float64 {
	sum, n := 0.0, 0
	for _, t := range closed {
		if match(t.PnL) {
			sum += t.PnL
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// profitFactor is gross profit over gross loss: +Inf when there are profits
// and no losses, 0 when there are neither.
func profitFactor(closed []portfolio.ExecutedTrade) float64 {
	grossProfit, grossLoss := 0.0, 0.0
	for _, t := range closed {
		if t.PnL > 0 {
			grossProfit += t.PnL
		} else if t.PnL < 0 {
			grossLoss -= t.PnL
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

// maxRun is the longest streak of consecutive closed trades, in trade-list
// order, matching the predicate.
func maxRun(closed []portfolio.ExecutedTrade, match func(float64) bool) int {
	longest, current := 0, 0
	for _, t := range closed {
		if match(t.PnL) {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}

func closedTrades(trades []portfolio.ExecutedTrade) []portfolio.ExecutedTrade {
	var out []portfolio.ExecutedTrade
	for _, t := range trades {
		if t.Status == portfolio.StatusClosed {
			out = append(out, t)
		}
	}
	return out
}

// barReturns computes the per-bar percentage changes of the equity curve,
// skipping steps whose starting equity is zero.
func barReturns(equity []portfolio.EquityPoint) []float64 {
	var out []float64
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev == 0 {
			continue
		}
		out = append(out, (equity[i].Equity-prev)/prev)
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdev is the sample standard deviation (n-1 denominator).
func stdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}
