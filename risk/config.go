// Package risk applies the risk policy of a backtest run: per-order limits,
// stop-loss and take-profit exits, and the drawdown circuit breaker.
package risk

import "fmt"

// Config is a named risk policy. Percentage fields are fractions in (0,1];
// a nil field disables that rule. The config is immutable for the duration
// of a run.
type Config struct {
	Name                 string   `yaml:"name" json:"name"`
	MaxPositionSize      *float64 `yaml:"max_position_size" json:"max_position_size"`
	MaxPortfolioExposure *float64 `yaml:"max_portfolio_exposure" json:"max_portfolio_exposure"`
	StopLossPct          *float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"`
	TakeProfitPct        *float64 `yaml:"take_profit_pct" json:"take_profit_pct"`
	MaxDrawdownPct       *float64 `yaml:"max_drawdown_pct" json:"max_drawdown_pct"`
	Enabled              bool     `yaml:"enabled" json:"enabled"`
}

// Disabled returns the pass-through policy used when no risk management is
// requested: every check becomes a no-op.
func Disabled() Config {
	return Config{Name: "No Risk Management", Enabled: false}
}

// Conservative returns a moderately defensive policy: small positions, a
// 5% stop and 15% target, and a 15% drawdown circuit breaker.
func Conservative() Config {
	f := func(v float64) *float64 { return &v }
	return Config{
		Name:                 "Conservative",
		MaxPositionSize:      f(0.15),
		MaxPortfolioExposure: f(0.70),
		StopLossPct:          f(0.05),
		TakeProfitPct:        f(0.15),
		MaxDrawdownPct:       f(0.15),
		Enabled:              true,
	}
}

// Validate checks that all set fields are in range.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		val  *float64
	}{
		{"max_position_size", c.MaxPositionSize},
		{"max_portfolio_exposure", c.MaxPortfolioExposure},
	} {
		if f.val != nil && (*f.val <= 0 || *f.val > 1) {
			return fmt.Errorf("risk config %q: %s must be in (0,1], got %v", c.Name, f.name, *f.val)
		}
	}
	for _, f := range []struct {
		name string
		val  *float64
	}{
		{"stop_loss_pct", c.StopLossPct},
		{"take_profit_pct", c.TakeProfitPct},
		{"max_drawdown_pct", c.MaxDrawdownPct},
	} {
		if f.val != nil && *f.val < 0 {
			return fmt.Errorf("risk config %q: %s must be >= 0, got %v", c.Name, f.name, *f.val)
		}
	}
	return nil
}
