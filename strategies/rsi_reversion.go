package strategies

import (
	"math"

	"quantlab/indicators"
	"quantlab/market"
	"quantlab/portfolio"
)

func init() {
	Register("rsi-reversion", func(p Params) Strategy { return NewRSIReversion(p) })
}

// RSIReversion is a mean-reversion strategy: buy when RSI drops below the
// oversold threshold, exit the full position when RSI rises above the
// overbought threshold.
type RSIReversion struct {
	Period     int
	Oversold   float64
	Overbought float64
}

// NewRSIReversion builds the strategy; defaults are period=14, oversold=30,
// overbought=70.
func NewRSIReversion(p Params) *RSIReversion {
	return &RSIReversion{
		Period:     int(p.get("rsi_period", 14)),
		Oversold:   p.get("oversold", 30),
		Overbought: p.get("overbought", 70),
	}
}

func (s *RSIReversion) Name() string { return "RSI Mean Reversion" }

func (s *RSIReversion) GenerateSignals(bars []market.Bar, pf *portfolio.Portfolio) []*portfolio.Order {
	var orders []*portfolio.Order

	for _, symbol := range market.SymbolsOf(bars) {
		sd := market.BySymbol(bars, symbol)
		if len(sd) < s.Period+1 {
			continue
		}

		rsi, err := indicators.RSI(closesOf(sd), s.Period)
		if err != nil || math.IsNaN(rsi) {
			continue
		}

		latest := sd[len(sd)-1]
		held := pf.HasPosition(symbol)

		switch {
		case rsi < s.Oversold && !held:
			qty := positionSize(latest.Close, pf)
			if qty > 0 {
				orders = append(orders, portfolio.NewMarketOrder(symbol, qty, portfolio.Buy, latest.Timestamp))
			}

		case rsi > s.Overbought && held:
			pos, _ := pf.Position(symbol)
			orders = append(orders, portfolio.NewMarketOrder(symbol, pos.Quantity, portfolio.Sell, latest.Timestamp))
		}
	}

	return orders
}
