package strategies

import (
	"quantlab/indicators"
	"quantlab/market"
	"quantlab/portfolio"
)

func init() {
	Register("trend-following", func(p Params) Strategy { return NewTrendFollowing(p) })
}

// TrendFollowing is a channel-breakout strategy: enter long when the close
// breaks above the highest high of the prior lookback window, exit when the
// close falls below the prior lowest low or below a chandelier-style
// trailing stop (prior channel high minus an ATR multiple).
//
// The channel is computed over the bars before the current one; including
// the current bar would make a close-above-high breakout unreachable.
type TrendFollowing struct {
	LookbackPeriod int
	ATRPeriod      int
	ATRMultiplier  float64
}

// NewTrendFollowing builds the strategy; defaults are lookback=20,
// atr_period=14, atr_multiplier=2.
func NewTrendFollowing(p Params) *TrendFollowing {
	return &TrendFollowing{
		LookbackPeriod: int(p.get("lookback_period", 20)),
		ATRPeriod:      int(p.get("atr_period", 14)),
		ATRMultiplier:  p.get("atr_multiplier", 2.0),
	}
}

func (s *TrendFollowing) Name() string { return "Trend Following" }

func (s *TrendFollowing) GenerateSignals(bars []market.Bar, pf *portfolio.Portfolio) []*portfolio.Order {
	var orders []*portfolio.Order

	for _, symbol := range market.SymbolsOf(bars) {
		sd := market.BySymbol(bars, symbol)
		if len(sd) < s.LookbackPeriod+1 {
			continue
		}

		prior := sd[:len(sd)-1]
		highest, err := indicators.HighestHigh(prior, s.LookbackPeriod)
		if err != nil {
			continue
		}
		lowest, _ := indicators.LowestLow(prior, s.LookbackPeriod)

		atr, err := indicators.ATR(sd, s.ATRPeriod)
		if err != nil {
			continue
		}

		latest := sd[len(sd)-1]
		price := latest.Close
		held := pf.HasPosition(symbol)

		switch {
		case price > highest && !held:
			qty := positionSize(price, pf)
			if qty > 0 {
				orders = append(orders, portfolio.NewMarketOrder(symbol, qty, portfolio.Buy, latest.Timestamp))
			}

		case held:
			stop := highest - atr*s.ATRMultiplier
			if price < lowest || price < stop {
				pos, _ := pf.Position(symbol)
				orders = append(orders, portfolio.NewMarketOrder(symbol, pos.Quantity, portfolio.Sell, latest.Timestamp))
			}
		}
	}

	return orders
}
