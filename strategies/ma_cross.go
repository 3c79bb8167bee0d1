package strategies

import (
	"quantlab/indicators"
	"quantlab/market"
	"quantlab/portfolio"
)

func init() {
	Register("ma-cross", func(p Params) Strategy { return NewMACross(p) })
}

// MACross trades fast/slow simple-moving-average crossovers per symbol:
// enter long when the fast MA crosses above the slow MA, exit the full
// position when it crosses back below.
type MACross struct {
	FastPeriod int
	SlowPeriod int
}

// NewMACross builds the strategy; defaults are fast=20, slow=50.
func NewMACross(p Params) *MACross {
	return &MACross{
		FastPeriod: int(p.get("fast_period", 20)),
		SlowPeriod: int(p.get("slow_period", 50)),
	}
}

func (s *MACross) Name() string { return "Moving Average Crossover" }

func (s *MACross) GenerateSignals(bars []market.Bar, pf *portfolio.Portfolio) []*portfolio.Order {
	var orders []*portfolio.Order

	for _, symbol := range market.SymbolsOf(bars) {
		sd := market.BySymbol(bars, symbol)

		// Need one bar beyond the slow warm-up to detect a cross.
		if len(sd) < s.SlowPeriod+1 {
			continue
		}

		closes := closesOf(sd)
		fastNow, _ := indicators.SMA(closes, s.FastPeriod)
		slowNow, _ := indicators.SMA(closes, s.SlowPeriod)
		fastPrev, _ := indicators.SMA(closes[:len(closes)-1], s.FastPeriod)
		slowPrev, _ := indicators.SMA(closes[:len(closes)-1], s.SlowPeriod)

		latest := sd[len(sd)-1]
		held := pf.HasPosition(symbol)

		switch {
		case fastNow > slowNow && fastPrev <= slowPrev && !held:
			qty := positionSize(latest.Close, pf)
			if qty > 0 {
				orders = append(orders, portfolio.NewMarketOrder(symbol, qty, portfolio.Buy, latest.Timestamp))
			}

		case fastNow < slowNow && fastPrev >= slowPrev && held:
			pos, _ := pf.Position(symbol)
			orders = append(orders, portfolio.NewMarketOrder(symbol, pos.Quantity, portfolio.Sell, latest.Timestamp))
		}
	}

	return orders
}
