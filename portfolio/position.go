package portfolio

import "time"

// Position is an open holding in one symbol. At most one position exists per
// symbol; repeated buys blend into a volume-weighted average entry price and
// the position is destroyed when its quantity reaches exactly zero.
type Position struct {
	Symbol       string
	Quantity     float64
	EntryPrice   float64 // volume-weighted average across buys
	EntryDate    time.Time
	CurrentPrice float64
}

// MarketValue is the current mark-to-market value of the position.
func (p Position) MarketValue() float64 {
	return p.Quantity * p.CurrentPrice
}

// CostBasis is the original cost of the position at the blended entry price.
func (p Position) CostBasis() float64 {
	return p.Quantity * p.EntryPrice
}

// UnrealizedPnL is the open profit or loss in account currency.
func (p Position) UnrealizedPnL() float64 {
	return p.MarketValue() - p.CostBasis()
}

// UnrealizedPnLPct is the open profit or loss as a percentage of cost basis,
// 0 when the cost basis is zero.
func (p Position) UnrealizedPnLPct() float64 {
	cb := p.CostBasis()
	if cb == 0 {
		return 0
	}
	return p.UnrealizedPnL() / cb * 100
}
