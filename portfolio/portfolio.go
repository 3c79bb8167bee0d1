// Package portfolio implements the ledger of a backtest run: cash, open
// positions, the trade log, and the equity history. It is the only component
// that mutates money or position state.
package portfolio

import (
	"sort"
	"time"
)

// EquityPoint is one snapshot of the ledger, recorded once per bar group.
type EquityPoint struct {
	Timestamp      time.Time
	Equity         float64
	Cash           float64
	PositionsValue float64
}

// Portfolio tracks cash, positions and trades for a single run. It is owned
// by one engine instance and is not safe for concurrent use.
type Portfolio struct {
	initialCapital float64
	cash           float64
	positions      map[string]*Position
	trades         []ExecutedTrade
	equityHistory  []EquityPoint
}

// New creates a portfolio holding initialCapital in cash.
func New(initialCapital float64) *Portfolio {
	return &Portfolio{
		initialCapital: initialCapital,
		cash:           initialCapital,
		positions:      make(map[string]*Position),
	}
}

// InitialCapital returns the starting cash of the run.
func (p *Portfolio) InitialCapital() float64 { return p.initialCapital }

// Cash returns the current cash balance. It is never negative: orders that
// would overdraw are rejected outright, never partially filled to fit.
func (p *Portfolio) Cash() float64 { return p.cash }

// PositionsValue returns the total mark-to-market value of open positions.
func (p *Portfolio) PositionsValue() float64 {
	total := 0.0
	for _, pos := range p.positions {
		total += pos.MarketValue()
	}
	return total
}

// Equity returns cash plus the market value of all open positions.
func (p *Portfolio) Equity() float64 {
	return p.cash + p.PositionsValue()
}

// TotalReturn returns the percentage return over initial capital, 0 when
// initial capital is zero.
func (p *Portfolio) TotalReturn() float64 {
	if p.initialCapital == 0 {
		return 0
	}
	return (p.Equity() - p.initialCapital) / p.initialCapital * 100
}

// Position returns a copy of the open position for symbol, if any.
func (p *Portfolio) Position(symbol string) (Position, bool) {
	pos, ok := p.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// HasPosition reports whether a position is open for symbol.
func (p *Portfolio) HasPosition(symbol string) bool {
	_, ok := p.positions[symbol]
	return ok
}

// OpenSymbols returns the symbols with open positions, sorted. Scans over
// positions always use this ordering so runs are reproducible.
func (p *Portfolio) OpenSymbols() []string {
	out := make([]string, 0, len(p.positions))
	for sym := range p.positions {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// NumPositions returns the count of open positions.
func (p *Portfolio) NumPositions() int { return len(p.positions) }

// PositionSizePct returns the market value of symbol's position as a
// percentage of equity, 0 if the symbol isn't held or equity is zero.
func (p *Portfolio) PositionSizePct(symbol string) float64 {
	pos, ok := p.positions[symbol]
	if !ok {
		return 0
	}
	eq := p.Equity()
	if eq == 0 {
		return 0
	}
	return pos.MarketValue() / eq * 100
}

// ExposurePct returns the total position value as a percentage of equity,
// 0 when equity is zero.
func (p *Portfolio) ExposurePct() float64 {
	eq := p.Equity()
	if eq == 0 {
		return 0
	}
	return p.PositionsValue() / eq * 100
}

// UpdatePrices marks existing positions to the given prices. Symbols absent
// from the map keep their previous mark; no positions are created.
func (p *Portfolio) UpdatePrices(prices map[string]float64) {
	for sym, pos := range p.positions {
		if price, ok := prices[sym]; ok {
			pos.CurrentPrice = price
		}
	}
}

// ExecuteOrder fills a market order at price. It returns false, with no
// state change, when the order violates the ledger's invariants: a buy that
// exceeds available cash, or a sell with no position or more quantity than
// held. A rejection is an expected runtime outcome, not an error.
func (p *Portfolio) ExecuteOrder(order *Order, price float64, ts time.Time) bool {
	switch order.Side {
	case Buy:
		return p.executeBuy(order, price, ts)
	case Sell:
		return p.executeSell(order, price, ts)
	}
	return false
}

func (p *Portfolio) executeBuy(order *Order, price float64, ts time.Time) bool {
	cost := order.Quantity * price
	if cost > p.cash {
		return false
	}

	p.cash -= cost

	if pos, ok := p.positions[order.Symbol]; ok {
		// Blend into the existing position at a cost-weighted average.
		totalQty := pos.Quantity + order.Quantity
		totalCost := pos.CostBasis() + cost
		pos.EntryPrice = totalCost / totalQty
		pos.Quantity = totalQty
		pos.CurrentPrice = price
	} else {
		p.positions[order.Symbol] = &Position{
			Symbol:       order.Symbol,
			Quantity:     order.Quantity,
			EntryPrice:   price,
			EntryDate:    ts,
			CurrentPrice: price,
		}
	}

	p.trades = append(p.trades, ExecutedTrade{
		Symbol:     order.Symbol,
		EntryDate:  ts,
		EntryPrice: price,
		Quantity:   order.Quantity,
		Side:       Buy,
		Status:     StatusOpen,
	})
	return true
}

func (p *Portfolio) executeSell(order *Order, price float64, ts time.Time) bool {
	pos, ok := p.positions[order.Symbol]
	if !ok {
		return false
	}
	if order.Quantity > pos.Quantity {
		return false
	}

	proceeds := order.Quantity * price
	p.cash += proceeds

	costBasis := order.Quantity * pos.EntryPrice
	pnl := proceeds - costBasis
	pnlPct := 0.0
	if costBasis > 0 {
		pnlPct = pnl / costBasis * 100
	}

	entryDate := pos.EntryDate
	entryPrice := pos.EntryPrice

	if order.Quantity == pos.Quantity {
		delete(p.positions, order.Symbol)
	} else {
		pos.Quantity -= order.Quantity
	}

	p.trades = append(p.trades, ExecutedTrade{
		Symbol:     order.Symbol,
		EntryDate:  entryDate,
		ExitDate:   ts,
		EntryPrice: entryPrice,
		ExitPrice:  price,
		Quantity:   order.Quantity,
		Side:       Sell,
		PnL:        pnl,
		PnLPct:     pnlPct,
		Status:     StatusClosed,
	})
	return true
}

// RecordEquity appends the current snapshot to the equity history. The
// engine calls this exactly once per bar group, after all orders for that
// timestamp have executed.
func (p *Portfolio) RecordEquity(ts time.Time) {
	p.equityHistory = append(p.equityHistory, EquityPoint{
		Timestamp:      ts,
		Equity:         p.Equity(),
		Cash:           p.cash,
		PositionsValue: p.PositionsValue(),
	})
}

// CloseAllPositions liquidates every open position that has a price in the
// map, in sorted symbol order. Used once at the end of a run so every trade
// is closed before metrics are computed.
func (p *Portfolio) CloseAllPositions(prices map[string]float64, ts time.Time) {
	for _, sym := range p.OpenSymbols() {
		price, ok := prices[sym]
		if !ok {
			continue
		}
		pos := p.positions[sym]
		order := NewMarketOrder(sym, pos.Quantity, Sell, ts)
		p.ExecuteOrder(order, price, ts)
	}
}

// Trades returns the full trade log in execution order.
func (p *Portfolio) Trades() []ExecutedTrade { return p.trades }

// OpenTrades returns the trade records still marked open.
func (p *Portfolio) OpenTrades() []ExecutedTrade {
	return p.filterTrades(StatusOpen)
}

// ClosedTrades returns the closed trade records in execution order.
func (p *Portfolio) ClosedTrades() []ExecutedTrade {
	return p.filterTrades(StatusClosed)
}

func (p *Portfolio) filterTrades(status TradeStatus) []ExecutedTrade {
	var out []ExecutedTrade
	for _, t := range p.trades {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// EquityHistory returns the recorded equity curve in timestamp order.
func (p *Portfolio) EquityHistory() []EquityPoint { return p.equityHistory }
