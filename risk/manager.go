package risk

import (
	"quantlab/portfolio"
)

// Manager evaluates the risk policy against the ledger every bar. It holds
// run-scoped mutable state: the equity high-water mark and the sticky
// trading-halted flag. A manager belongs to exactly one engine run; Reset
// clears it for reuse.
type Manager struct {
	config        Config
	peakEquity    float64
	tradingHalted bool
}

// Stats is the risk state reported with a run's result.
type Stats struct {
	PeakEquity    float64
	TradingHalted bool
	Config        Config
}

// NewManager creates a manager for the given policy.
func NewManager(config Config) *Manager {
	return &Manager{config: config}
}

// Config returns the policy the manager enforces.
func (m *Manager) Config() Config { return m.config }

// Halted reports whether the drawdown breaker has tripped. The flag is
// sticky: once set it stays set for the rest of the run.
func (m *Manager) Halted() bool { return m.tradingHalted }

// PeakEquity returns the equity high-water mark observed so far.
func (m *Manager) PeakEquity() float64 { return m.peakEquity }

// ValidateOrder decides whether an order may execute, shrinking buy
// quantities in place to fit the position-size and exposure limits (never
// growing them). All orders are rejected while trading is halted. Sells are
// never shrunk: they pass if the symbol is held with enough quantity.
func (m *Manager) ValidateOrder(order *portfolio.Order, price float64, pf *portfolio.Portfolio) bool {
	if !m.config.Enabled {
		return true
	}
	if m.tradingHalted {
		return false
	}

	switch order.Side {
	case portfolio.Buy:
		return m.validateBuy(order, price, pf)
	case portfolio.Sell:
		return m.validateSell(order, pf)
	}
	return true
}

func (m *Manager) validateBuy(order *portfolio.Order, price float64, pf *portfolio.Portfolio) bool {
	// Position-size limit first, then exposure limit: each shrinks the
	// order to the largest quantity that fits.
	if m.config.MaxPositionSize != nil {
		maxValue := pf.Equity() * *m.config.MaxPositionSize
		if order.Quantity*price > maxValue {
			order.Quantity = maxValue / price
			if order.Quantity <= 0 {
				return false
			}
		}
	}

	if m.config.MaxPortfolioExposure != nil {
		orderValue := order.Quantity * price
		newExposure := 0.0
		if eq := pf.Equity(); eq > 0 {
			newExposure = (pf.PositionsValue() + orderValue) / eq
		}
		if newExposure > *m.config.MaxPortfolioExposure {
			maxOrderValue := pf.Equity()**m.config.MaxPortfolioExposure - pf.PositionsValue()
			if maxOrderValue <= 0 {
				return false
			}
			order.Quantity = maxOrderValue / price
		}
	}

	// Cash check last: a shrunk order must still fit available cash.
	return order.Quantity*price <= pf.Cash()
}

func (m *Manager) validateSell(order *portfolio.Order, pf *portfolio.Portfolio) bool {
	pos, ok := pf.Position(order.Symbol)
	if !ok {
		return false
	}
	return order.Quantity <= pos.Quantity
}

// CheckStopLossTakeProfit scans open positions in sorted symbol order and
// emits a full-quantity sell for each position whose return has crossed the
// stop-loss (checked first) or take-profit threshold. At most one exit order
// is emitted per symbol per bar.
func (m *Manager) CheckStopLossTakeProfit(pf *portfolio.Portfolio, prices map[string]float64) []*portfolio.Order {
	if !m.config.Enabled {
		return nil
	}

	var orders []*portfolio.Order
	for _, sym := range pf.OpenSymbols() {
		price, ok := prices[sym]
		if !ok {
			continue
		}
		pos, _ := pf.Position(sym)

		pnlPct := 0.0
		if pos.EntryPrice > 0 {
			pnlPct = (price - pos.EntryPrice) / pos.EntryPrice
		}

		if m.config.StopLossPct != nil && pnlPct <= -*m.config.StopLossPct {
			orders = append(orders, &portfolio.Order{
				Symbol:   sym,
				Quantity: pos.Quantity,
				Side:     portfolio.Sell,
				Type:     portfolio.Market,
			})
			continue
		}

		if m.config.TakeProfitPct != nil && pnlPct >= *m.config.TakeProfitPct {
			orders = append(orders, &portfolio.Order{
				Symbol:   sym,
				Quantity: pos.Quantity,
				Side:     portfolio.Sell,
				Type:     portfolio.Market,
			})
		}
	}
	return orders
}

// CheckDrawdown updates the high-water mark and trips the sticky halt when
// the drawdown from peak reaches the configured maximum. It emits no orders;
// the halt only gates future order validation.
func (m *Manager) CheckDrawdown(pf *portfolio.Portfolio) {
	if !m.config.Enabled || m.config.MaxDrawdownPct == nil {
		return
	}

	eq := pf.Equity()
	if eq > m.peakEquity {
		m.peakEquity = eq
	}

	if m.peakEquity > 0 {
		drawdown := (m.peakEquity - eq) / m.peakEquity
		if drawdown >= *m.config.MaxDrawdownPct {
			m.tradingHalted = true
		}
	}
}

// ApplyRiskAdjustments filters candidate orders through ValidateOrder,
// dropping any order whose symbol has no current price and any that fails
// validation. Shrunk orders pass through with reduced quantity.
func (m *Manager) ApplyRiskAdjustments(orders []*portfolio.Order, pf *portfolio.Portfolio, prices map[string]float64) []*portfolio.Order {
	if !m.config.Enabled {
		return orders
	}

	var validated []*portfolio.Order
	for _, order := range orders {
		price, ok := prices[order.Symbol]
		if !ok {
			continue
		}
		if m.ValidateOrder(order, price, pf) {
			validated = append(validated, order)
		}
	}
	return validated
}

// Reset clears the run-scoped state so the manager can serve a new run.
func (m *Manager) Reset() {
	m.peakEquity = 0
	m.tradingHalted = false
}

// GetStats returns the manager's current state for result reporting.
func (m *Manager) GetStats() Stats {
	return Stats{
		PeakEquity:    m.peakEquity,
		TradingHalted: m.tradingHalted,
		Config:        m.config,
	}
}
