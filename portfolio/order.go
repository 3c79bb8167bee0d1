package portfolio

import "time"

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// OrderType selects the execution model. Only market orders are simulated;
// limit and stop prices are carried so a live order-routing adapter can
// substitute for the in-memory ledger without changing the contract.
type OrderType string

const Market OrderType = "market"

// Order is a transient instruction consumed by the ledger within the bar it
// was created in; orders are never carried across bars.
type Order struct {
	Symbol    string
	Quantity  float64
	Side      Side
	Type      OrderType
	Limit     *float64
	Stop      *float64
	Timestamp time.Time
}

// NewMarketOrder builds a market order for immediate execution.
func NewMarketOrder(symbol string, quantity float64, side Side, ts time.Time) *Order {
	return &Order{
		Symbol:    symbol,
		Quantity:  quantity,
		Side:      side,
		Type:      Market,
		Timestamp: ts,
	}
}
