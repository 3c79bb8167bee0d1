package portfolio

import "time"

// TradeStatus marks whether a trade record is still open.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "open"
	StatusClosed TradeStatus = "closed"
)

// ExecutedTrade is one entry in the append-only trade log. A buy appends an
// open record; a sell appends a closed record carrying the realized P&L of
// the closed quantity against the position's blended entry price. There is
// no FIFO/LIFO lot matching.
type ExecutedTrade struct {
	Symbol     string
	EntryDate  time.Time
	ExitDate   time.Time // zero while open
	EntryPrice float64
	ExitPrice  float64 // zero while open
	Quantity   float64
	Side       Side
	PnL        float64 // realized, closed records only
	PnLPct     float64 // realized percent, closed records only
	Status     TradeStatus
}
