// Package market holds the OHLCV bar data model and the BarSet store the
// backtest engine replays from.
package market

import (
	"fmt"
	"time"
)

// Bar represents one OHLCV observation for a symbol at a timestamp.
// Bars are immutable once loaded; ordering key is (Timestamp, Symbol).
type Bar struct {
	Timestamp time.Time
	Symbol    string
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Validate checks that all required fields are present and coherent.
func (b Bar) Validate() error {
	if b.Timestamp.IsZero() {
		return fmt.Errorf("bar %s: missing timestamp", b.Symbol)
	}
	if b.Symbol == "" {
		return fmt.Errorf("bar at %s: missing symbol", b.Timestamp.Format(time.RFC3339))
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("bar %s@%s: non-positive price", b.Symbol, b.Timestamp.Format("2006-01-02"))
	}
	if b.High < b.Low {
		return fmt.Errorf("bar %s@%s: high %.4f below low %.4f", b.Symbol, b.Timestamp.Format("2006-01-02"), b.High, b.Low)
	}
	if b.Volume < 0 {
		return fmt.Errorf("bar %s@%s: negative volume", b.Symbol, b.Timestamp.Format("2006-01-02"))
	}
	return nil
}
