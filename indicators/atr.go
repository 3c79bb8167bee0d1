package indicators

import (
	"fmt"
	"math"

	"quantlab/market"
)

// ATR calculates the Average True Range over the last period bars as a
// simple mean of true ranges. The first bar's true range falls back to
// high-low since it has no prior close.
func ATR(bars []market.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period, len(bars))
	}

	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += trueRange(bars, i)
	}
	return sum / float64(period), nil
}

func trueRange(bars []market.Bar, i int) float64 {
	b := bars[i]
	if i == 0 {
		return b.High - b.Low
	}
	prevClose := bars[i-1].Close
	return math.Max(b.High-b.Low,
		math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
}
