package indicators

import (
	"fmt"

	"quantlab/market"
)

// HighestHigh returns the maximum high of the last period bars.
func HighestHigh(bars []market.Bar, period int) (float64, error) {
	if err := checkWindow(len(bars), period); err != nil {
		return 0, err
	}
	hh := bars[len(bars)-period].High
	for _, b := range bars[len(bars)-period:] {
		if b.High > hh {
			hh = b.High
		}
	}
	return hh, nil
}

// LowestLow returns the minimum low of the last period bars.
func LowestLow(bars []market.Bar, period int) (float64, error) {
	if err := checkWindow(len(bars), period); err != nil {
		return 0, err
	}
	ll := bars[len(bars)-period].Low
	for _, b := range bars[len(bars)-period:] {
		if b.Low < ll {
			ll = b.Low
		}
	}
	return ll, nil
}

func checkWindow(n, period int) error {
	if period <= 0 {
		return fmt.Errorf("period must be positive, got %d", period)
	}
	if n < period {
		return fmt.Errorf("not enough bars: need %d, got %d", period, n)
	}
	return nil
}
