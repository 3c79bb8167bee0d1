package indicators

import (
	"fmt"
	"math"
)

// RSI calculates the Relative Strength Index of the last period price
// changes, smoothing gains and losses with a simple rolling mean.
//
// A window containing gains but no losses yields 100. A completely flat
// window has no defined strength and yields NaN; callers should treat NaN
// as "no signal".
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(closes) < period+1 {
		return 0, fmt.Errorf("not enough values: need %d, got %d", period+1, len(closes))
	}

	var gain, loss float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	gain /= float64(period)
	loss /= float64(period)

	if loss == 0 {
		if gain == 0 {
			return math.NaN(), nil
		}
		return 100, nil
	}

	rs := gain / loss
	return 100 - 100/(1+rs), nil
}
