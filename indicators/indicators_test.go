package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantlab/market"
)

func barsFrom(ohlc [][4]float64) []market.Bar {
	out := make([]market.Bar, len(ohlc))
	for i, v := range ohlc {
		out[i] = market.Bar{
			Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Symbol:    "TEST",
			Open:      v[0],
			High:      v[1],
			Low:       v[2],
			Close:     v[3],
			Volume:    1000,
		}
	}
	return out
}

func TestSMA(t *testing.T) {
	t.Parallel()

	got, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got, 1e-9, "average of the last 3 values")

	got, err = SMA([]float64{10, 20}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, got, 1e-9)
}

func TestSMAErrors(t *testing.T) {
	t.Parallel()

	_, err := SMA([]float64{1, 2}, 3)
	assert.ErrorContains(t, err, "not enough values")

	_, err = SMA([]float64{1, 2}, 0)
	assert.ErrorContains(t, err, "period must be positive")
}

func TestRSI(t *testing.T) {
	t.Parallel()

	t.Run("alternating gains and losses", func(t *testing.T) {
		// Deltas over the window: +2, -1, +2, -1. Gain mean 1.0, loss mean 0.5.
		closes := []float64{10, 12, 11, 13, 12}
		got, err := RSI(closes, 4)
		require.NoError(t, err)
		// rs = 2, rsi = 100 - 100/3
		assert.InDelta(t, 66.666666, got, 1e-4)
	})

	t.Run("all gains yields 100", func(t *testing.T) {
		got, err := RSI([]float64{1, 2, 3, 4, 5}, 4)
		require.NoError(t, err)
		assert.Equal(t, 100.0, got)
	})

	t.Run("flat window yields NaN", func(t *testing.T) {
		got, err := RSI([]float64{5, 5, 5, 5, 5}, 4)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got))
	})

	t.Run("too few values", func(t *testing.T) {
		_, err := RSI([]float64{1, 2, 3}, 3)
		assert.ErrorContains(t, err, "not enough values")
	})
}

func TestATR(t *testing.T) {
	t.Parallel()

	bars := barsFrom([][4]float64{
		{10, 12, 9, 11},  // TR = 3 (first bar: high-low)
		{11, 14, 10, 13}, // TR = max(4, |14-11|, |10-11|) = 4
		{13, 15, 12, 14}, // TR = max(3, |15-13|, |12-13|) = 3
	})

	got, err := ATR(bars, 3)
	require.NoError(t, err)
	assert.InDelta(t, 10.0/3, got, 1e-9)

	// Window of 2 skips the first bar and uses prior closes.
	got, err = ATR(bars, 2)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, got, 1e-9)
}

func TestATRErrors(t *testing.T) {
	t.Parallel()

	_, err := ATR(nil, 3)
	assert.ErrorContains(t, err, "not enough bars")

	_, err = ATR(barsFrom([][4]float64{{1, 2, 1, 1}}), -1)
	assert.ErrorContains(t, err, "period must be positive")
}

func TestChannel(t *testing.T) {
	t.Parallel()

	bars := barsFrom([][4]float64{
		{10, 20, 5, 11},
		{11, 14, 9, 13},
		{13, 18, 12, 14},
	})

	hh, err := HighestHigh(bars, 2)
	require.NoError(t, err)
	assert.Equal(t, 18.0, hh, "window covers the last 2 bars only")

	ll, err := LowestLow(bars, 2)
	require.NoError(t, err)
	assert.Equal(t, 9.0, ll)

	hh, err = HighestHigh(bars, 3)
	require.NoError(t, err)
	assert.Equal(t, 20.0, hh)

	_, err = HighestHigh(bars, 4)
	assert.ErrorContains(t, err, "not enough bars")
}
