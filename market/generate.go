package market

import (
	"encoding/csv"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"
)

// Regime selects the drift/volatility profile of generated data.
type Regime string

const (
	RegimeBullish  Regime = "bullish"
	RegimeBearish  Regime = "bearish"
	RegimeSideways Regime = "sideways"
	RegimeMixed    Regime = "mixed"
)

// Generate produces a synthetic daily OHLCV series per symbol over business
// days in [start, end], following a geometric Brownian walk whose drift and
// volatility depend on the regime. The random source is seeded from the
// symbol, so repeated calls with the same inputs yield identical bars.
func Generate(symbols []string, start, end time.Time, regime Regime) (*BarSet, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("generate: end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("generate: no business days in range")
	}

	var bars []Bar
	for _, symbol := range symbols {
		rng := rand.New(rand.NewSource(symbolSeed(symbol)))

		price := 50 + rng.Float64()*150
		closes := make([]float64, len(dates))
		closes[0] = price

		for i := 1; i < len(dates); i++ {
			drift, vol := regimeParams(regime, i)
			price *= 1 + drift + vol*rng.NormFloat64()
			closes[i] = price
		}

		for i, date := range dates {
			c := closes[i]
			dailyRange := c * (0.01 + rng.Float64()*0.02)

			high := c + rng.Float64()*dailyRange
			low := c - rng.Float64()*dailyRange
			open := low + rng.Float64()*(high-low)

			high = math.Max(high, math.Max(open, c))
			low = math.Min(low, math.Min(open, c))

			bars = append(bars, Bar{
				Timestamp: date,
				Symbol:    symbol,
				Open:      round2(open),
				High:      round2(high),
				Low:       round2(low),
				Close:     round2(c),
				Volume:    float64(100_000 + rng.Intn(9_900_000)),
			})
		}
	}

	return NewBarSet(bars)
}

func regimeParams(regime Regime, day int) (drift, vol float64) {
	switch regime {
	case RegimeBullish:
		return 0.0008, 0.015
	case RegimeBearish:
		return -0.0006, 0.020
	case RegimeSideways:
		return 0.0001, 0.012
	default:
		// Mixed: rotate through the three profiles every 60 bars.
		switch (day / 60) % 3 {
		case 0:
			return 0.0008, 0.015
		case 1:
			return -0.0004, 0.018
		default:
			return 0.0001, 0.012
		}
	}
}

func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return int64(h.Sum64() & math.MaxInt64)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WriteCSV saves the set to path in the standard dataset column layout.
func (s *BarSet) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "symbol", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}

	// Datasets are written sorted by (symbol, timestamp) like the upstream
	// sample files; NewBarSet re-sorts on load anyway.
	bars := make([]Bar, len(s.bars))
	copy(bars, s.bars)
	sort.SliceStable(bars, func(i, j int) bool {
		if bars[i].Symbol != bars[j].Symbol {
			return bars[i].Symbol < bars[j].Symbol
		}
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	for _, b := range bars {
		rec := []string{
			b.Timestamp.Format("2006-01-02"),
			b.Symbol,
			f2(b.Open), f2(b.High), f2(b.Low), f2(b.Close),
			strconv.FormatFloat(b.Volume, 'f', 0, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
