package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func testBar(sym string, ts time.Time, close float64) Bar {
	return Bar{
		Timestamp: ts,
		Symbol:    sym,
		Open:      close - 1,
		High:      close + 2,
		Low:       close - 2,
		Close:     close,
		Volume:    1000,
	}
}

func TestNewBarSetSortsByTimestampThenSymbol(t *testing.T) {
	t.Parallel()

	set, err := NewBarSet([]Bar{
		testBar("MSFT", day(2), 300),
		testBar("AAPL", day(2), 150),
		testBar("AAPL", day(1), 148),
	})
	require.NoError(t, err)

	bars := set.Bars()
	require.Len(t, bars, 3)
	assert.Equal(t, "AAPL", bars[0].Symbol)
	assert.Equal(t, day(1), bars[0].Timestamp)
	assert.Equal(t, "AAPL", bars[1].Symbol)
	assert.Equal(t, "MSFT", bars[2].Symbol)
}

func TestNewBarSetRejectsDuplicates(t *testing.T) {
	t.Parallel()

	_, err := NewBarSet([]Bar{
		testBar("AAPL", day(1), 150),
		testBar("AAPL", day(1), 151),
	})
	assert.ErrorContains(t, err, "duplicate bar")
}

func TestNewBarSetRejectsInvalidBars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bar  Bar
	}{
		{"zero timestamp", Bar{Symbol: "AAPL", Open: 1, High: 2, Low: 1, Close: 1, Volume: 1}},
		{"empty symbol", testBar("", day(1), 150)},
		{"negative close", Bar{Timestamp: day(1), Symbol: "AAPL", Open: 1, High: 2, Low: 1, Close: -1, Volume: 1}},
		{"high below low", Bar{Timestamp: day(1), Symbol: "AAPL", Open: 1, High: 1, Low: 2, Close: 1, Volume: 1}},
		{"negative volume", Bar{Timestamp: day(1), Symbol: "AAPL", Open: 1, High: 2, Low: 1, Close: 1, Volume: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBarSet([]Bar{tt.bar})
			assert.Error(t, err)
		})
	}
}

func TestTimestampsAreDistinctAscending(t *testing.T) {
	t.Parallel()

	set, err := NewBarSet([]Bar{
		testBar("AAPL", day(2), 150),
		testBar("MSFT", day(2), 300),
		testBar("AAPL", day(1), 148),
	})
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(1), day(2)}, set.Timestamps())
	assert.Equal(t, []string{"AAPL", "MSFT"}, set.Symbols())
}

func TestFilterRangeIsInclusive(t *testing.T) {
	t.Parallel()

	set, err := NewBarSet([]Bar{
		testBar("AAPL", day(1), 148),
		testBar("AAPL", day(2), 150),
		testBar("AAPL", day(3), 152),
		testBar("AAPL", day(4), 154),
	})
	require.NoError(t, err)

	got := set.FilterRange(day(2), day(3))
	require.Equal(t, 2, got.Len())
	assert.Equal(t, day(2), got.Bars()[0].Timestamp)
	assert.Equal(t, day(3), got.Bars()[1].Timestamp)

	assert.Equal(t, 0, set.FilterRange(day(10), day(20)).Len())
}

func TestFilterSymbols(t *testing.T) {
	t.Parallel()

	set, err := NewBarSet([]Bar{
		testBar("AAPL", day(1), 148),
		testBar("MSFT", day(1), 300),
		testBar("GOOG", day(1), 120),
	})
	require.NoError(t, err)

	got := set.FilterSymbols([]string{"MSFT"})
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "MSFT", got.Bars()[0].Symbol)

	assert.Equal(t, 3, set.FilterSymbols(nil).Len(), "empty filter keeps everything")
}

func TestAtAndUpTo(t *testing.T) {
	t.Parallel()

	set, err := NewBarSet([]Bar{
		testBar("AAPL", day(1), 148),
		testBar("AAPL", day(2), 150),
		testBar("MSFT", day(2), 300),
		testBar("AAPL", day(3), 152),
	})
	require.NoError(t, err)

	group := set.At(day(2))
	require.Len(t, group, 2)
	assert.Equal(t, "AAPL", group[0].Symbol)
	assert.Equal(t, "MSFT", group[1].Symbol)

	prefix := set.UpTo(day(2))
	require.Len(t, prefix, 3)
	for _, b := range prefix {
		assert.False(t, b.Timestamp.After(day(2)))
	}

	assert.Empty(t, set.At(day(9)))
	assert.Len(t, set.UpTo(day(9)), 4)
}

func TestBySymbolPreservesOrder(t *testing.T) {
	t.Parallel()

	set, err := NewBarSet([]Bar{
		testBar("AAPL", day(2), 150),
		testBar("MSFT", day(1), 298),
		testBar("AAPL", day(1), 148),
	})
	require.NoError(t, err)

	got := BySymbol(set.Bars(), "AAPL")
	require.Len(t, got, 2)
	assert.Equal(t, day(1), got[0].Timestamp)
	assert.Equal(t, day(2), got[1].Timestamp)

	assert.Equal(t, []string{"AAPL", "MSFT"}, SymbolsOf(set.Bars()))
}
