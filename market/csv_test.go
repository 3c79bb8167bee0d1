package market

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `timestamp,symbol,open,high,low,close,volume
2024-01-02,AAPL,149.00,152.00,148.00,150.00,1200000
2024-01-02,MSFT,299.00,302.00,297.00,300.00,800000
2024-01-03,AAPL,150.50,153.00,149.50,151.00,1100000
`

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	set, err := LoadCSV(writeTempCSV(t, sampleCSV), nil)
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())

	first := set.Bars()[0]
	assert.Equal(t, "AAPL", first.Symbol)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 150.0, first.Close)
	assert.Equal(t, 1200000.0, first.Volume)
}

func TestLoadCSVSymbolFilter(t *testing.T) {
	t.Parallel()

	set, err := LoadCSV(writeTempCSV(t, sampleCSV), []string{"MSFT"})
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, "MSFT", set.Bars()[0].Symbol)
}

func TestLoadCSVBadHeader(t *testing.T) {
	t.Parallel()

	_, err := LoadCSV(writeTempCSV(t, "date,symbol,o,h,l,c,v\n"), nil)
	assert.ErrorContains(t, err, "unexpected header")
}

func TestLoadCSVBadNumber(t *testing.T) {
	t.Parallel()

	content := "timestamp,symbol,open,high,low,close,volume\n2024-01-02,AAPL,abc,152,148,150,1000\n"
	_, err := LoadCSV(writeTempCSV(t, content), nil)
	assert.ErrorContains(t, err, "line 2")
}

func TestLoadCSVMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), nil)
	assert.Error(t, err)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	t.Parallel()

	orig, err := NewBarSet([]Bar{
		testBar("AAPL", day(1), 148),
		testBar("AAPL", day(2), 150),
		testBar("MSFT", day(1), 300),
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, orig.WriteCSV(path))

	loaded, err := LoadCSV(path, nil)
	require.NoError(t, err)
	assert.Equal(t, orig.Bars(), loaded.Bars())
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024-01-02 15:30:00", time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC)},
		{"2024-01-02T15:30:00Z", time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, got.Equal(tt.want), tt.in)
	}

	_, err := ParseTimestamp("01/02/2024")
	assert.ErrorContains(t, err, "unparseable timestamp")
}
