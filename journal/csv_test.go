package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantlab/portfolio"
)

func readAllCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	entry := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	exit := time.Date(2022, 1, 5, 0, 0, 0, 0, time.UTC)

	trades := []portfolio.ExecutedTrade{
		{Symbol: "AAPL", EntryDate: entry, EntryPrice: 100, Quantity: 50, Side: portfolio.Buy, Status: portfolio.StatusOpen},
		{Symbol: "AAPL", EntryDate: entry, ExitDate: exit, EntryPrice: 100, ExitPrice: 110, Quantity: 50, Side: portfolio.Sell, PnL: 500, PnLPct: 10, Status: portfolio.StatusClosed},
	}
	equity := []portfolio.EquityPoint{
		{Timestamp: entry, Equity: 100_000, Cash: 100_000},
		{Timestamp: exit, Equity: 100_500, Cash: 95_000, PositionsValue: 5_500},
	}

	dir := filepath.Join(t.TempDir(), "export")
	require.NoError(t, ExportCSV(dir, trades, equity))

	tradeRows := readAllCSV(t, filepath.Join(dir, "trades.csv"))
	require.Len(t, tradeRows, 3)
	assert.Equal(t, "symbol", tradeRows[0][0])
	assert.Equal(t, "AAPL", tradeRows[1][0])
	assert.Equal(t, "buy", tradeRows[1][1])
	assert.Empty(t, tradeRows[1][4], "open trades have no exit date")
	assert.Equal(t, "closed", tradeRows[2][9])
	assert.Equal(t, "500.000000", tradeRows[2][7])

	equityRows := readAllCSV(t, filepath.Join(dir, "equity.csv"))
	require.Len(t, equityRows, 3)
	assert.Equal(t, "time", equityRows[0][0])
	assert.Equal(t, entry.Format(time.RFC3339), equityRows[1][0])
	assert.Equal(t, "100500.000000", equityRows[2][1])
}

func TestExportCSVEmpty(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "export")
	require.NoError(t, ExportCSV(dir, nil, nil))

	assert.Len(t, readAllCSV(t, filepath.Join(dir, "trades.csv")), 1, "header only")
	assert.Len(t, readAllCSV(t, filepath.Join(dir, "equity.csv")), 1)
}
