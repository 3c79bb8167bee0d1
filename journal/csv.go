package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"quantlab/portfolio"
)

// ExportCSV writes a run's trade log and equity curve as trades.csv and
// equity.csv under dir, creating the directory if needed.
func ExportCSV(dir string, trades []portfolio.ExecutedTrade, equity []portfolio.EquityPoint) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir %s: %w", dir, err)
	}
	if err := writeTradesCSV(filepath.Join(dir, "trades.csv"), trades); err != nil {
		return err
	}
	return writeEquityCSV(filepath.Join(dir, "equity.csv"), equity)
}

func writeTradesCSV(path string, trades []portfolio.ExecutedTrade) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"symbol", "side", "quantity", "entry_date", "exit_date", "entry_price", "exit_price", "pnl", "pnl_pct", "status"}); err != nil {
		return err
	}
	for _, t := range trades {
		exit := ""
		if !t.ExitDate.IsZero() {
			exit = t.ExitDate.Format(time.RFC3339)
		}
		if err := w.Write([]string{
			t.Symbol,
			string(t.Side),
			f6(t.Quantity),
			t.EntryDate.Format(time.RFC3339),
			exit,
			f6(t.EntryPrice),
			f6(t.ExitPrice),
			f6(t.PnL),
			f6(t.PnLPct),
			string(t.Status),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeEquityCSV(path string, equity []portfolio.EquityPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "equity", "cash", "positions_value"}); err != nil {
		return err
	}
	for _, pt := range equity {
		if err := w.Write([]string{
			pt.Timestamp.Format(time.RFC3339),
			f6(pt.Equity),
			f6(pt.Cash),
			f6(pt.PositionsValue),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func f6(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
