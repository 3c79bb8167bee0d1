package cmd

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"quantlab/journal"
	"quantlab/metrics"
)

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "List or inspect persisted backtest runs",
	Long: `Report reads the SQLite journal written by 'quantlab run --db'.

With no arguments it lists all runs. With a run ID it prints that run's
metrics; --baseline diffs it against a second run and --export writes the
run's trades and equity curve as CSV.

Example:
  quantlab report --db runs.sqlite
  quantlab report --db runs.sqlite 01J9... --baseline 01J8... --export out/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

var (
	reportDBPath   string
	reportBaseline string
	reportExport   string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportDBPath, "db", "backtest.sqlite", "path to SQLite journal")
	reportCmd.Flags().StringVar(&reportBaseline, "baseline", "", "run ID to diff against")
	reportCmd.Flags().StringVar(&reportExport, "export", "", "export the run's trades and equity to this directory")
}

func runReport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := context.Background()

	if len(args) == 0 {
		runs, err := j.ListRuns(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}
		fmt.Printf("%-26s  %-10s  %-16s  %-20s  %10s  %8s\n",
			"RUN", "STATUS", "STRATEGY", "RISK", "RETURN", "TRADES")
		for _, r := range runs {
			fmt.Printf("%-26s  %-10s  %-16s  %-20s  %9.2f%%  %8d\n",
				r.ID, r.Status, r.Strategy, r.RiskName, r.Metrics.TotalReturn, r.Metrics.NumTrades)
		}
		return nil
	}

	run, err := j.GetRun(ctx, args[0])
	if err != nil {
		return err
	}
	printRun(run)

	if reportBaseline != "" {
		base, err := j.GetRun(ctx, reportBaseline)
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		printComparison(metrics.Compare(run.Metrics, base.Metrics), base.ID)
	}

	if reportExport != "" {
		trades, err := j.ListTrades(ctx, run.ID)
		if err != nil {
			return err
		}
		equity, err := j.ListEquity(ctx, run.ID)
		if err != nil {
			return err
		}
		if err := journal.ExportCSV(reportExport, trades, equity); err != nil {
			return err
		}
		fmt.Printf("\nExported trades and equity curve to %s\n", reportExport)
	}
	return nil
}

func printRun(r journal.Run) {
	m := r.Metrics
	fmt.Printf("Run %s (%s)\n", r.ID, r.Status)
	fmt.Printf("  Strategy:        %s\n", r.Strategy)
	fmt.Printf("  Risk:            %s\n", r.RiskName)
	fmt.Printf("  Dataset:         %s\n", r.Dataset)
	fmt.Printf("  Period:          %s to %s\n", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	fmt.Printf("  Initial Capital: $%.2f\n", r.InitialCapital)
	fmt.Printf("  Final Equity:    $%.2f\n", m.FinalEquity)
	fmt.Printf("  Total Return:    %.2f%%\n", m.TotalReturn)
	fmt.Printf("  CAGR:            %.2f%%\n", m.CAGR)
	fmt.Printf("  Max Drawdown:    %.2f%%\n", m.MaxDrawdown)
	fmt.Printf("  Sharpe Ratio:    %.2f\n", m.SharpeRatio)
	fmt.Printf("  Trades:          %d (win rate %.2f%%)\n", m.NumTrades, m.WinRate)
	if math.IsInf(m.ProfitFactor, 1) {
		fmt.Printf("  Profit Factor:   inf\n")
	} else {
		fmt.Printf("  Profit Factor:   %.2f\n", m.ProfitFactor)
	}
}

func printComparison(c metrics.Comparison, baselineID string) {
	fmt.Printf("\nVersus baseline %s:\n", baselineID)
	fmt.Printf("  Total Return:    %+.2f%%\n", c.TotalReturnDiff)
	fmt.Printf("  Max Drawdown:    %+.2f%%\n", c.MaxDrawdownDiff)
	fmt.Printf("  Sharpe Ratio:    %+.2f\n", c.SharpeRatioDiff)
	fmt.Printf("  Win Rate:        %+.2f%%\n", c.WinRateDiff)
	fmt.Printf("  Trades:          %+d\n", c.NumTradesDiff)
	fmt.Printf("  DD Improvement:  %.2f%%\n", c.DrawdownImprovementPct)
}
