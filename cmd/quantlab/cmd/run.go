package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quantlab/backtest"
	"quantlab/config"
	"quantlab/journal"
	"quantlab/market"
	"quantlab/risk"
	"quantlab/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest",
	Long: `Run replays a bar dataset through a strategy and prints the resulting
performance metrics.

The dataset comes from --data (a .csv, .csv.xz, or .zip bundle of CSVs) or,
when --data is omitted, from a deterministic generated series for --symbols.

Example:
  quantlab run --data data/sample.csv --strategy ma-cross --risk conservative
  quantlab run --symbols AAPL,MSFT --strategy rsi-reversion --db runs.sqlite`,
	RunE: runBacktest,
}

var (
	runConfigPath string
	runDataPath   string
	runSymbols    []string
	runStrategy   string
	runParams     []string
	runCapital    float64
	runStart      string
	runEnd        string
	runRisk       string
	runDBPath     string
	runExportDir  string
	runRegime     string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to YAML/JSON config file (flags override it)")
	runCmd.Flags().StringVarP(&runDataPath, "data", "d", "", "path to bar CSV, .csv.xz, or .zip bundle")
	runCmd.Flags().StringSliceVar(&runSymbols, "symbols", nil, "symbols to trade (default: all in dataset)")
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "", "strategy name (see 'quantlab strategies')")
	runCmd.Flags().StringArrayVarP(&runParams, "param", "p", nil, "strategy parameter as key=value (repeatable)")
	runCmd.Flags().Float64VarP(&runCapital, "capital", "b", 0, "initial capital")
	runCmd.Flags().StringVar(&runStart, "start", "", "backtest start date (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&runEnd, "end", "", "backtest end date (YYYY-MM-DD)")
	runCmd.Flags().StringVarP(&runRisk, "risk", "r", "", "risk preset (none, conservative)")
	runCmd.Flags().StringVar(&runDBPath, "db", "", "persist the run to this SQLite journal")
	runCmd.Flags().StringVar(&runExportDir, "export", "", "export trades.csv and equity.csv to this directory")
	runCmd.Flags().StringVar(&runRegime, "regime", "", "generated data regime (bullish, bearish, sideways, mixed)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	bars, dataset, err := loadBars(cfg)
	if err != nil {
		return err
	}

	strat, err := strategies.New(cfg.Strategy.Name, cfg.Strategy.Params)
	if err != nil {
		return err
	}

	start, err := config.ParseDate(cfg.Backtest.StartDate)
	if err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	end, err := config.ParseDate(cfg.Backtest.EndDate)
	if err != nil {
		return fmt.Errorf("end date: %w", err)
	}

	engine := backtest.New(strat, bars, cfg.Backtest.InitialCapital, cfg.Risk, backtest.Options{
		StartDate: start,
		EndDate:   end,
		Symbols:   cfg.Data.Symbols,
		Logger:    slog.Default(),
	})

	result, err := engine.Run()
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	printResult(result)

	if runExportDir != "" {
		if err := journal.ExportCSV(runExportDir, result.Trades, result.EquityCurve); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Printf("\nExported trades and equity curve to %s\n", runExportDir)
	}

	if cfg.Journal.Enabled {
		runID, err := persistRun(cfg, dataset, result)
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		fmt.Printf("\nSaved run %s to %s\n", runID, cfg.Journal.DBPath)
	}
	return nil
}

// resolveConfig merges the optional config file with flag overrides; flags
// win.
func resolveConfig() (*config.Config, error) {
	var cfg *config.Config
	if runConfigPath != "" {
		loaded, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if runDataPath != "" {
		cfg.Data.Path = runDataPath
	}
	if len(runSymbols) > 0 {
		cfg.Data.Symbols = runSymbols
	}
	if runRegime != "" {
		cfg.Data.Generate.Regime = runRegime
	}
	if runStrategy != "" {
		cfg.Strategy.Name = runStrategy
		cfg.Strategy.Params = nil
	}
	if len(runParams) > 0 {
		if cfg.Strategy.Params == nil {
			cfg.Strategy.Params = strategies.Params{}
		}
		for _, kv := range runParams {
			key, val, ok := strings.Cut(kv, "=")
			if !ok {
				return nil, fmt.Errorf("bad --param %q (want key=value)", kv)
			}
			var x float64
			if _, err := fmt.Sscanf(val, "%g", &x); err != nil {
				return nil, fmt.Errorf("bad --param value %q: %w", val, err)
			}
			cfg.Strategy.Params[key] = x
		}
	}
	if runCapital > 0 {
		cfg.Backtest.InitialCapital = runCapital
	}
	if runStart != "" {
		cfg.Backtest.StartDate = runStart
	}
	if runEnd != "" {
		cfg.Backtest.EndDate = runEnd
	}
	switch strings.ToLower(runRisk) {
	case "":
	case "none":
		cfg.Risk = risk.Disabled()
	case "conservative":
		cfg.Risk = risk.Conservative()
	default:
		return nil, fmt.Errorf("unknown risk preset %q (supported: none, conservative)", runRisk)
	}
	if runDBPath != "" {
		cfg.Journal.Enabled = true
		cfg.Journal.DBPath = runDBPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadBars resolves the data source: a CSV file, an .xz-compressed CSV, a
// zip bundle of CSVs, or a generated series. The returned string names the
// dataset for journaling.
func loadBars(cfg *config.Config) (*market.BarSet, string, error) {
	if cfg.Data.Path == "" {
		start, err := config.ParseDate(cfg.Data.Generate.Start)
		if err != nil {
			return nil, "", err
		}
		end, err := config.ParseDate(cfg.Data.Generate.End)
		if err != nil {
			return nil, "", err
		}
		if start.IsZero() {
			start = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		}
		if end.IsZero() {
			end = start.AddDate(3, 0, 0)
		}
		regime := market.Regime(cfg.Data.Generate.Regime)
		if regime == "" {
			regime = market.RegimeMixed
		}
		bars, err := market.Generate(cfg.Data.Symbols, start, end, regime)
		if err != nil {
			return nil, "", fmt.Errorf("generate data: %w", err)
		}
		return bars, fmt.Sprintf("generated:%s", regime), nil
	}

	if strings.HasSuffix(cfg.Data.Path, ".zip") {
		tmp, err := os.MkdirTemp("", "quantlab-data-*")
		if err != nil {
			return nil, "", err
		}
		defer os.RemoveAll(tmp)

		paths, err := market.ExtractArchive(cfg.Data.Path, tmp)
		if err != nil {
			return nil, "", fmt.Errorf("extract %s: %w", cfg.Data.Path, err)
		}
		var all []market.Bar
		for _, p := range paths {
			set, err := market.LoadCSV(p, cfg.Data.Symbols)
			if err != nil {
				return nil, "", fmt.Errorf("load %s: %w", filepath.Base(p), err)
			}
			all = append(all, set.Bars()...)
		}
		merged, err := market.NewBarSet(all)
		if err != nil {
			return nil, "", fmt.Errorf("merge %s: %w", cfg.Data.Path, err)
		}
		return merged, cfg.Data.Path, nil
	}

	bars, err := market.LoadCSV(cfg.Data.Path, cfg.Data.Symbols)
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", cfg.Data.Path, err)
	}
	return bars, cfg.Data.Path, nil
}

func persistRun(cfg *config.Config, dataset string, result *backtest.Result) (string, error) {
	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return "", err
	}
	defer j.Close()

	run := journal.Run{
		ID:             journal.NewRunID(),
		Created:        time.Now().UTC(),
		Status:         journal.StatusCompleted,
		Strategy:       result.Strategy,
		RiskName:       result.RiskConfig,
		Dataset:        dataset,
		Symbols:        cfg.Data.Symbols,
		Start:          result.Start,
		End:            result.End,
		InitialCapital: cfg.Backtest.InitialCapital,
		Metrics:        result.Metrics,
	}
	if err := j.SaveRun(context.Background(), run, result); err != nil {
		return "", err
	}
	return run.ID, nil
}

func printResult(r *backtest.Result) {
	m := r.Metrics
	fmt.Printf("\nBacktest Complete: %s (%s)\n", r.Strategy, r.RiskConfig)
	fmt.Printf("  Period:          %s to %s\n", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	fmt.Printf("  Final Equity:    $%.2f\n", m.FinalEquity)
	fmt.Printf("  Total Return:    %.2f%%\n", m.TotalReturn)
	fmt.Printf("  CAGR:            %.2f%%\n", m.CAGR)
	fmt.Printf("  Max Drawdown:    %.2f%%\n", m.MaxDrawdown)
	fmt.Printf("  Volatility:      %.2f%%\n", m.Volatility)
	fmt.Printf("  Sharpe Ratio:    %.2f\n", m.SharpeRatio)
	fmt.Printf("  Trades:          %d\n", m.NumTrades)
	fmt.Printf("  Win Rate:        %.2f%%\n", m.WinRate)
	fmt.Printf("  Avg Win / Loss:  $%.2f / $%.2f\n", m.AvgWin, m.AvgLoss)
	if math.IsInf(m.ProfitFactor, 1) {
		fmt.Printf("  Profit Factor:   inf\n")
	} else {
		fmt.Printf("  Profit Factor:   %.2f\n", m.ProfitFactor)
	}
	if r.RiskStats.TradingHalted {
		fmt.Printf("  NOTE: trading was halted by the drawdown circuit breaker\n")
	}
}
