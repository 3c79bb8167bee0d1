package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "quantlab",
	Short: "A deterministic bar-replay backtesting engine for trading strategies",
	Long: `Quantlab replays daily OHLCV bars through pluggable trading strategies
with portfolio accounting, risk management, and performance metrics.

It provides tools for:
  - Backtesting strategies against CSV datasets or generated data
  - Stop-loss, take-profit, exposure, and drawdown risk controls
  - Persisting runs to a SQLite journal for later comparison
  - Generating deterministic synthetic OHLCV datasets`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(logLevel))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
