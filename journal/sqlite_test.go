package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantlab/backtest"
	"quantlab/metrics"
	"quantlab/portfolio"
	"quantlab/risk"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func sampleResult() *backtest.Result {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 1, 5, 0, 0, 0, 0, time.UTC)
	return &backtest.Result{
		Strategy:   "Moving Average Crossover",
		RiskConfig: "No Risk Management",
		Start:      start,
		End:        end,
		Metrics: metrics.Metrics{
			TotalReturn: 5.5,
			MaxDrawdown: 2.1,
			SharpeRatio: 1.3,
			WinRate:     60,
			NumTrades:   2,
			FinalEquity: 105_500,
		},
		EquityCurve: []portfolio.EquityPoint{
			{Timestamp: start, Equity: 100_000, Cash: 100_000},
			{Timestamp: end, Equity: 105_500, Cash: 105_500},
		},
		Trades: []portfolio.ExecutedTrade{
			{Symbol: "AAPL", EntryDate: start, EntryPrice: 100, Quantity: 50, Side: portfolio.Buy, Status: portfolio.StatusOpen},
			{Symbol: "AAPL", EntryDate: start, ExitDate: end, EntryPrice: 100, ExitPrice: 110, Quantity: 50, Side: portfolio.Sell, PnL: 500, PnLPct: 10, Status: portfolio.StatusClosed},
		},
		RiskStats: risk.Stats{Config: risk.Disabled()},
	}
}

func sampleRun(id string) Run {
	result := sampleResult()
	return Run{
		ID:             id,
		Created:        time.Date(2022, 2, 1, 12, 0, 0, 0, time.UTC),
		Status:         StatusCompleted,
		Strategy:       result.Strategy,
		RiskName:       result.RiskConfig,
		Dataset:        "data/sample.csv",
		Symbols:        []string{"AAPL", "MSFT"},
		Start:          result.Start,
		End:            result.End,
		InitialCapital: 100_000,
		Metrics:        result.Metrics,
	}
}

func TestNewRunIDIsUniqueAndSortable(t *testing.T) {
	t.Parallel()

	a, b := NewRunID(), NewRunID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	ctx := context.Background()

	run := sampleRun(NewRunID())
	require.NoError(t, j.SaveRun(ctx, run, sampleResult()))

	got, err := j.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, run.Strategy, got.Strategy)
	assert.Equal(t, run.Symbols, got.Symbols)
	assert.Equal(t, run.InitialCapital, got.InitialCapital)
	assert.InDelta(t, 5.5, got.Metrics.TotalReturn, 1e-9)
	assert.Equal(t, 2, got.Metrics.NumTrades)
	assert.True(t, got.Start.Equal(run.Start))
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	_, err := j.GetRun(context.Background(), "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestDuplicateRunIDRejected(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	ctx := context.Background()

	run := sampleRun(NewRunID())
	require.NoError(t, j.SaveRun(ctx, run, sampleResult()))
	assert.Error(t, j.SaveRun(ctx, run, sampleResult()), "run IDs are primary keys")
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	ctx := context.Background()

	first := sampleRun("01AAAAAAAAAAAAAAAAAAAAAAAA")
	second := sampleRun("01BBBBBBBBBBBBBBBBBBBBBBBB")
	require.NoError(t, j.SaveRun(ctx, second, sampleResult()))
	require.NoError(t, j.SaveRun(ctx, first, sampleResult()))

	runs, err := j.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].ID, "runs list in ID order regardless of insert order")
	assert.Equal(t, second.ID, runs[1].ID)
}

func TestListTradesRoundTrip(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	ctx := context.Background()

	run := sampleRun(NewRunID())
	result := sampleResult()
	require.NoError(t, j.SaveRun(ctx, run, result))

	trades, err := j.ListTrades(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, portfolio.StatusOpen, trades[0].Status)
	assert.True(t, trades[0].ExitDate.IsZero(), "open trades round-trip without an exit date")

	assert.Equal(t, portfolio.StatusClosed, trades[1].Status)
	assert.InDelta(t, 500.0, trades[1].PnL, 1e-9)
	assert.True(t, trades[1].ExitDate.Equal(result.Trades[1].ExitDate))
}

func TestListEquityRoundTrip(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	ctx := context.Background()

	run := sampleRun(NewRunID())
	result := sampleResult()
	require.NoError(t, j.SaveRun(ctx, run, result))

	equity, err := j.ListEquity(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, equity, 2)
	assert.InDelta(t, 100_000.0, equity[0].Equity, 1e-9)
	assert.InDelta(t, 105_500.0, equity[1].Equity, 1e-9)
	assert.True(t, equity[0].Timestamp.Before(equity[1].Timestamp))
}

func TestMarkFailed(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	ctx := context.Background()

	run := sampleRun(NewRunID())
	require.NoError(t, j.SaveRun(ctx, run, sampleResult()))
	require.NoError(t, j.MarkFailed(ctx, run.ID, "dataset missing"))

	got, err := j.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)

	// Marking an unknown run records a failed stub rather than erroring.
	require.NoError(t, j.MarkFailed(ctx, "01AAAAAAAAAAAAAAAAAAAAAAAA", "crashed early"))
	stub, err := j.GetRun(ctx, "01AAAAAAAAAAAAAAAAAAAAAAAA")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stub.Status)
}
