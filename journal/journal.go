// Package journal persists completed backtest runs so they can be listed,
// re-read, and compared later. The SQLite backend is the primary store; the
// CSV backend exports a single run's trades and equity curve to flat files.
package journal

import (
	"context"
	"time"

	"quantlab/backtest"
	"quantlab/metrics"
	"quantlab/portfolio"
)

// RunStatus tracks a run's lifecycle in the store.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run is one persisted backtest run.
type Run struct {
	ID             string
	Created        time.Time
	Status         RunStatus
	Strategy       string
	RiskName       string
	Dataset        string
	Symbols        []string
	Start          time.Time
	End            time.Time
	InitialCapital float64

	Metrics metrics.Metrics
}

// Journal is the persistence interface for backtest runs.
type Journal interface {
	// SaveRun stores a completed run with its trades and equity curve.
	SaveRun(ctx context.Context, run Run, result *backtest.Result) error
	// MarkFailed records that a run started but did not complete.
	MarkFailed(ctx context.Context, runID string, reason string) error

	GetRun(ctx context.Context, runID string) (Run, error)
	ListRuns(ctx context.Context) ([]Run, error)
	ListTrades(ctx context.Context, runID string) ([]portfolio.ExecutedTrade, error)
	ListEquity(ctx context.Context, runID string) ([]portfolio.EquityPoint, error)

	Close() error
}
