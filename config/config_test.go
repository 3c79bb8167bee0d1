package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "cfg.yaml", `
data:
  path: data/sample.csv
  symbols: [AAPL, MSFT]
backtest:
  initial_capital: 50000
  start_date: "2022-01-01"
strategy:
  name: rsi-reversion
  params:
    rsi_period: 10
    oversold: 25
risk:
  name: Custom
  stop_loss_pct: 0.05
  enabled: true
journal:
  enabled: true
  db_path: runs.sqlite
log_level: debug
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "data/sample.csv", cfg.Data.Path)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Data.Symbols)
	assert.Equal(t, 50_000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, "rsi-reversion", cfg.Strategy.Name)
	assert.Equal(t, 10.0, cfg.Strategy.Params["rsi_period"])
	require.NotNil(t, cfg.Risk.StopLossPct)
	assert.Equal(t, 0.05, *cfg.Risk.StopLossPct)
	assert.True(t, cfg.Risk.Enabled)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadJSONFallback(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "cfg.json", `{
  "data": {"path": "data/sample.csv"},
  "backtest": {"initial_capital": 25000},
  "strategy": {"name": "ma-cross"}
}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 25_000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, "ma-cross", cfg.Strategy.Name)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("unparseable", func(t *testing.T) {
		_, err := LoadFromFile(writeTemp(t, "bad.yaml", "{{{not config"))
		assert.ErrorContains(t, err, "parse config")
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero capital", func(c *Config) { c.Backtest.InitialCapital = 0 }, "initial_capital"},
		{"missing strategy", func(c *Config) { c.Strategy.Name = "" }, "strategy.name"},
		{"unknown strategy", func(c *Config) { c.Strategy.Name = "bogus" }, "unknown strategy"},
		{"bad date", func(c *Config) { c.Backtest.StartDate = "01/02/2022" }, "invalid date"},
		{"generate without symbols", func(c *Config) { c.Data.Symbols = nil }, "data.symbols"},
		{"journal without path", func(c *Config) { c.Journal.Enabled = true }, "db_path"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad risk", func(c *Config) {
			v := 1.5
			c.Risk.MaxPositionSize = &v
		}, "max_position_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"cfg.yaml", "cfg.json"} {
		path := filepath.Join(t.TempDir(), name)
		orig := Default()
		orig.Backtest.InitialCapital = 42_000

		require.NoError(t, orig.SaveToFile(path))
		loaded, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, orig, loaded, name)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	got, err := ParseDate("2022-03-15")
	require.NoError(t, err)
	assert.Equal(t, 15, got.Day())

	got, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseDate("15/03/2022")
	assert.Error(t, err)
}
