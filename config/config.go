// Package config loads and validates the run configuration from YAML or
// JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"quantlab/risk"
	"quantlab/strategies"
)

// Config is the complete configuration for a backtest run.
type Config struct {
	Data     DataConfig     `json:"data" yaml:"data"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Risk     risk.Config    `json:"risk" yaml:"risk"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	LogLevel string         `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// DataConfig selects the bar data source. Exactly one of Path or Generate
// is used: a non-empty Path loads CSV (plain, .xz, or a .zip bundle), an
// empty Path synthesizes bars for the generate settings.
type DataConfig struct {
	Path     string   `json:"path,omitempty" yaml:"path,omitempty"`
	Symbols  []string `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Generate Generate `json:"generate,omitempty" yaml:"generate,omitempty"`
}

// Generate configures the synthetic data source.
type Generate struct {
	Regime string `json:"regime,omitempty" yaml:"regime,omitempty"`
	Start  string `json:"start,omitempty" yaml:"start,omitempty"` // YYYY-MM-DD
	End    string `json:"end,omitempty" yaml:"end,omitempty"`     // YYYY-MM-DD
}

// BacktestConfig holds the engine parameters.
type BacktestConfig struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	StartDate      string  `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate        string  `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

// StrategyConfig names a registered strategy and its parameters.
type StrategyConfig struct {
	Name   string            `json:"name" yaml:"name"`
	Params strategies.Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// JournalConfig selects run persistence.
type JournalConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file. YAML is tried
// first, JSON as fallback, matching the file extensions users actually pass.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML for .yaml/.yml paths, JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("backtest.initial_capital must be positive")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if !knownStrategy(c.Strategy.Name) {
		return fmt.Errorf("unknown strategy: %s", c.Strategy.Name)
	}
	for _, field := range []string{c.Backtest.StartDate, c.Backtest.EndDate, c.Data.Generate.Start, c.Data.Generate.End} {
		if field == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", field); err != nil {
			return fmt.Errorf("invalid date %q: %w", field, err)
		}
	}
	if c.Data.Path == "" && len(c.Data.Symbols) == 0 {
		return fmt.Errorf("data.symbols is required when generating data")
	}
	if err := c.Risk.Validate(); err != nil {
		return fmt.Errorf("risk config: %w", err)
	}
	if c.Journal.Enabled && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path required when journal is enabled")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	return nil
}

func knownStrategy(name string) bool {
	for _, n := range strategies.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// ParseDate parses a YYYY-MM-DD config date, returning the zero time for the
// empty string.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

// Default returns a runnable configuration: a generated mixed-regime dataset
// and the moving-average crossover strategy with risk controls off.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Symbols: []string{"AAPL", "MSFT", "GOOG"},
			Generate: Generate{
				Regime: "mixed",
				Start:  "2020-01-01",
				End:    "2023-01-01",
			},
		},
		Backtest: BacktestConfig{
			InitialCapital: 100000,
		},
		Strategy: StrategyConfig{
			Name: "ma-cross",
		},
		Risk:     risk.Disabled(),
		Journal:  JournalConfig{Enabled: false},
		LogLevel: "info",
	}
}
