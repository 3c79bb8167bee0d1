// Package strategies defines the signal-generation contract of the backtest
// engine and a registry of named strategy variants.
package strategies

import (
	"fmt"
	"sort"

	"quantlab/market"
	"quantlab/portfolio"
)

// Params carries the numeric parameters of a strategy preset. Constructors
// fall back to their documented defaults for missing keys.
type Params map[string]float64

func (p Params) get(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Strategy generates candidate orders from the bar history visible at the
// current timestamp. The engine only ever passes the prefix of history at or
// before "now", so an implementation cannot look ahead. A strategy emits at
// most one order per symbol per bar: enter when not holding, exit when
// holding, never both.
type Strategy interface {
	Name() string
	GenerateSignals(bars []market.Bar, pf *portfolio.Portfolio) []*portfolio.Order
}

// Constructor builds a strategy from preset parameters.
type Constructor func(Params) Strategy

var registry = map[string]Constructor{}

// Register adds a named constructor to the registry. Called from init.
func Register(key string, ctor Constructor) {
	registry[key] = ctor
}

// New builds the strategy registered under key.
func New(key string, params Params) (Strategy, error) {
	ctor, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %v)", key, Names())
	}
	return ctor(params), nil
}

// Names returns the registered strategy keys, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for key := range registry {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// defaultPositionSize allocates a fixed fraction of current equity to each
// new entry. Variants may override with their own sizing.
const defaultSizeFraction = 0.20

func positionSize(price float64, pf *portfolio.Portfolio) float64 {
	if price <= 0 {
		return 0
	}
	return pf.Equity() * defaultSizeFraction / price
}

func closesOf(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
