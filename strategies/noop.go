package strategies

import (
	"quantlab/market"
	"quantlab/portfolio"
)

func init() {
	Register("noop", func(Params) Strategy { return Noop{} })
}

// Noop emits no orders. Useful as a baseline run.
type Noop struct{}

func (Noop) Name() string { return "Noop" }

func (Noop) GenerateSignals([]market.Bar, *portfolio.Portfolio) []*portfolio.Order {
	return nil
}
