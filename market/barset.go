package market

import (
	"fmt"
	"sort"
	"time"
)

// BarSet holds a validated sequence of bars sorted by (timestamp, symbol).
// It is the read-only input contract of the backtest engine: construction
// validates every bar, and all derived views (filters, prefixes, groups)
// preserve the ordering.
type BarSet struct {
	bars []Bar
}

// NewBarSet validates bars, sorts them by (timestamp, symbol) and returns
// the set. Duplicate (timestamp, symbol) pairs are rejected.
func NewBarSet(bars []Bar) (*BarSet, error) {
	for _, b := range bars {
		if err := b.Validate(); err != nil {
			return nil, err
		}
	}

	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Timestamp.Equal(sorted[i-1].Timestamp) && sorted[i].Symbol == sorted[i-1].Symbol {
			return nil, fmt.Errorf("duplicate bar %s@%s",
				sorted[i].Symbol, sorted[i].Timestamp.Format(time.RFC3339))
		}
	}

	return &BarSet{bars: sorted}, nil
}

// Len returns the number of bars in the set.
func (s *BarSet) Len() int { return len(s.bars) }

// Bars returns the underlying ordered bar slice. Callers must not mutate it.
func (s *BarSet) Bars() []Bar { return s.bars }

// Symbols returns the distinct symbols in the set, sorted.
func (s *BarSet) Symbols() []string {
	seen := make(map[string]struct{})
	for _, b := range s.bars {
		seen[b.Symbol] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Timestamps returns the distinct timestamps in ascending order.
func (s *BarSet) Timestamps() []time.Time {
	var out []time.Time
	for _, b := range s.bars {
		if len(out) == 0 || !out[len(out)-1].Equal(b.Timestamp) {
			out = append(out, b.Timestamp)
		}
	}
	return out
}

// FilterRange returns the subset of bars with start <= timestamp <= end.
func (s *BarSet) FilterRange(start, end time.Time) *BarSet {
	lo := sort.Search(len(s.bars), func(i int) bool {
		return !s.bars[i].Timestamp.Before(start)
	})
	hi := sort.Search(len(s.bars), func(i int) bool {
		return s.bars[i].Timestamp.After(end)
	})
	if lo > hi {
		lo = hi
	}
	return &BarSet{bars: s.bars[lo:hi]}
}

// FilterSymbols returns the subset of bars whose symbol is in symbols.
// An empty filter returns the set unchanged.
func (s *BarSet) FilterSymbols(symbols []string) *BarSet {
	if len(symbols) == 0 {
		return s
	}
	want := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		want[sym] = struct{}{}
	}
	var out []Bar
	for _, b := range s.bars {
		if _, ok := want[b.Symbol]; ok {
			out = append(out, b)
		}
	}
	return &BarSet{bars: out}
}

// At returns the group of bars sharing the given timestamp.
func (s *BarSet) At(ts time.Time) []Bar {
	lo := sort.Search(len(s.bars), func(i int) bool {
		return !s.bars[i].Timestamp.Before(ts)
	})
	hi := lo
	for hi < len(s.bars) && s.bars[hi].Timestamp.Equal(ts) {
		hi++
	}
	return s.bars[lo:hi]
}

// UpTo returns the prefix of bars with timestamp <= ts. The engine passes
// this prefix to strategies so they can never see a future bar.
func (s *BarSet) UpTo(ts time.Time) []Bar {
	hi := sort.Search(len(s.bars), func(i int) bool {
		return s.bars[i].Timestamp.After(ts)
	})
	return s.bars[:hi]
}

// BySymbol extracts the chronological subsequence for one symbol from an
// ordered bar slice, as produced by Bars or UpTo.
func BySymbol(bars []Bar, symbol string) []Bar {
	var out []Bar
	for _, b := range bars {
		if b.Symbol == symbol {
			out = append(out, b)
		}
	}
	return out
}

// SymbolsOf returns the distinct symbols present in an ordered bar slice,
// sorted.
func SymbolsOf(bars []Bar) []string {
	seen := make(map[string]struct{})
	for _, b := range bars {
		seen[b.Symbol] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
