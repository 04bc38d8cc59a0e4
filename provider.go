package defi

import (
	"fmt"
	"iter"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
)

// ExchangeRateProvider quotes how many units of 'out' one unit of 'in' buys.
//
// The rate must be positive. Implementations may fail, in which case the swap
// asking for it is rejected.
type ExchangeRateProvider interface {
	Rate(in, out string) (decimal.Decimal, error)
}

// RateFunc adapts a plain function to an ExchangeRateProvider.
type RateFunc func(in, out string) (decimal.Decimal, error)

func (f RateFunc) Rate(in, out string) (decimal.Decimal, error) { return f(in, out) }

// FixedRate quotes the same rate for every pair.
type FixedRate decimal.Decimal

// NewFixedRate returns a FixedRate from any numeric value.
func NewFixedRate[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](rate T) FixedRate {
	return FixedRate(newDecimal(rate))
}

func (r FixedRate) Rate(_, _ string) (decimal.Decimal, error) { return decimal.Decimal(r), nil }

// Pair identifies a directed token pair.
type Pair struct {
	In, Out string
}

func (p Pair) String() string { return p.In + "/" + p.Out }

// RateTable quotes rates from a fixed table. When only the reverse pair is
// known its inverse is used.
type RateTable map[Pair]decimal.Decimal

func (t RateTable) Rate(in, out string) (decimal.Decimal, error) {
	if r, ok := t[Pair{in, out}]; ok {
		return r, nil
	}
	if r, ok := t[Pair{out, in}]; ok && !r.IsZero() {
		return decimal.NewFromInt(1).DivRound(r, 18), nil
	}
	return decimal.Zero, fmt.Errorf("no rate for %s", Pair{in, out})
}

// UniformRate draws every rate uniformly from [Min, Max).
//
// The random source is injected so that a simulation can be replayed.
type UniformRate struct {
	Min, Max float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewUniformRate returns the reference rate source, drawing from [0.9, 1.1)
// with a deterministic source seeded by 'seed'.
func NewUniformRate(seed uint64) *UniformRate {
	return NewUniformRateFrom(rand.New(rand.NewPCG(seed, seed)), 0.9, 1.1)
}

// NewUniformRateFrom returns a UniformRate over [lo, hi) using 'rnd'.
func NewUniformRateFrom(rnd *rand.Rand, lo, hi float64) *UniformRate {
	return &UniformRate{Min: lo, Max: hi, rnd: rnd}
}

func (u *UniformRate) Rate(_, _ string) (decimal.Decimal, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return decimal.NewFromFloat(u.Min + u.rnd.Float64()*(u.Max-u.Min)), nil
}

// Allocation maps a token symbol to its target fraction of the portfolio.
//
// Fractions are not required to sum to 1.
type Allocation map[string]decimal.Decimal

// Sorted returns an iterator over the allocation in token order.
func (a Allocation) Sorted() iter.Seq2[string, decimal.Decimal] {
	keys := slices.Sorted(maps.Keys(a))
	return func(yield func(string, decimal.Decimal) bool) {
		for _, key := range keys {
			if !yield(key, a[key]) {
				return
			}
		}
	}
}

// AllocationProvider supplies the target allocation used for rebalancing advice.
type AllocationProvider interface {
	Targets() Allocation
}

// StaticTargets is an AllocationProvider returning a fixed table.
type StaticTargets Allocation

func (s StaticTargets) Targets() Allocation { return maps.Clone(Allocation(s)) }

// DefaultTargets returns the reference allocation: ETH 50%, BTC 30%, USDC 20%.
func DefaultTargets() StaticTargets {
	return StaticTargets{
		"ETH":  decimal.RequireFromString("0.5"),
		"BTC":  decimal.RequireFromString("0.3"),
		"USDC": decimal.RequireFromString("0.2"),
	}
}
