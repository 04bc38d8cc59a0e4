package defi

import (
	"iter"
	"maps"
	"slices"
)

// Snapshot is a deep copy of a ledger state at a single point in time.
type Snapshot struct {
	Balances map[string]Quantity
	Votes    map[string]string
}

// Tokens returns an iterator over the held tokens in sorted order.
func (s Snapshot) Tokens() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(s.Balances)))
}

// Proposals returns an iterator over the voted proposals in sorted order.
func (s Snapshot) Proposals() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(s.Votes)))
}

// Equal reports whether both snapshots hold the same entries. A zero balance
// entry differs from an absent one.
func (s Snapshot) Equal(o Snapshot) bool {
	return maps.EqualFunc(s.Balances, o.Balances, Quantity.Equal) && maps.Equal(s.Votes, o.Votes)
}
