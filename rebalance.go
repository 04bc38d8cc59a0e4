package defi

// rebalance computes the advice for reaching the target allocation.
//
// The total is the raw sum of every balance, in mixed units: 1 BTC and 1 USDC
// add up to 2. This is the historical behavior and is kept as is; use
// Ledger.Valuation for a price-weighted view.
//
// Targets are visited in token order. Held tokens absent from the targets are
// ignored, and a token exactly on target yields no signal.
func rebalance(balances map[string]Quantity, targets Allocation) (Quantity, []Signal) {
	var total Quantity
	for _, q := range balances {
		total = total.Add(q)
	}

	var signals []Signal
	for token, fraction := range targets.Sorted() {
		target := total.Mul(fraction)
		current := balances[token]
		s := Signal{Token: token, Current: current, Target: target, Fraction: PercentOf(fraction)}
		switch {
		case current.LessThan(target):
			s.Action, s.Amount = Acquire, target.Sub(current)
		case current.GreaterThan(target):
			s.Action, s.Amount = Reduce, current.Sub(target)
		default:
			continue
		}
		signals = append(signals, s)
	}
	return total, signals
}
