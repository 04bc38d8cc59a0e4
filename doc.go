// Package defi simulates the token holdings of a single actor and the handful
// of operations that change them. It is a closed-form ledger: it never talks to
// a blockchain, a wallet or a live price feed.
//
// The core pieces are:
//   - Ledger: the balance sheet (token symbol to quantity) and the governance
//     vote record, guarded so that every operation is all-or-nothing.
//   - Operations: Transact, Swap, ProvideLiquidity, Rebalance, Vote and
//     Lending. Each one validates its preconditions against the ledger before
//     any balance moves.
//   - Collaborators: an ExchangeRateProvider for swaps and an
//     AllocationProvider for rebalancing advice. Both are injected so that a
//     simulation can be replayed deterministically.
//   - Results: every operation reports a Result (success flag, status message
//     and balance changes) rather than printing anything. Rendering is left to
//     the renderer package and the command-line tool.
//
// This package is the foundation of the `defi` command-line tool.
package defi
