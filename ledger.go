package defi

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Ledger holds the token balances and governance votes of one actor.
//
// Every operation is all-or-nothing: preconditions are checked against the
// current state, and only then are the planned events applied. A Ledger is
// safe for concurrent use; operations are serialized.
type Ledger struct {
	actor   string
	rates   ExchangeRateProvider
	targets AllocationProvider

	mu sync.Mutex
	state
	history   []Result
	observers []func(Result)
	logger    *slog.Logger
}

// NewLedger creates a ledger for 'actor' with an initial balance sheet.
//
// Balances must be non-negative and keyed by a non-empty token symbol. The
// initial map is copied.
func NewLedger(actor string, initial map[string]Quantity, rates ExchangeRateProvider, targets AllocationProvider) (*Ledger, error) {
	var errs error
	if rates == nil {
		errs = errors.Join(errs, errors.New("missing exchange rate provider"))
	}
	if targets == nil {
		errs = errors.Join(errs, errors.New("missing allocation provider"))
	}
	for token, q := range initial {
		if token == "" {
			errs = errors.Join(errs, fmt.Errorf("empty token symbol with balance %s", q))
		}
		if q.IsNegative() {
			errs = errors.Join(errs, fmt.Errorf("negative initial balance %s %s", q, token))
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("invalid ledger: %w", errs)
	}

	balances := make(map[string]Quantity, len(initial))
	maps.Copy(balances, initial)
	return &Ledger{
		actor:   actor,
		rates:   rates,
		targets: targets,
		state: state{
			balances: balances,
			votes:    make(map[string]string),
		},
	}, nil
}

// Actor returns the identity the ledger acts for.
func (l *Ledger) Actor() string { return l.actor }

// SetLogger sets the logger used to report operations. Defaults to slog.Default().
func (l *Ledger) SetLogger(logger *slog.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = logger
}

func (l *Ledger) log() *slog.Logger {
	if l.logger == nil {
		return slog.Default()
	}
	return l.logger
}

// Observe registers a function called with every Result, after the operation
// is complete and the ledger unlocked.
func (l *Ledger) Observe(f func(Result)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, f)
}

// balance reads a balance without locking; absent tokens read as zero.
func (l *Ledger) balance(token string) Quantity {
	return l.balances[token]
}

// Balance returns the balance of a token, zero when the token was never held.
func (l *Ledger) Balance(token string) Quantity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance(token)
}

// Vote returns the recorded vote on a proposal.
func (l *Ledger) Vote(proposal string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.votes[proposal]
	return v, ok
}

// Snapshot returns a deep copy of the balances and votes.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Balances: maps.Clone(l.balances),
		Votes:    maps.Clone(l.votes),
	}
}

// History returns an iterator over every executed operation, rejected ones
// included, in execution order.
func (l *Ledger) History() iter.Seq[Result] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Values(slices.Clone(l.history))
}

// Execute validates and applies a single operation.
//
// When a precondition fails, the returned error wraps ErrPrecondition, the
// Result is not OK, and the ledger is left untouched.
func (l *Ledger) Execute(op Operation) (Result, error) {
	if op == nil {
		return Result{}, errors.New("nil operation")
	}
	res, observers, err := l.execute(op)
	for _, f := range observers {
		f(res)
	}
	return res, err
}

func (l *Ledger) execute(op Operation) (Result, []func(Result), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := Result{
		ID:        uuid.NewString(),
		Seq:       len(l.history) + 1,
		Actor:     l.actor,
		Command:   op.What(),
		Operation: op,
	}

	valid, err := op.validate(l)
	res.Operation = valid
	if err != nil {
		res.Message = err.Error()
		l.history = append(l.history, res)
		l.log().Info("operation rejected", "id", res.ID, "command", res.Command, "actor", l.actor, "error", err)
		return res, slices.Clone(l.observers), err
	}

	var j changeJournal
	for _, e := range valid.plan() {
		e.apply(&l.state, &j)
	}
	res.OK = true
	res.Message = valid.describe()
	res.Changes = j.changes
	if r, ok := valid.(Rebalance); ok {
		res.Signals = r.Signals
	}
	l.history = append(l.history, res)
	l.log().Debug("operation applied", "id", res.ID, "command", res.Command, "actor", l.actor, "changes", len(res.Changes))
	return res, slices.Clone(l.observers), nil
}

// Transact sends 'amount' of 'token' to 'recipient'.
func (l *Ledger) Transact(token string, amount Quantity, recipient string) (Result, error) {
	return l.Execute(NewTransact(token, amount, recipient))
}

// SwapTokens exchanges 'amount' of 'in' for 'out' at the provider's rate.
func (l *Ledger) SwapTokens(in, out string, amount Quantity) (Result, error) {
	return l.Execute(NewSwap(in, out, amount))
}

// ProvideLiquidity deposits both legs into 'pool', or neither.
func (l *Ledger) ProvideLiquidity(pool, tokenA, tokenB string, amountA, amountB Quantity) (Result, error) {
	return l.Execute(NewProvideLiquidity(pool, tokenA, tokenB, amountA, amountB))
}

// RebalancePortfolio reports how to reach the target allocation. It never
// mutates the balances.
func (l *Ledger) RebalancePortfolio() (Result, error) {
	return l.Execute(NewRebalance())
}

// ParticipateInGovernance records 'vote' on 'proposal', replacing any
// earlier vote.
func (l *Ledger) ParticipateInGovernance(proposal, vote string) (Result, error) {
	return l.Execute(NewVote(proposal, vote))
}

// FacilitateLendingBorrowing lends or borrows 'amount' of 'token'. Action is
// "lend" or "borrow"; anything else is rejected.
func (l *Ledger) FacilitateLendingBorrowing(token string, amount Quantity, action string) (Result, error) {
	return l.Execute(NewLending(token, amount, LendingAction(action)))
}
