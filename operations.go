package defi

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CommandType is a typed string for identifying operations.
type CommandType string

// Command types used for identifying operations.
const (
	CmdTransact         CommandType = "transact"
	CmdSwap             CommandType = "swap"
	CmdProvideLiquidity CommandType = "provide-liquidity"
	CmdRebalance        CommandType = "rebalance"
	CmdVote             CommandType = "vote"
	CmdLending          CommandType = "lending"
)

// Operation is one of the state transitions a Ledger knows how to apply.
//
// The set is closed: Transact, Swap, ProvideLiquidity, Rebalance, Vote and
// Lending.
type Operation interface {
	What() CommandType // What returns the command type of the operation (e.g., "swap").
	Equal(Operation) bool

	// validate checks the preconditions against the ledger and returns a copy
	// with resolved fields (like the swap rate). It must not mutate the ledger.
	validate(l *Ledger) (Operation, error)
	// plan returns the atomic events of a validated operation.
	plan() []event
	// describe returns the status message of a validated operation.
	describe() string
}

type baseCmd struct {
	Command CommandType `json:"command"`        // Command specifies the type of operation.
	Memo    string      `json:"memo,omitempty"` // Memo provides an optional rationale or note.
}

// What returns the command name of the operation.
func (t baseCmd) What() CommandType {
	return t.Command
}

// Rationale returns the memo associated with the operation.
func (t baseCmd) Rationale() string {
	return t.Memo
}

// MarshalJSON implements the json.Marshaler interface for baseCmd.
func (t baseCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", t.Command)
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// checkMove validates the token and amount shared by every balance move.
func checkMove(cmd CommandType, token string, amount Quantity) error {
	if token == "" {
		return reject(cmd, ErrInvalidToken, "Missing token to %s.", cmd)
	}
	if !amount.IsPositive() {
		return reject(cmd, ErrInvalidAmount, "Cannot %s %s %s: amount must be positive.", cmd, amount, token)
	}
	return nil
}

// --- Transact ---

// Transact sends tokens to a recipient.
//
// Only the sender side is modeled: the amount leaves the ledger and the
// recipient is never credited anywhere.
type Transact struct {
	baseCmd
	Token     string   `json:"token"`
	Amount    Quantity `json:"amount"`
	Recipient string   `json:"recipient"`
}

// NewTransact creates a new Transact operation.
func NewTransact(token string, amount Quantity, recipient string) Transact {
	return Transact{
		baseCmd:   baseCmd{Command: CmdTransact},
		Token:     token,
		Amount:    amount,
		Recipient: recipient,
	}
}

// MarshalJSON implements the json.Marshaler interface for Transact.
func (t Transact) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("token", t.Token)
	w.Append("amount", t.Amount)
	w.Append("recipient", t.Recipient)
	return w.MarshalJSON()
}

func (t Transact) Equal(other Operation) bool {
	o, ok := other.(Transact)
	return ok && t.baseCmd == o.baseCmd && t.Token == o.Token && t.Amount.Equal(o.Amount) && t.Recipient == o.Recipient
}

func (t Transact) validate(l *Ledger) (Operation, error) {
	if err := checkMove(CmdTransact, t.Token, t.Amount); err != nil {
		return t, err
	}
	if l.balance(t.Token).LessThan(t.Amount) {
		return t, reject(CmdTransact, ErrInsufficientBalance, "Insufficient %s balance to transact %s.", t.Token, t.Amount)
	}
	return t, nil
}

func (t Transact) plan() []event {
	return []event{debitToken{token: t.Token, amount: t.Amount}}
}

func (t Transact) describe() string {
	return fmt.Sprintf("Transacting %s %s to %s.", t.Amount, t.Token, t.Recipient)
}

// --- Swap ---

// Swap exchanges an amount of one token for another at the rate quoted by the
// ledger's ExchangeRateProvider.
type Swap struct {
	baseCmd
	In     string   `json:"in"`
	Out    string   `json:"out"`
	Amount Quantity `json:"amount"`

	// Resolved during validation.
	Rate     decimal.Decimal `json:"rate"`
	Received Quantity        `json:"received"`
}

// NewSwap creates a new Swap operation.
func NewSwap(in, out string, amount Quantity) Swap {
	return Swap{
		baseCmd: baseCmd{Command: CmdSwap},
		In:      in,
		Out:     out,
		Amount:  amount,
	}
}

// MarshalJSON implements the json.Marshaler interface for Swap.
func (t Swap) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("in", t.In)
	w.Append("out", t.Out)
	w.Append("amount", t.Amount)
	if !t.Rate.IsZero() {
		w.Append("rate", t.Rate)
		w.Append("received", t.Received)
	}
	return w.MarshalJSON()
}

// Equal compares the requested swap, not the resolved rate.
func (t Swap) Equal(other Operation) bool {
	o, ok := other.(Swap)
	return ok && t.baseCmd == o.baseCmd && t.In == o.In && t.Out == o.Out && t.Amount.Equal(o.Amount)
}

func (t Swap) validate(l *Ledger) (Operation, error) {
	if err := checkMove(CmdSwap, t.In, t.Amount); err != nil {
		return t, err
	}
	if t.Out == "" {
		return t, reject(CmdSwap, ErrInvalidToken, "Missing token to swap %s into.", t.In)
	}
	if l.balance(t.In).LessThan(t.Amount) {
		return t, reject(CmdSwap, ErrInsufficientBalance, "Insufficient %s balance to swap %s.", t.In, t.Amount)
	}
	rate, err := l.rates.Rate(t.In, t.Out)
	if err != nil {
		return t, reject(CmdSwap, ErrRateUnavailable, "No exchange rate from %s to %s: %v.", t.In, t.Out, err)
	}
	if !rate.IsPositive() {
		return t, reject(CmdSwap, ErrRateUnavailable, "Invalid exchange rate from %s to %s: %s.", t.In, t.Out, rate)
	}
	t.Rate = rate
	t.Received = t.Amount.Mul(rate)
	return t, nil
}

func (t Swap) plan() []event {
	return []event{
		debitToken{token: t.In, amount: t.Amount},
		creditToken{token: t.Out, amount: t.Received},
	}
}

func (t Swap) describe() string {
	return fmt.Sprintf("Swapping %s %s for %s %s.", t.Amount, t.In, t.Received.StringFixed(2), t.Out)
}

// --- ProvideLiquidity ---

// ProvideLiquidity deposits two legs into a pool.
//
// The pool is attribution only: no pool reserve or LP share is tracked.
type ProvideLiquidity struct {
	baseCmd
	Pool    string   `json:"pool"`
	TokenA  string   `json:"tokenA"`
	AmountA Quantity `json:"amountA"`
	TokenB  string   `json:"tokenB"`
	AmountB Quantity `json:"amountB"`
}

// NewProvideLiquidity creates a new ProvideLiquidity operation.
func NewProvideLiquidity(pool, tokenA, tokenB string, amountA, amountB Quantity) ProvideLiquidity {
	return ProvideLiquidity{
		baseCmd: baseCmd{Command: CmdProvideLiquidity},
		Pool:    pool,
		TokenA:  tokenA,
		AmountA: amountA,
		TokenB:  tokenB,
		AmountB: amountB,
	}
}

// MarshalJSON implements the json.Marshaler interface for ProvideLiquidity.
func (t ProvideLiquidity) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("pool", t.Pool)
	w.Append("tokenA", t.TokenA)
	w.Append("amountA", t.AmountA)
	w.Append("tokenB", t.TokenB)
	w.Append("amountB", t.AmountB)
	return w.MarshalJSON()
}

func (t ProvideLiquidity) Equal(other Operation) bool {
	o, ok := other.(ProvideLiquidity)
	return ok && t.baseCmd == o.baseCmd && t.Pool == o.Pool &&
		t.TokenA == o.TokenA && t.AmountA.Equal(o.AmountA) &&
		t.TokenB == o.TokenB && t.AmountB.Equal(o.AmountB)
}

// validate checks both legs before anything is debited. When both legs are
// the same token, the combined amount must be covered.
func (t ProvideLiquidity) validate(l *Ledger) (Operation, error) {
	if err := checkMove(CmdProvideLiquidity, t.TokenA, t.AmountA); err != nil {
		return t, err
	}
	if err := checkMove(CmdProvideLiquidity, t.TokenB, t.AmountB); err != nil {
		return t, err
	}
	needA, needB := t.AmountA, t.AmountB
	if t.TokenA == t.TokenB {
		needA = needA.Add(needB)
		needB = needA
	}
	if l.balance(t.TokenA).LessThan(needA) || l.balance(t.TokenB).LessThan(needB) {
		return t, reject(CmdProvideLiquidity, ErrInsufficientBalance,
			"Insufficient balance to provide liquidity with %s %s and %s %s.", t.AmountA, t.TokenA, t.AmountB, t.TokenB)
	}
	return t, nil
}

func (t ProvideLiquidity) plan() []event {
	return []event{
		debitToken{token: t.TokenA, amount: t.AmountA},
		debitToken{token: t.TokenB, amount: t.AmountB},
	}
}

func (t ProvideLiquidity) describe() string {
	return fmt.Sprintf("Providing liquidity to %s with %s %s and %s %s.", t.Pool, t.AmountA, t.TokenA, t.AmountB, t.TokenB)
}

// --- Rebalance ---

// Rebalance compares the holdings with the target allocation and reports what
// to acquire or reduce. It never moves any balance.
type Rebalance struct {
	baseCmd

	// Resolved during validation.
	Total   Quantity `json:"total"`
	Signals []Signal `json:"signals,omitempty"`
}

// NewRebalance creates a new Rebalance operation.
func NewRebalance() Rebalance {
	return Rebalance{baseCmd: baseCmd{Command: CmdRebalance}}
}

// MarshalJSON implements the json.Marshaler interface for Rebalance.
func (t Rebalance) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	if len(t.Signals) > 0 {
		w.Append("total", t.Total)
		w.Append("signals", t.Signals)
	}
	return w.MarshalJSON()
}

func (t Rebalance) Equal(other Operation) bool {
	o, ok := other.(Rebalance)
	return ok && t.baseCmd == o.baseCmd
}

func (t Rebalance) validate(l *Ledger) (Operation, error) {
	t.Total, t.Signals = rebalance(l.balances, l.targets.Targets())
	return t, nil
}

func (t Rebalance) plan() []event { return nil }

func (t Rebalance) describe() string {
	var b strings.Builder
	b.WriteString("Rebalancing portfolio...")
	for _, s := range t.Signals {
		b.WriteString("\n")
		b.WriteString(s.String())
	}
	return b.String()
}

// --- Vote ---

// Vote records a governance vote. A later vote on the same proposal replaces
// the earlier one. Neither the proposal nor the choice is validated.
type Vote struct {
	baseCmd
	Proposal string `json:"proposal"`
	Choice   string `json:"vote"`
}

// NewVote creates a new Vote operation.
func NewVote(proposal, choice string) Vote {
	return Vote{
		baseCmd:  baseCmd{Command: CmdVote},
		Proposal: proposal,
		Choice:   choice,
	}
}

// MarshalJSON implements the json.Marshaler interface for Vote.
func (t Vote) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("proposal", t.Proposal)
	w.Append("vote", t.Choice)
	return w.MarshalJSON()
}

func (t Vote) Equal(other Operation) bool {
	o, ok := other.(Vote)
	return ok && t == o
}

func (t Vote) validate(*Ledger) (Operation, error) { return t, nil }

func (t Vote) plan() []event {
	return []event{castVote{proposal: t.Proposal, choice: t.Choice}}
}

func (t Vote) describe() string {
	return fmt.Sprintf("Voting %s on proposal %s.", t.Choice, t.Proposal)
}

// --- Lending ---

// LendingAction selects the side of a Lending operation.
type LendingAction string

const (
	// Lend moves tokens out of the ledger to a lending market.
	Lend LendingAction = "lend"
	// Borrow credits tokens with no collateral check and no debt tracking.
	Borrow LendingAction = "borrow"
)

// Lending lends or borrows an amount of a token.
//
// The action is kept as given so that an unknown one can be reported as a
// rejected operation rather than a decoding error.
type Lending struct {
	baseCmd
	Token  string        `json:"token"`
	Amount Quantity      `json:"amount"`
	Action LendingAction `json:"action"`
}

// NewLending creates a new Lending operation.
func NewLending(token string, amount Quantity, action LendingAction) Lending {
	return Lending{
		baseCmd: baseCmd{Command: CmdLending},
		Token:   token,
		Amount:  amount,
		Action:  action,
	}
}

// MarshalJSON implements the json.Marshaler interface for Lending.
func (t Lending) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("token", t.Token)
	w.Append("amount", t.Amount)
	w.Append("action", t.Action)
	return w.MarshalJSON()
}

func (t Lending) Equal(other Operation) bool {
	o, ok := other.(Lending)
	return ok && t.baseCmd == o.baseCmd && t.Token == o.Token && t.Amount.Equal(o.Amount) && t.Action == o.Action
}

func (t Lending) validate(l *Ledger) (Operation, error) {
	switch t.Action {
	case Lend, Borrow:
	default:
		return t, reject(CmdLending, ErrInvalidAction, "Invalid action: %s.", t.Action)
	}
	if err := checkMove(CmdLending, t.Token, t.Amount); err != nil {
		return t, err
	}
	if t.Action == Lend && l.balance(t.Token).LessThan(t.Amount) {
		return t, reject(CmdLending, ErrInsufficientBalance, "Insufficient %s balance to lend %s.", t.Token, t.Amount)
	}
	return t, nil
}

func (t Lending) plan() []event {
	if t.Action == Borrow {
		return []event{creditToken{token: t.Token, amount: t.Amount}}
	}
	return []event{debitToken{token: t.Token, amount: t.Amount}}
}

func (t Lending) describe() string {
	if t.Action == Borrow {
		return fmt.Sprintf("Borrowing %s %s.", t.Amount, t.Token)
	}
	return fmt.Sprintf("Lending %s %s.", t.Amount, t.Token)
}
