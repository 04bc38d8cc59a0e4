package defi

import (
	"fmt"
)

// Result is the outcome of one operation executed on a Ledger.
type Result struct {
	ID        string      // unique id of this execution.
	Seq       int         // position in the ledger history, starting at 1.
	Actor     string      // the ledger's actor.
	Command   CommandType // the command type of the operation.
	Operation Operation   // the validated operation, with resolved fields.
	OK        bool        // false when the operation was rejected.
	Message   string      // human readable status.
	Changes   []Change    // balance changes, in order of first appearance.
	Signals   []Signal    // rebalancing advice, only for rebalance.
}

// MarshalJSON implements the json.Marshaler interface for Result.
func (r Result) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", r.ID)
	w.Append("seq", r.Seq)
	w.Optional("actor", r.Actor)
	w.Append("command", r.Command)
	w.Append("ok", r.OK)
	w.Append("message", r.Message)
	if r.Operation != nil {
		w.Append("operation", r.Operation)
	}
	w.Optional("changes", r.Changes)
	w.Optional("signals", r.Signals)
	return w.MarshalJSON()
}

// SignalAction is the direction of a rebalancing signal.
type SignalAction string

const (
	Acquire SignalAction = "acquire"
	Reduce  SignalAction = "reduce"
)

// Signal is one line of rebalancing advice.
type Signal struct {
	Token    string       `json:"token"`
	Action   SignalAction `json:"action"`
	Amount   Quantity     `json:"amount"`  // always positive.
	Current  Quantity     `json:"current"` // balance at the time of the advice.
	Target   Quantity     `json:"target"`  // total * Fraction.
	Fraction Percent      `json:"fraction"`
}

func (s Signal) String() string {
	switch s.Action {
	case Acquire:
		return fmt.Sprintf("Need to acquire %s more %s.", s.Amount.StringFixed(2), s.Token)
	case Reduce:
		return fmt.Sprintf("Consider reducing %s %s.", s.Amount.StringFixed(2), s.Token)
	}
	return fmt.Sprintf("%s %s %s.", s.Action, s.Amount.StringFixed(2), s.Token)
}
