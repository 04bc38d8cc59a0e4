package defi

import (
	"errors"
	"fmt"
)

// ErrPrecondition is the root of every rejected operation. A rejected operation
// never mutates the ledger.
var ErrPrecondition = errors.New("precondition failure")

// Reasons for a precondition failure.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAction       = errors.New("invalid action")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidToken        = errors.New("token symbol is missing")
	ErrRateUnavailable     = errors.New("exchange rate unavailable")
)

// PreconditionError reports why an operation was rejected.
//
// errors.Is matches both ErrPrecondition and the Reason.
type PreconditionError struct {
	Command CommandType
	Reason  error
	Message string // human readable status, as reported in the Result.
}

func (e *PreconditionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Reason)
}

func (e *PreconditionError) Unwrap() error { return e.Reason }

func (e *PreconditionError) Is(target error) bool { return target == ErrPrecondition }

// reject builds a PreconditionError with a formatted status message.
func reject(cmd CommandType, reason error, format string, args ...any) error {
	return &PreconditionError{Command: cmd, Reason: reason, Message: fmt.Sprintf(format, args...)}
}
