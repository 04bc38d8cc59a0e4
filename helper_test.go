package defi

import (
	"log/slog"
	"testing"
)

// testActor is the actor of the reference demonstration.
const testActor = "0xABCDEF123456"

// balances is a helper for test to create a balance sheet from consts.
func balances(kv map[string]float64) map[string]Quantity {
	b := make(map[string]Quantity, len(kv))
	for token, v := range kv {
		b[token] = Q(v)
	}
	return b
}

// newTestLedger creates a ledger with default targets and a discarded log.
func newTestLedger(t *testing.T, initial map[string]float64, rates ExchangeRateProvider) *Ledger {
	t.Helper()
	l, err := NewLedger(testActor, balances(initial), rates, DefaultTargets())
	if err != nil {
		t.Fatalf("NewLedger() error = %v", err)
	}
	l.SetLogger(slog.New(slog.DiscardHandler))
	return l
}

// assertBalance fails when the ledger balance of 'token' is not 'want'.
func assertBalance(t *testing.T, l *Ledger, token string, want float64) {
	t.Helper()
	if got := l.Balance(token); !got.Equal(Q(want)) {
		t.Errorf("Balance(%q) = %v, want %v", token, got, want)
	}
}
