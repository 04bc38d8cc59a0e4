package defi

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func testPrices() PriceTable {
	return PriceTable{
		Currency: "USD",
		Prices: map[string]decimal.Decimal{
			"ETH":  decimal.NewFromInt(2500),
			"BTC":  decimal.NewFromInt(50000),
			"USDC": decimal.NewFromInt(1),
		},
	}
}

func TestLedger_Valuation(t *testing.T) {
	l := newTestLedger(t, map[string]float64{"ETH": 4, "BTC": 1, "USDC": 40000}, NewFixedRate(1))

	v, err := l.Valuation(testPrices(), "USD")
	if err != nil {
		t.Fatalf("Valuation() error = %v", err)
	}
	if want := M(100000, "USD"); !v.Total.Equal(want) {
		t.Errorf("Valuation().Total = %v, want %v", v.Total, want)
	}
	if got, want := v.Total.String(), "$100,000.00"; got != want {
		t.Errorf("Valuation().Total.String() = %q, want %q", got, want)
	}

	testCases := []struct {
		token  string
		value  float64
		weight Percent
	}{
		{token: "BTC", value: 50000, weight: 50},
		{token: "ETH", value: 10000, weight: 10},
		{token: "USDC", value: 40000, weight: 40},
	}
	if len(v.Positions) != len(testCases) {
		t.Fatalf("len(Positions) = %d, want %d", len(v.Positions), len(testCases))
	}
	for i, tc := range testCases {
		p := v.Positions[i]
		if p.Token != tc.token || !p.Value.Equal(M(tc.value, "USD")) || !p.Weight.Equal(tc.weight) {
			t.Errorf("Positions[%d] = %s %v %v, want %s %v %v", i, p.Token, p.Value, p.Weight, tc.token, tc.value, tc.weight)
		}
	}
}

func TestLedger_Valuation_MissingPrices(t *testing.T) {
	l := newTestLedger(t, map[string]float64{"ETH": 1, "SOL": 3, "DOGE": 10}, NewFixedRate(1))

	_, err := l.Valuation(testPrices(), "USD")
	if err == nil {
		t.Fatal("Valuation() error = nil, want an error")
	}
	for _, token := range []string{"SOL", "DOGE"} {
		if !strings.Contains(err.Error(), token) {
			t.Errorf("Valuation() error = %v, want mentioning %s", err, token)
		}
	}

	if _, err := l.Valuation(testPrices(), "EUR"); err == nil {
		t.Error("Valuation(EUR) error = nil, want an error")
	}
}
