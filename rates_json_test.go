package defi

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestJSONRates(t *testing.T) {
	const doc = `{
		"rates": {
			"USDC": {"ETH": 0.0004, "BTC": "0.00002"},
			"ETH": {"BTC": 0.05}
		},
		"quotes": [
			{"pair": "DAI/USDC", "rate": 1.001}
		]
	}`

	testCases := []struct {
		name    string
		path    string
		in, out string
		want    string
		wantErr bool
	}{
		{name: "number", in: "USDC", out: "ETH", want: "0.0004"},
		{name: "numeric string", in: "USDC", out: "BTC", want: "0.00002"},
		{name: "inverse", in: "BTC", out: "ETH", want: "20"},
		{name: "missing", in: "SOL", out: "ETH", wantErr: true},
		{
			name: "filter expression",
			path: `$.quotes[?(@.pair == "%s/%s")].rate`,
			in:   "DAI", out: "USDC",
			want: "1.001",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rates, err := DecodeJSONRates(strings.NewReader(doc), tc.path)
			if err != nil {
				t.Fatalf("DecodeJSONRates() error = %v", err)
			}
			got, err := rates.Rate(tc.in, tc.out)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Rate() = %v, want an error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Rate() error = %v", err)
			}
			if want := decimal.RequireFromString(tc.want); !got.Equal(want) {
				t.Errorf("Rate() = %v, want %v", got, want)
			}
		})
	}
}

func TestJSONRates_Swap(t *testing.T) {
	rates, err := DecodeJSONRates(strings.NewReader(`{"rates":{"USDC":{"ETH":0.5}}}`), "")
	if err != nil {
		t.Fatalf("DecodeJSONRates() error = %v", err)
	}
	l := newTestLedger(t, map[string]float64{"USDC": 1000}, rates)
	if _, err := l.SwapTokens("USDC", "ETH", Q(100)); err != nil {
		t.Fatalf("SwapTokens() error = %v", err)
	}
	assertBalance(t, l, "ETH", 50)
	assertBalance(t, l, "USDC", 900)
}

func TestDecodeJSONRates_Invalid(t *testing.T) {
	if _, err := DecodeJSONRates(strings.NewReader(`{"rates":`), ""); err == nil {
		t.Error("DecodeJSONRates() error = nil, want an error")
	}
}
