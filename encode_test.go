package defi

import (
	"bytes"
	"strings"
	"testing"
)

func TestDecodeOperations(t *testing.T) {
	script := `{"command":"transact","token":"ETH","amount":0.5,"recipient":"0xRecipientAddress"}
{"command":"swap","in":"USDC","out":"ETH","amount":"500"}

{"command":"provide-liquidity","pool":"ETH-USDC","tokenA":"ETH","amountA":1,"tokenB":"USDC","amountB":500}
{"command":"rebalance","memo":"weekly"}
{"command":"vote","proposal":"123","vote":"YES"}
{"command":"lending","token":"USDC","amount":200,"action":"lend"}
`
	ops, err := DecodeOperations(strings.NewReader(script))
	if err != nil {
		t.Fatalf("DecodeOperations() error = %v", err)
	}

	want := []Operation{
		NewTransact("ETH", Q(0.5), "0xRecipientAddress"),
		NewSwap("USDC", "ETH", Q(500)),
		NewProvideLiquidity("ETH-USDC", "ETH", "USDC", Q(1), Q(500)),
		Rebalance{baseCmd: baseCmd{Command: CmdRebalance, Memo: "weekly"}},
		NewVote("123", "YES"),
		NewLending("USDC", Q(200), Lend),
	}
	if len(ops) != len(want) {
		t.Fatalf("DecodeOperations() returned %d operations, want %d", len(ops), len(want))
	}
	for i := range want {
		if !ops[i].Equal(want[i]) {
			t.Errorf("DecodeOperations()[%d] = %#v, want %#v", i, ops[i], want[i])
		}
	}
}

func TestDecodeOperations_Errors(t *testing.T) {
	script := `{"command":"transact","token":"ETH","amount":1,"recipient":"X"}
{"command":"stake","token":"ETH"}
not json
{"token":"ETH"}
{"command":"swap","in":"USDC","out":"ETH","amount":"lots"}
`
	_, err := DecodeOperations(strings.NewReader(script))
	if err == nil {
		t.Fatal("DecodeOperations() error = nil, want an error")
	}
	for _, want := range []string{"line 2", "line 3", "line 4", "line 5", `unknown command "stake"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("DecodeOperations() error = %v, want containing %q", err, want)
		}
	}
	if strings.Contains(err.Error(), "line 1") {
		t.Errorf("DecodeOperations() error = %v, line 1 is valid", err)
	}
}

func TestEncodeOperation(t *testing.T) {
	testCases := []struct {
		name string
		op   Operation
		want string
	}{
		{
			name: "transact",
			op:   NewTransact("ETH", Q(0.5), "0xRecipientAddress"),
			want: `{"command":"transact","token":"ETH","amount":0.5,"recipient":"0xRecipientAddress"}`,
		},
		{
			name: "swap",
			op:   NewSwap("USDC", "ETH", Q(500)),
			want: `{"command":"swap","in":"USDC","out":"ETH","amount":500}`,
		},
		{
			name: "provide liquidity",
			op:   NewProvideLiquidity("ETH-USDC", "ETH", "USDC", Q(1), Q(500)),
			want: `{"command":"provide-liquidity","pool":"ETH-USDC","tokenA":"ETH","amountA":1,"tokenB":"USDC","amountB":500}`,
		},
		{
			name: "rebalance",
			op:   NewRebalance(),
			want: `{"command":"rebalance"}`,
		},
		{
			name: "vote",
			op:   Vote{baseCmd: baseCmd{Command: CmdVote, Memo: "community call"}, Proposal: "123", Choice: "YES"},
			want: `{"command":"vote","memo":"community call","proposal":"123","vote":"YES"}`,
		},
		{
			name: "lending",
			op:   NewLending("BTC", Q(5), Borrow),
			want: `{"command":"lending","token":"BTC","amount":5,"action":"borrow"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeOperation(&buf, tc.op); err != nil {
				t.Fatalf("EncodeOperation() error = %v", err)
			}
			if got := buf.String(); got != tc.want+"\n" {
				t.Errorf("EncodeOperation() = %s, want %s", got, tc.want)
			}

			// What is encoded can be decoded back.
			ops, err := DecodeOperations(&buf)
			if err != nil {
				t.Fatalf("DecodeOperations() error = %v", err)
			}
			if len(ops) != 1 || !ops[0].Equal(tc.op) {
				t.Errorf("DecodeOperations() = %v, want %v", ops, tc.op)
			}
		})
	}
}

func TestEncodeResult(t *testing.T) {
	l := newTestLedger(t, map[string]float64{"USDC": 1000}, NewFixedRate(2))
	res, err := l.SwapTokens("USDC", "ETH", Q(100))
	if err != nil {
		t.Fatalf("SwapTokens() error = %v", err)
	}
	res.ID = "fixed"

	var buf bytes.Buffer
	if err := EncodeResult(&buf, res); err != nil {
		t.Fatalf("EncodeResult() error = %v", err)
	}
	want := `{"id":"fixed","seq":1,"actor":"0xABCDEF123456","command":"swap","ok":true,` +
		`"message":"Swapping 100 USDC for 200.00 ETH.",` +
		`"operation":{"command":"swap","in":"USDC","out":"ETH","amount":100,"rate":2,"received":200},` +
		`"changes":[{"token":"USDC","before":1000,"after":900},{"token":"ETH","before":0,"after":200}]}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("EncodeResult() =\n%s\nwant\n%s", got, want)
	}
}

func TestDecodeBalances(t *testing.T) {
	got, err := DecodeBalances(strings.NewReader(`{"ETH": 5, "BTC": "2", "USDC": 1000}`))
	if err != nil {
		t.Fatalf("DecodeBalances() error = %v", err)
	}
	want := balances(map[string]float64{"ETH": 5, "BTC": 2, "USDC": 1000})
	if !(Snapshot{Balances: got}).Equal(Snapshot{Balances: want}) {
		t.Errorf("DecodeBalances() = %v, want %v", got, want)
	}
}

func TestParseBalances(t *testing.T) {
	testCases := []struct {
		input   string
		want    map[string]float64
		wantErr bool
	}{
		{input: "ETH=5,BTC=2,USDC=1000", want: map[string]float64{"ETH": 5, "BTC": 2, "USDC": 1000}},
		{input: " ETH = 0.5 , ", want: map[string]float64{"ETH": 0.5}},
		{input: "", want: map[string]float64{}},
		{input: "ETH", wantErr: true},
		{input: "ETH=five", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseBalances(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("ParseBalances(%q) error = nil, want an error", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBalances(%q) error = %v", tc.input, err)
			}
			if !(Snapshot{Balances: got}).Equal(Snapshot{Balances: balances(tc.want)}) {
				t.Errorf("ParseBalances(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestDecodeAllocation(t *testing.T) {
	a, err := DecodeAllocation(strings.NewReader(`{"ETH":0.6,"USDC":0.4}`))
	if err != nil {
		t.Fatalf("DecodeAllocation() error = %v", err)
	}
	if len(a.Targets()) != 2 {
		t.Errorf("DecodeAllocation() = %v, want 2 targets", a)
	}
	if _, err := DecodeAllocation(strings.NewReader(`{"ETH":-0.1}`)); err == nil {
		t.Error("DecodeAllocation() error = nil, want an error for a negative fraction")
	}
}
