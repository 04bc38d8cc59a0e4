package renderer

import (
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/defi"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// tables parses markdown and returns the text of every table cell, one
// [][]string per table, header row first.
func tables(t *testing.T, md string) [][][]string {
	t.Helper()
	src := []byte(md)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(src))

	var all [][][]string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		table, ok := n.(*east.Table)
		if !ok {
			return ast.WalkContinue, nil
		}
		var rows [][]string
		for row := table.FirstChild(); row != nil; row = row.NextSibling() {
			var cells []string
			for c := row.FirstChild(); c != nil; c = c.NextSibling() {
				cells = append(cells, nodeText(c, src))
			}
			rows = append(rows, cells)
		}
		all = append(all, rows)
		return ast.WalkSkipChildren, nil
	})
	return all
}

func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := c.(*ast.Text); ok {
				b.Write(t.Segment.Value(src))
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func testSnapshot() defi.Snapshot {
	return defi.Snapshot{
		Balances: map[string]defi.Quantity{"ETH": defi.Q(4), "BTC": defi.Q(1), "USDC": defi.Q(40000)},
		Votes:    map[string]string{"123": "YES"},
	}
}

func TestRenderHolding(t *testing.T) {
	md := RenderHolding(NewHolding("0xABC", testSnapshot(), nil))
	if !strings.HasPrefix(md, "# Holdings of 0xABC\n") {
		t.Errorf("RenderHolding() title = %q", strings.SplitN(md, "\n", 2)[0])
	}

	got := tables(t, md)
	want := [][][]string{
		{{"Token", "Quantity"}, {"BTC", "1"}, {"ETH", "4"}, {"USDC", "40000"}},
		{{"Proposal", "Vote"}, {"123", "YES"}},
	}
	if !slices.EqualFunc(got, want, func(a, b [][]string) bool {
		return slices.EqualFunc(a, b, slices.Equal)
	}) {
		t.Errorf("RenderHolding() tables = %v, want %v\n%s", got, want, md)
	}
}

func TestRenderHolding_Valued(t *testing.T) {
	prices := defi.PriceTable{Currency: "USD", Prices: map[string]decimal.Decimal{
		"ETH":  decimal.NewFromInt(2500),
		"BTC":  decimal.NewFromInt(50000),
		"USDC": decimal.NewFromInt(1),
	}}
	s := testSnapshot()
	v, err := s.Valuation(prices, "USD")
	if err != nil {
		t.Fatalf("Valuation() error = %v", err)
	}
	md := RenderHolding(NewHolding("0xABC", s, &v))

	got := tables(t, md)
	if len(got) != 2 {
		t.Fatalf("RenderHolding() has %d tables, want 2\n%s", len(got), md)
	}
	balances := got[0]
	if want := []string{"Token", "Quantity", "Price", "Value", "Weight"}; !slices.Equal(balances[0], want) {
		t.Errorf("header = %v, want %v", balances[0], want)
	}
	if want := []string{"BTC", "1", "$50,000.00", "$50,000.00", "50.00%"}; !slices.Equal(balances[1], want) {
		t.Errorf("BTC row = %v, want %v", balances[1], want)
	}
	if total := balances[len(balances)-1]; total[0] != "Total" || total[3] != "$100,000.00" {
		t.Errorf("total row = %v, want Total $100,000.00", total)
	}
}

func TestResultsMarkdown(t *testing.T) {
	l, err := defi.NewLedger("0xABC", map[string]defi.Quantity{"ETH": defi.Q(5), "USDC": defi.Q(1000)}, defi.NewFixedRate(1), defi.DefaultTargets())
	if err != nil {
		t.Fatalf("NewLedger() error = %v", err)
	}
	l.SetLogger(slog.New(slog.DiscardHandler))
	l.Transact("ETH", defi.Q(0.5), "X")
	l.Transact("ETH", defi.Q(100), "X")
	l.SwapTokens("USDC", "ETH", defi.Q(500))
	l.RebalancePortfolio()

	md := ResultsMarkdown(slices.Collect(l.History()))
	got := tables(t, md)
	if len(got) != 2 {
		t.Fatalf("ResultsMarkdown() has %d tables, want 2\n%s", len(got), md)
	}

	ops := got[0]
	if len(ops) != 5 {
		t.Fatalf("operations table has %d rows, want 5", len(ops))
	}
	if want := []string{"2", "transact", "rejected", "Insufficient ETH balance to transact 100."}; !slices.Equal(ops[2], want) {
		t.Errorf("row 2 = %v, want %v", ops[2], want)
	}
	if !strings.Contains(ops[4][3], "Need to acquire") {
		t.Errorf("rebalance row = %v, want the advice in one cell", ops[4])
	}

	changes := got[1]
	want := [][]string{
		{"#", "Token", "Before", "Change", "After"},
		{"1", "ETH", "5", "-0.5", "4.5"},
		{"3", "USDC", "1000", "-500", "500"},
		{"3", "ETH", "4.5", "+500", "504.5"},
	}
	if !slices.EqualFunc(changes, want, slices.Equal) {
		t.Errorf("changes table = %v, want %v", changes, want)
	}
}

func TestResultsMarkdown_NoChanges(t *testing.T) {
	md := ResultsMarkdown([]defi.Result{{Seq: 1, Command: defi.CmdVote, OK: true, Message: "Voting YES on proposal 1."}})
	if strings.Contains(md, "Balance Changes") {
		t.Errorf("ResultsMarkdown() = %q, want no changes section", md)
	}
	if got := tables(t, md); len(got) != 1 || len(got[0]) != 2 {
		t.Errorf("ResultsMarkdown() tables = %v, want one table with one row", got)
	}
}

func TestSignalsMarkdown(t *testing.T) {
	res := defi.Result{Signals: []defi.Signal{
		{Token: "BTC", Action: defi.Acquire, Amount: defi.Q(2.35), Current: defi.Q(2), Target: defi.Q(4.35), Fraction: 30},
		{Token: "USDC", Action: defi.Reduce, Amount: defi.Q(997.65), Current: defi.Q(1000), Target: defi.Q(2.35), Fraction: 20},
	}}
	got := tables(t, SignalsMarkdown(res))
	want := [][]string{
		{"Token", "Target", "Current", "Goal", "Advice"},
		{"BTC", "30.00%", "2", "4.35", "Need to acquire 2.35 more BTC."},
		{"USDC", "20.00%", "1000", "2.35", "Consider reducing 997.65 USDC."},
	}
	if len(got) != 1 || !slices.EqualFunc(got[0], want, slices.Equal) {
		t.Errorf("SignalsMarkdown() tables = %v, want %v", got, want)
	}

	if md := SignalsMarkdown(defi.Result{}); !strings.Contains(md, "on target") {
		t.Errorf("SignalsMarkdown() = %q, want the on target notice", md)
	}
}
