package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/defi"
	"github.com/etnz/defi/renderer"
	"github.com/google/subcommands"
)

// replay builds the ledger from the global flags and silently executes the
// optional script on it. Rejected operations are logged, not fatal.
func replay(script string) (*defi.Ledger, error) {
	ledger, err := NewLedger()
	if err != nil {
		return nil, fmt.Errorf("cannot create ledger: %w", err)
	}
	if script == "" {
		return ledger, nil
	}
	f, err := os.Open(script)
	if err != nil {
		return nil, fmt.Errorf("cannot open script: %w", err)
	}
	defer f.Close()
	ops, err := defi.DecodeOperations(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode script: %w", err)
	}
	for _, op := range ops {
		if _, err := ledger.Execute(op); err != nil && !errors.Is(err, defi.ErrPrecondition) {
			return nil, err
		}
	}
	return ledger, nil
}

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	prices   string
	currency string
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display balances and votes, optionally valued" }
func (*holdingCmd) Usage() string {
	return `defi holding [-prices <prices.json>] [-c <currency>] [<script.jsonl>]

  Displays the ledger balances and votes, after the optional script.
  With -prices, a JSON object of unit prices like {"ETH": 2500, "USDC": 1},
  every balance is valued in the reporting currency.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.prices, "prices", "", "JSON file of token unit prices")
	f.StringVar(&c.currency, "c", "USD", "Reporting currency of the prices")
}

func (c *holdingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "holding accepts at most one script file")
		return subcommands.ExitUsageError
	}
	ledger, err := replay(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var valuation *defi.Valuation
	if c.prices != "" {
		prices, err := decodePrices(c.prices, c.currency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
			return subcommands.ExitFailure
		}
		v, err := ledger.Valuation(prices, c.currency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error valuing holdings: %v\n", err)
			return subcommands.ExitFailure
		}
		valuation = &v
	}

	printMarkdown(renderer.RenderHolding(renderer.NewHolding(ledger.Actor(), ledger.Snapshot(), valuation)))
	return subcommands.ExitSuccess
}

func decodePrices(name, currency string) (defi.PriceTable, error) {
	f, err := os.Open(name)
	if err != nil {
		return defi.PriceTable{}, err
	}
	defer f.Close()
	table := defi.PriceTable{Currency: currency}
	if err := json.NewDecoder(f).Decode(&table.Prices); err != nil {
		return defi.PriceTable{}, fmt.Errorf("cannot decode %q: %w", name, err)
	}
	return table, nil
}
