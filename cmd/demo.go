package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/defi"
	"github.com/google/subcommands"
)

// demoCmd holds the flags for the 'demo' subcommand.
type demoCmd struct {
	outputFlags
}

func (*demoCmd) Name() string     { return "demo" }
func (*demoCmd) Synopsis() string { return "run the reference sequence of operations" }
func (*demoCmd) Usage() string {
	return `defi demo [-json] [-report] [-metrics]

  Runs one of each operation against the ledger built from the global flags
  (by default ETH=5,BTC=2,USDC=1000 with random rates):

    transact 0.5 ETH, swap 500 USDC for ETH, provide ETH-USDC liquidity,
    rebalance, vote YES on proposal 123, lend 1 BTC.
`
}

// demoScript is the reference sequence.
func demoScript() []defi.Operation {
	return []defi.Operation{
		defi.NewTransact("ETH", defi.Q(0.5), "0x123456789ABC"),
		defi.NewSwap("USDC", "ETH", defi.Q(500)),
		defi.NewProvideLiquidity("ETH-USDC", "ETH", "USDC", defi.Q(1), defi.Q(500)),
		defi.NewRebalance(),
		defi.NewVote("123", "YES"),
		defi.NewLending("BTC", defi.Q(1), defi.Lend),
	}
}

func (c *demoCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := NewLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	return c.execute(ledger, demoScript())
}
