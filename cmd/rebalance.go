package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/defi/renderer"
	"github.com/google/subcommands"
)

// rebalanceCmd holds the flags for the 'rebalance' subcommand.
type rebalanceCmd struct{}

func (*rebalanceCmd) Name() string     { return "rebalance" }
func (*rebalanceCmd) Synopsis() string { return "display rebalancing advice" }
func (*rebalanceCmd) Usage() string {
	return `defi rebalance [-targets <targets.json>] [<script.jsonl>]

  Compares the ledger, after the optional script, with the target allocation
  and tells what to acquire or reduce. Nothing is moved.
`
}

func (c *rebalanceCmd) SetFlags(f *flag.FlagSet) {}

func (c *rebalanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "rebalance accepts at most one script file")
		return subcommands.ExitUsageError
	}
	ledger, err := replay(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	res, err := ledger.RebalancePortfolio()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.SignalsMarkdown(res))
	return subcommands.ExitSuccess
}
