package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/defi"
	"github.com/etnz/defi/metrics"
	"github.com/etnz/defi/renderer"
	"github.com/google/subcommands"
)

// outputFlags are the output options shared by commands executing operations.
type outputFlags struct {
	json    bool
	report  bool
	metrics bool
	strict  bool
}

func (o *outputFlags) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&o.json, "json", false, "print each result as a JSON line")
	f.BoolVar(&o.report, "report", false, "print a markdown report of the operations and final holdings")
	f.BoolVar(&o.metrics, "metrics", false, "print the metrics in Prometheus text format at the end")
	f.BoolVar(&o.strict, "strict", false, "stop at the first rejected operation and exit with failure")
}

// execute runs the operations in order and prints their outcome.
func (o *outputFlags) execute(l *defi.Ledger, ops []defi.Operation) subcommands.ExitStatus {
	rec := metrics.NewRecorder()
	rec.Track(l.Snapshot())
	l.Observe(rec.Observe)

	status := subcommands.ExitSuccess
	var results []defi.Result
	for _, op := range ops {
		res, err := l.Execute(op)
		if err != nil && !errors.Is(err, defi.ErrPrecondition) {
			fmt.Fprintf(os.Stderr, "Error executing %s: %v\n", op.What(), err)
			return subcommands.ExitFailure
		}
		results = append(results, res)
		switch {
		case o.json:
			if err := defi.EncodeResult(stdout, res); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing result: %v\n", err)
				return subcommands.ExitFailure
			}
		case !o.report:
			fmt.Fprintln(stdout, res.Message)
		}
		if err != nil && o.strict {
			status = subcommands.ExitFailure
			break
		}
	}

	if o.report {
		holding := renderer.NewHolding(l.Actor(), l.Snapshot(), nil)
		printMarkdown(renderer.ResultsMarkdown(results) + "\n" + renderer.RenderHolding(holding))
	}
	if o.metrics {
		if err := rec.Write(stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing metrics: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return status
}

// runCmd holds the flags for the 'run' subcommand.
type runCmd struct {
	outputFlags
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "execute a JSONL script of operations" }
func (*runCmd) Usage() string {
	return `defi run [-json] [-report] [-metrics] [-strict] <script.jsonl>

  Executes every operation of the script, in order, against a ledger built
  from the global flags. Use "-" to read the script from stdin.
  See "defi topic scripts" for the format.
`
}

func (c *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "run requires exactly one script file")
		return subcommands.ExitUsageError
	}

	in := os.Stdin
	if name := f.Arg(0); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		in = file
	}

	ops, err := defi.DecodeOperations(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding script:\n%v\n", err)
		return subcommands.ExitFailure
	}

	ledger, err := NewLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	return c.execute(ledger, ops)
}
