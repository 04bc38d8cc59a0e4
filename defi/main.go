// Command defi simulates a DeFi portfolio ledger.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/defi/cmd"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
func completion() *complete.Command {
	output := map[string]complete.Predictor{
		"json":    predict.Nothing,
		"report":  predict.Nothing,
		"metrics": predict.Nothing,
		"strict":  predict.Nothing,
	}
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"demo": {Flags: output},
			"run":  {Flags: output, Args: predict.Files("*.jsonl")},
			"holding": {
				Flags: map[string]complete.Predictor{
					"prices": predict.Files("*.json"),
					"c":      predict.Set{"USD", "EUR", "GBP", "CHF", "JPY"},
				},
				Args: predict.Files("*.jsonl"),
			},
			"rebalance": {},
			"topic":     {Args: predict.Set{"readme", "operations", "scripts", "rates", "*"}},
		},
		Flags: map[string]complete.Predictor{
			"actor":      predict.Something,
			"balances":   predict.Something,
			"rates":      predict.Files("*.json"),
			"rates-path": predict.Something,
			"targets":    predict.Files("*.json"),
			"seed":       predict.Something,
			"v":          predict.Nothing,
			"log-json":   predict.Nothing,
			"raw":        predict.Nothing,
		},
	}
}

func main() {
	// exits when invoked by the shell for completion.
	completion().Complete("defi")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	commander := subcommands.NewCommander(flag.CommandLine, "defi")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()

	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, sub subcommands.Command) {
		if sub.Name() == name {
			found = true
		}
	})
	return found
}
