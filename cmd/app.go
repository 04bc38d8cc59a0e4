// Package cmd implements the CLI application to simulate a DeFi ledger.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/defi"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&demoCmd{}, "simulation")
	c.Register(&runCmd{}, "simulation")

	c.Register(&holdingCmd{}, "reports")
	c.Register(&rebalanceCmd{}, "reports")

	c.Register(&topicCmd{}, "help")
}

// DefaultActor and DefaultBalances are the reference ledger of the demonstration.
const (
	DefaultActor    = "0xABCDEF123456"
	DefaultBalances = "ETH=5,BTC=2,USDC=1000"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.
// Flags left empty fall back on their environment variable, read once .env is loaded.

var actor = flag.String("actor", "", "Actor identity of the ledger (env "+EnvActor+")")
var balancesFlag = flag.String("balances", "", "Initial balances as TOKEN=AMOUNT,... or a path to a .json file (env "+EnvBalances+")")
var ratesFile = flag.String("rates", "", "JSON file to read exchange rates from, random rates otherwise (env "+EnvRates+")")
var ratesPath = flag.String("rates-path", defi.DefaultRatesPath, "JSONPath template locating a rate in the -rates file")
var targetsFile = flag.String("targets", "", "JSON file with the target allocation, ETH 50% BTC 30% USDC 20% otherwise")
var seedFlag = flag.String("seed", "", "Seed of the random exchange rates, random otherwise (env "+EnvSeed+")")

// Verbose enables debug logs.
var Verbose = flag.Bool("v", false, "Verbose logging (env "+EnvVerbose+")")
var jsonLogs = flag.Bool("log-json", false, "Log in JSON")
var raw = flag.Bool("raw", false, "Print markdown as is, without terminal rendering")

// stdout receives every command output.
var stdout io.Writer = os.Stdout

// setting returns the flag value, or else the environment variable, or else fallback.
func setting(value, env, fallback string) string {
	if value != "" {
		return value
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

func verbose() bool {
	if *Verbose {
		return true
	}
	v, _ := strconv.ParseBool(os.Getenv(EnvVerbose))
	return v
}

// newLogger returns a text logger on stderr, or a JSON one, at debug level when verbose.
func newLogger(verbose, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h)
}

// DecodeBalances reads the initial balances from the flag, an env variable, or the default.
func DecodeBalances() (map[string]defi.Quantity, error) {
	value := setting(*balancesFlag, EnvBalances, DefaultBalances)
	if !strings.HasSuffix(value, ".json") {
		return defi.ParseBalances(value)
	}
	f, err := os.Open(value)
	if err != nil {
		return nil, fmt.Errorf("cannot open balances file: %w", err)
	}
	defer f.Close()
	return defi.DecodeBalances(f)
}

// DecodeTargets reads the target allocation file, or returns the default one.
func DecodeTargets() (defi.AllocationProvider, error) {
	if *targetsFile == "" {
		return defi.DefaultTargets(), nil
	}
	f, err := os.Open(*targetsFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open targets file: %w", err)
	}
	defer f.Close()
	return defi.DecodeAllocation(f)
}

// NewRates returns the exchange rate provider selected by the flags.
func NewRates(logger *slog.Logger) (defi.ExchangeRateProvider, error) {
	if file := setting(*ratesFile, EnvRates, ""); file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("cannot open rates file: %w", err)
		}
		defer f.Close()
		return defi.DecodeJSONRates(f, *ratesPath)
	}

	seed := rand.Uint64()
	if s := setting(*seedFlag, EnvSeed, ""); s != "" {
		var err error
		if seed, err = strconv.ParseUint(s, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", s, err)
		}
	}
	logger.Debug("random exchange rates", "seed", seed)
	return defi.NewUniformRate(seed), nil
}

// NewLedger creates the ledger described by the global flags.
func NewLedger() (*defi.Ledger, error) {
	logger := newLogger(verbose(), *jsonLogs)
	initial, err := DecodeBalances()
	if err != nil {
		return nil, err
	}
	rates, err := NewRates(logger)
	if err != nil {
		return nil, err
	}
	targets, err := DecodeTargets()
	if err != nil {
		return nil, err
	}
	l, err := defi.NewLedger(setting(*actor, EnvActor, DefaultActor), initial, rates, targets)
	if err != nil {
		return nil, err
	}
	l.SetLogger(logger)
	return l, nil
}

// printMarkdown renders markdown for the terminal, unless -raw is set.
func printMarkdown(md string) {
	if *raw {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
