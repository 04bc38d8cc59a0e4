package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/defi"
)

// ResultsMarkdown renders the journal of executed operations: one row per
// result, then the balance changes of the successful ones.
func ResultsMarkdown(results []defi.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Operations\n\n")
	fmt.Fprintln(&b, "| # | Command | Status | Message |")
	fmt.Fprintln(&b, "|---:|:---|:---:|:---|")
	for _, r := range results {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", r.Seq, r.Command, status(r), cell(r.Message))
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintf(w, "\n## Balance Changes\n\n")
		fmt.Fprintln(w, "| # | Token | Before | Change | After |")
		fmt.Fprintln(w, "|---:|:---|---:|---:|---:|")
		rows := 0
		for _, r := range results {
			for _, c := range r.Changes {
				fmt.Fprintf(w, "| %d | %s | %s | %s | %s |\n", r.Seq, c.Token, c.Before, signed(c.Delta()), c.After)
				rows++
			}
		}
		return rows > 0
	})
	return b.String()
}

// SignalsMarkdown renders the rebalancing advice of a rebalance result.
func SignalsMarkdown(r defi.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Rebalancing\n\n")
	if len(r.Signals) == 0 {
		fmt.Fprintln(&b, "The portfolio is on target.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Token | Target | Current | Goal | Advice |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|:---|")
	for _, s := range r.Signals {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", s.Token, s.Fraction, s.Current, s.Target.StringFixed(2), cell(s.String()))
	}
	return b.String()
}

func status(r defi.Result) string {
	if r.OK {
		return "ok"
	}
	return "rejected"
}

// signed prints a quantity with an explicit sign.
func signed(q defi.Quantity) string {
	if q.IsPositive() {
		return "+" + q.String()
	}
	return q.String()
}
