package renderer

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/etnz/defi"
)

// Holding is the view of a ledger snapshot, optionally valued.
type Holding struct {
	// Actor owning the ledger.
	Actor string `json:"actor"`
	// Valued is true when prices were available for every token.
	Valued bool `json:"valued"`
	// Total value of the balances, when Valued.
	Total defi.Money `json:"total"`
	// Balances in token order.
	Balances []HoldingBalance `json:"balances"`
	// Votes in proposal order.
	Votes []HoldingVote `json:"votes"`
}

// HoldingBalance represents a single token balance.
type HoldingBalance struct {
	Token    string        `json:"token"`
	Quantity defi.Quantity `json:"quantity"`
	Price    defi.Money    `json:"price"`
	Value    defi.Money    `json:"value"`
	Weight   defi.Percent  `json:"weight"`
}

// HoldingVote represents a recorded governance vote.
type HoldingVote struct {
	Proposal string `json:"proposal"`
	Choice   string `json:"vote"`
}

// NewHolding creates a Holding from a snapshot. The valuation is optional.
func NewHolding(actor string, s defi.Snapshot, v *defi.Valuation) *Holding {
	h := &Holding{
		Actor:    actor,
		Balances: make([]HoldingBalance, 0, len(s.Balances)),
		Votes:    make([]HoldingVote, 0, len(s.Votes)),
	}
	positions := make(map[string]defi.Position)
	if v != nil {
		h.Valued = true
		h.Total = v.Total
		for _, p := range v.Positions {
			positions[p.Token] = p
		}
	}
	for token := range s.Tokens() {
		b := HoldingBalance{Token: token, Quantity: s.Balances[token]}
		if p, ok := positions[token]; ok {
			b.Price, b.Value, b.Weight = p.Price, p.Value, p.Weight
		}
		h.Balances = append(h.Balances, b)
	}
	for proposal := range s.Proposals() {
		h.Votes = append(h.Votes, HoldingVote{Proposal: proposal, Choice: s.Votes[proposal]})
	}
	return h
}

const holdingMarkdownTemplate = `# Holdings of {{ .Actor }}

| Token | Quantity |{{ if .Valued }} Price | Value | Weight |{{ end }}
|:---|---:|{{ if .Valued }}---:|---:|---:|{{ end }}
{{- range .Balances }}
| {{ .Token }} | {{ .Quantity }} |{{ if $.Valued }} {{ .Price }} | {{ .Value }} | {{ .Weight }} |{{ end }}
{{- end }}
{{- if .Valued }}
| **Total** | | | **{{ .Total }}** | |
{{- end }}
{{- if .Votes }}

## Votes

| Proposal | Vote |
|:---|:---|
{{- range .Votes }}
| {{ .Proposal }} | {{ .Choice }} |
{{- end }}
{{- end }}
`

// RenderHolding renders the Holding struct to a markdown string using a text/template.
func RenderHolding(h *Holding) string {
	tmpl := template.Must(template.New("holding").Parse(holdingMarkdownTemplate))
	var b strings.Builder
	if err := tmpl.Execute(&b, h); err != nil {
		return fmt.Sprintf("Error executing template: %v", err)
	}
	return b.String()
}
