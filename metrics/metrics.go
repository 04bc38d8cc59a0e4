// Package metrics counts ledger operations and tracks token balances in
// Prometheus form.
package metrics

import (
	"fmt"
	"io"

	"github.com/etnz/defi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Recorder holds the ledger collectors on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	OperationsTotal *prometheus.CounterVec
	TokenBalance    *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with every collector registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "defi_operations_total",
				Help: "Total executed operations",
			},
			[]string{"command", "outcome"}, // outcome: ok|rejected
		),
		TokenBalance: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "defi_token_balance",
				Help: "Current token balance",
			},
			[]string{"token"},
		),
	}
	r.registry.MustRegister(r.OperationsTotal, r.TokenBalance)
	return r
}

// Track sets the balance gauges from a snapshot.
func (r *Recorder) Track(s defi.Snapshot) {
	for token := range s.Tokens() {
		r.TokenBalance.WithLabelValues(token).Set(s.Balances[token].InexactFloat64())
	}
}

// Observe records one result. Use it with Ledger.Observe.
func (r *Recorder) Observe(res defi.Result) {
	outcome := "ok"
	if !res.OK {
		outcome = "rejected"
	}
	r.OperationsTotal.WithLabelValues(string(res.Command), outcome).Inc()
	for _, c := range res.Changes {
		r.TokenBalance.WithLabelValues(c.Token).Set(c.After.InexactFloat64())
	}
}

// Gatherer exposes the registry, for instance to a promhttp handler.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// Write prints every metric in the Prometheus text format.
func (r *Recorder) Write(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("cannot gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("cannot encode metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
