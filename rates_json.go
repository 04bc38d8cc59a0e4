package defi

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// DefaultRatesPath locates the rate of a pair in a document like
//
//	{"rates": {"USDC": {"ETH": 0.0004}}}
const DefaultRatesPath = `$.rates[%q][%q]`

// JSONRates quotes rates out of an arbitrary JSON document.
//
// Path is a JSONPath expression with two %q verbs, filled with the 'in' and
// 'out' tokens. When the direct pair is missing, the reverse pair is looked up
// and inverted.
type JSONRates struct {
	Path string
	doc  any
}

// DecodeJSONRates reads a JSON document to quote rates from.
func DecodeJSONRates(r io.Reader, path string) (*JSONRates, error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot decode rates document: %w", err)
	}
	if path == "" {
		path = DefaultRatesPath
	}
	return &JSONRates{Path: path, doc: doc}, nil
}

func (j *JSONRates) Rate(in, out string) (decimal.Decimal, error) {
	r, err := j.lookup(in, out)
	if err == nil {
		return r, nil
	}
	inv, invErr := j.lookup(out, in)
	if invErr != nil || inv.IsZero() {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(1).DivRound(inv, 18), nil
}

func (j *JSONRates) lookup(in, out string) (decimal.Decimal, error) {
	path := fmt.Sprintf(j.Path, in, out)
	jval, err := jsonpath.Get(path, j.doc)
	if err != nil {
		return decimal.Zero, fmt.Errorf("no rate for %s at %s: %w", Pair{in, out}, path, err)
	}
	// jsonpath may answer a list of one value for filter expressions.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("rate for %s at %s is not a number: %w", Pair{in, out}, path, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("rate for %s at %s is not a number: %v", Pair{in, out}, path, jval)
	}
}
