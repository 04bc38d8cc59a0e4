package defi

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeOperations reads a script of operations in JSONL format, one
// operation per line, like
//
//	{"command":"swap","in":"USDC","out":"ETH","amount":500}
//
// Empty lines are skipped. Every faulty line is reported, with its line
// number.
func DecodeOperations(r io.Reader) ([]Operation, error) {
	var ops []Operation
	var errs error
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if strings.TrimSpace(string(line)) == "" {
			continue
		}
		op, err := decodeOperation(line)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("line %d: %w", i, err))
			continue
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("cannot read operations: %w", err))
	}
	if errs != nil {
		return nil, errs
	}
	return ops, nil
}

func decodeOperation(line []byte) (Operation, error) {
	var identifier struct {
		Command CommandType `json:"command"`
	}
	if err := json.Unmarshal(line, &identifier); err != nil {
		return nil, fmt.Errorf("could not identify command in %q: %w", string(line), err)
	}

	var op Operation
	var err error
	switch identifier.Command {
	case CmdTransact:
		var t Transact
		err = json.Unmarshal(line, &t)
		op = t
	case CmdSwap:
		var t Swap
		err = json.Unmarshal(line, &t)
		t.Rate, t.Received = decimal.Zero, Quantity{}
		op = t
	case CmdProvideLiquidity:
		var t ProvideLiquidity
		err = json.Unmarshal(line, &t)
		op = t
	case CmdRebalance:
		var t Rebalance
		err = json.Unmarshal(line, &t)
		t.Total, t.Signals = Quantity{}, nil
		op = t
	case CmdVote:
		var t Vote
		err = json.Unmarshal(line, &t)
		op = t
	case CmdLending:
		var t Lending
		err = json.Unmarshal(line, &t)
		op = t
	case "":
		return nil, fmt.Errorf("missing property %q in %q", "command", string(line))
	default:
		return nil, fmt.Errorf("unknown command %q", identifier.Command)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", identifier.Command, err)
	}
	return op, nil
}

// EncodeOperation writes a single operation as a JSON line.
func EncodeOperation(w io.Writer, op Operation) error {
	return encodeLine(w, op)
}

// EncodeResult writes a single result as a JSON line.
func EncodeResult(w io.Writer, r Result) error {
	return encodeLine(w, r)
}

func encodeLine(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot encode: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("cannot write: %w", err)
	}
	return nil
}

// DecodeBalances reads an initial balance sheet as a JSON object of token
// amounts, like {"ETH": 5, "BTC": 2, "USDC": 1000}.
func DecodeBalances(r io.Reader) (map[string]Quantity, error) {
	var balances map[string]Quantity
	if err := json.NewDecoder(r).Decode(&balances); err != nil {
		return nil, fmt.Errorf("cannot decode balances: %w", err)
	}
	return balances, nil
}

// DecodeAllocation reads target fractions as a JSON object, like
// {"ETH": 0.5, "BTC": 0.3, "USDC": 0.2}.
func DecodeAllocation(r io.Reader) (StaticTargets, error) {
	var a map[string]decimal.Decimal
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("cannot decode allocation: %w", err)
	}
	for token, f := range a {
		if f.IsNegative() {
			return nil, fmt.Errorf("negative target fraction %s for %s", f, token)
		}
	}
	return StaticTargets(a), nil
}

// ParseBalances parses a compact balance list like "ETH=5,BTC=2,USDC=1000".
func ParseBalances(s string) (map[string]Quantity, error) {
	balances := make(map[string]Quantity)
	var errs error
	for item := range strings.SplitSeq(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		token, amount, ok := strings.Cut(item, "=")
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("invalid balance %q: want TOKEN=AMOUNT", item))
			continue
		}
		q, err := ParseQuantity(strings.TrimSpace(amount))
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		balances[strings.TrimSpace(token)] = q
	}
	if errs != nil {
		return nil, errs
	}
	return balances, nil
}
