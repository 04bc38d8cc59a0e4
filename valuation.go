package defi

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceProvider quotes the unit price of a token in a currency.
type PriceProvider interface {
	Price(token, currency string) (Money, error)
}

// PriceTable quotes fixed prices, all in the same currency.
type PriceTable struct {
	Currency string
	Prices   map[string]decimal.Decimal
}

func (t PriceTable) Price(token, currency string) (Money, error) {
	if currency != t.Currency {
		return Money{}, fmt.Errorf("no %s price for %s: table is in %s", currency, token, t.Currency)
	}
	p, ok := t.Prices[token]
	if !ok {
		return Money{}, fmt.Errorf("no %s price for %s", currency, token)
	}
	return M(p, currency), nil
}

// Position is the market value of one token balance.
type Position struct {
	Token    string
	Quantity Quantity
	Price    Money
	Value    Money
	Weight   Percent // share of the total value.
}

// Valuation is a price-weighted view of a balance sheet.
type Valuation struct {
	Currency  string
	Positions []Position // in token order.
	Total     Money
}

// Valuation prices every held token in 'currency'.
//
// Unlike rebalancing advice, which sums raw quantities, this weights each
// balance by its price. Every missing price is reported.
func (l *Ledger) Valuation(prices PriceProvider, currency string) (Valuation, error) {
	return l.Snapshot().Valuation(prices, currency)
}

// Valuation prices every token of the snapshot in 'currency'.
func (s Snapshot) Valuation(prices PriceProvider, currency string) (Valuation, error) {
	v := Valuation{Currency: currency, Total: M(0, currency)}
	var errs error
	for token := range s.Tokens() {
		q := s.Balances[token]
		price, err := prices.Price(token, currency)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		value := price.Mul(q)
		total, ok := v.Total.Add(value)
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("price of %s is in %s, not %s", token, price.Currency(), currency))
			continue
		}
		v.Total = total
		v.Positions = append(v.Positions, Position{Token: token, Quantity: q, Price: price, Value: value})
	}
	if errs != nil {
		return Valuation{}, fmt.Errorf("cannot value holdings: %w", errs)
	}
	if v.Total.IsPositive() {
		for i := range v.Positions {
			v.Positions[i].Weight = PercentOf(v.Positions[i].Value.Decimal().Div(v.Total.Decimal()))
		}
	}
	return v, nil
}
