// Package money provides parsing and display of monetary amounts. Parsing
// returns exact decimals; display goes through go-money for correct
// currency formatting.
package money

import (
	"errors"
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// NZD is the default currency code for statement exports.
const NZD = "NZD"

var ErrNotANumber = errors.New("amount is not a number")

// ParseDecimal parses an amount string as exported by bank statements.
// Accepts "-75.00", "$1,234.56", "NZ$12.00" and accounting-style "(45.00)".
// An empty or non-numeric value returns ErrNotANumber.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, ErrNotANumber
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	s = strings.TrimPrefix(s, "NZ$")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrNotANumber, raw)
	}

	if negative {
		d = d.Neg()
	}
	return d, nil
}

// Format renders a decimal amount in the given currency for display,
// e.g. Format(decimal "-75.5", "NZD") -> "-$75.50".
func Format(d decimal.Decimal, currencyCode string) string {
	currency := gomoney.GetCurrency(currencyCode)
	if currency == nil {
		currency = gomoney.GetCurrency(NZD)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := d.Mul(multiplier).Round(0).IntPart()

	return gomoney.New(cents, currency.Code).Display()
}
