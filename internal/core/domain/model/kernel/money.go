package kernel

import (
	"fmt"
	"regexp"
	"strings"

	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// BaseCurrency settles orders shipped to countries without a configured currency.
const BaseCurrency Currency = "USD"

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency is an ISO 4217 alphabetic code.
type Currency string

// ParseCurrency normalises s to upper case and checks it is a three letter code.
func ParseCurrency(s string) (Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if !currencyPattern.MatchString(code) {
		return "", errs.NewValueIsInvalidErrorWithCause("currency", fmt.Errorf("%q is not an ISO 4217 code", s))
	}
	return Currency(code), nil
}

func (c Currency) String() string {
	return string(c)
}

// RoundMoney rounds an amount half away from zero to two decimal places.
// Every aggregation boundary (line total, subtotal, tax, total) goes through it.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// SumMoney adds amounts and rounds the result once.
func SumMoney(amounts ...decimal.Decimal) decimal.Decimal {
	return RoundMoney(decimal.Sum(decimal.Zero, amounts...))
}
