package services

import (
	"strings"

	"orders/internal/core/domain/model/kernel"
)

var defaultCountryCurrencies = map[string]kernel.Currency{
	"US": "USD",
	"GB": "GBP",
	"CA": "CAD",
	"AU": "AUD",
	"NZ": "NZD",
	"CH": "CHF",
	"JP": "JPY",
	"IN": "INR",
	"AE": "AED",
	"SA": "SAR",
	"PK": "PKR",
	"IE": "EUR",
	"DE": "EUR",
	"FR": "EUR",
	"ES": "EUR",
	"IT": "EUR",
	"NL": "EUR",
	"BE": "EUR",
	"AT": "EUR",
	"PT": "EUR",
	"FI": "EUR",
	"GR": "EUR",
	"LU": "EUR",
}

// CurrencyResolver maps ISO 3166 alpha-2 country codes to settlement
// currencies. Unmapped countries settle in the base currency.
type CurrencyResolver struct {
	base       kernel.Currency
	currencies map[string]kernel.Currency
}

// NewCurrencyResolver builds a resolver from the built-in table plus overrides.
// An empty base falls back to kernel.BaseCurrency.
func NewCurrencyResolver(base kernel.Currency, overrides map[string]kernel.Currency) CurrencyResolver {
	if base == "" {
		base = kernel.BaseCurrency
	}
	currencies := make(map[string]kernel.Currency, len(defaultCountryCurrencies)+len(overrides))
	for country, currency := range defaultCountryCurrencies {
		currencies[country] = currency
	}
	for country, currency := range overrides {
		currencies[strings.ToUpper(country)] = currency
	}
	return CurrencyResolver{base: base, currencies: currencies}
}

// Resolve never fails.
func (r CurrencyResolver) Resolve(country string) kernel.Currency {
	if currency, ok := r.currencies[strings.ToUpper(strings.TrimSpace(country))]; ok {
		return currency
	}
	if r.base == "" {
		return kernel.BaseCurrency
	}
	return r.base
}
