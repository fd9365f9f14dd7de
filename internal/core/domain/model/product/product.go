// Package product models the catalog view the order engine reads: identity,
// stock counters and currency scoped pricing.
package product

import (
	"errors"
	"fmt"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func ParseDiscountType(s string) (DiscountType, error) {
	switch t := DiscountType(strings.ToLower(strings.TrimSpace(s))); t {
	case "", DiscountNone:
		return DiscountNone, nil
	case DiscountPercentage, DiscountFixed:
		return t, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("discountType", fmt.Errorf("%q is not supported", s))
	}
}

// Pricing is the price of a product in one currency.
type Pricing struct {
	Currency      kernel.Currency
	BasePrice     decimal.Decimal
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
}

func (p Pricing) Validate() error {
	var problems []error
	if p.BasePrice.IsNegative() {
		problems = append(problems, errs.NewValueIsInvalidError("pricing.basePrice"))
	}
	if p.DiscountValue.IsNegative() {
		problems = append(problems, errs.NewValueIsInvalidError("pricing.discountValue"))
	}
	if p.DiscountType == DiscountPercentage && p.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		problems = append(problems, errs.NewValueIsOutOfRangeError("pricing.discountValue", p.DiscountValue, 0, 100))
	}
	return errors.Join(problems...)
}

// Product is a catalog entry together with the pricing for the currency it was loaded in.
type Product struct {
	id       kernel.UUID
	name     string
	sku      string
	inStock  int
	reserved int
	pricing  *Pricing
}

func NewProduct(id kernel.UUID, name, sku string, inStock, reserved int, pricing *Pricing) (*Product, error) {
	var problems []error
	if err := id.Validate(); err != nil {
		problems = append(problems, err)
	}
	if strings.TrimSpace(name) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("product.name"))
	}
	if inStock < 0 || reserved < 0 {
		problems = append(problems, errs.NewValueIsInvalidError("product.stock"))
	}
	if pricing != nil {
		problems = append(problems, pricing.Validate())
	}
	if err := errors.Join(problems...); err != nil {
		return nil, err
	}

	return &Product{id: id, name: name, sku: sku, inStock: inStock, reserved: reserved, pricing: pricing}, nil
}

func (p *Product) ID() kernel.UUID { return p.id }
func (p *Product) Name() string    { return p.name }
func (p *Product) Sku() string     { return p.sku }
func (p *Product) InStock() int    { return p.inStock }
func (p *Product) Reserved() int   { return p.reserved }

// Pricing returns the pricing for the loaded currency, or nil when the
// product is not sold in it.
func (p *Product) Pricing() *Pricing { return p.pricing }
