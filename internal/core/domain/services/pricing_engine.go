package services

import (
	"fmt"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/model/product"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// OrderLine is a requested product quantity.
type OrderLine struct {
	ProductID kernel.UUID
	Quantity  int
}

// PricingEngine turns catalog pricing into order lines.
//
// Discount rules:
//   - percentage: discount = basePrice * value / 100
//   - fixed:      discount = min(value, basePrice)
//   - none:       discount = 0
//
// The final unit price is basePrice - discount, floored at zero. Unit values
// stay unrounded; rounding happens when a line is totalled.
type PricingEngine struct{}

func NewPricingEngine() PricingEngine {
	return PricingEngine{}
}

// Price returns the final unit price and the unit discount.
func (PricingEngine) Price(p product.Pricing) (decimal.Decimal, decimal.Decimal) {
	base := p.BasePrice
	var discount decimal.Decimal

	switch p.DiscountType {
	case product.DiscountPercentage:
		discount = base.Mul(p.DiscountValue).Div(hundred)
	case product.DiscountFixed:
		discount = decimal.Min(p.DiscountValue, base)
	default:
		discount = decimal.Zero
	}

	final := base.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return final, discount
}

// PriceItems snapshots every line into an order item at the current catalog
// price. Products must already have passed the StockValidator.
func (e PricingEngine) PriceItems(lines []OrderLine, products []*product.Product) ([]*order.Item, error) {
	byID := indexProducts(products)
	items := make([]*order.Item, 0, len(lines))

	for _, line := range lines {
		p, ok := byID[line.ProductID]
		if !ok || p.Pricing() == nil {
			return nil, errs.NewValueIsInvalidErrorWithCause("product", fmt.Errorf("product %s is not priced", line.ProductID))
		}

		final, discount := e.Price(*p.Pricing())
		item, err := order.NewItem(kernel.NewUUID(), order.ItemSnapshot{
			ProductID:    p.ID(),
			Name:         p.Name(),
			Sku:          p.Sku(),
			BasePrice:    p.Pricing().BasePrice,
			UnitPrice:    final,
			UnitDiscount: discount,
			Quantity:     line.Quantity,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func indexProducts(products []*product.Product) map[kernel.UUID]*product.Product {
	byID := make(map[kernel.UUID]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID()] = p
	}
	return byID
}
