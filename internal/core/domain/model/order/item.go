package order

import (
	"errors"
	"fmt"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// MaxItemQuantity bounds a single line.
const MaxItemQuantity = 10000

// Item is a frozen copy of a purchased product line. Items are never edited;
// changing a line means replacing it.
type Item struct {
	id        kernel.UUID
	productID kernel.UUID
	name      string
	sku       string
	basePrice decimal.Decimal
	unitPrice decimal.Decimal
	discount  decimal.Decimal
	quantity  int
	lineTotal decimal.Decimal
}

// ItemSnapshot is the catalog data captured into an Item.
type ItemSnapshot struct {
	ProductID    kernel.UUID
	Name         string
	Sku          string
	BasePrice    decimal.Decimal
	UnitPrice    decimal.Decimal
	UnitDiscount decimal.Decimal
	Quantity     int
}

// NewItem builds a line from a priced snapshot. The line total and line
// discount are rounded to cents.
func NewItem(id kernel.UUID, s ItemSnapshot) (*Item, error) {
	var problems []error
	if err := id.Validate(); err != nil {
		problems = append(problems, err)
	}
	if err := s.ProductID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("item.productId", err))
	}
	if strings.TrimSpace(s.Name) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("item.name"))
	}
	if s.Quantity < 1 || s.Quantity > MaxItemQuantity {
		problems = append(problems, errs.NewValueIsOutOfRangeError("item.quantity", s.Quantity, 1, MaxItemQuantity))
	}
	if s.UnitPrice.IsNegative() || s.BasePrice.IsNegative() || s.UnitDiscount.IsNegative() {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"item.price", fmt.Errorf("negative price for product %s", s.ProductID),
		))
	}
	if err := errors.Join(problems...); err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(int64(s.Quantity))
	return &Item{
		id:        id,
		productID: s.ProductID,
		name:      s.Name,
		sku:       s.Sku,
		basePrice: s.BasePrice,
		unitPrice: s.UnitPrice,
		discount:  kernel.RoundMoney(s.UnitDiscount.Mul(qty)),
		quantity:  s.Quantity,
		lineTotal: kernel.RoundMoney(s.UnitPrice.Mul(qty)),
	}, nil
}

// RestoredItem carries persisted item columns.
type RestoredItem struct {
	ID        kernel.UUID
	ProductID kernel.UUID
	Name      string
	Sku       string
	BasePrice decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
}

// RestoreItem rebuilds an item from storage without re-pricing.
func RestoreItem(r RestoredItem) *Item {
	return &Item{
		id:        r.ID,
		productID: r.ProductID,
		name:      r.Name,
		sku:       r.Sku,
		basePrice: r.BasePrice,
		unitPrice: r.UnitPrice,
		discount:  r.Discount,
		quantity:  r.Quantity,
		lineTotal: r.LineTotal,
	}
}

func (i *Item) ID() kernel.UUID            { return i.id }
func (i *Item) ProductID() kernel.UUID     { return i.productID }
func (i *Item) Name() string               { return i.name }
func (i *Item) Sku() string                { return i.sku }
func (i *Item) BasePrice() decimal.Decimal { return i.basePrice }
func (i *Item) UnitPrice() decimal.Decimal { return i.unitPrice }
func (i *Item) Quantity() int              { return i.quantity }

// Discount is the discount of the whole line (unit discount times quantity).
func (i *Item) Discount() decimal.Decimal { return i.discount }

// LineTotal is round(quantity * unitPrice).
func (i *Item) LineTotal() decimal.Decimal { return i.lineTotal }
