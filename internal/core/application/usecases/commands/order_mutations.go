package commands

import (
	"context"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/services"
	"orders/internal/pkg/errs"
)

// itemPricer validates requested lines against locked catalog rows and
// snapshots them into order items.
type itemPricer struct {
	stock   services.StockValidator
	pricing services.PricingEngine
}

func newItemPricer() itemPricer {
	return itemPricer{
		stock:   services.NewStockValidator(),
		pricing: services.NewPricingEngine(),
	}
}

// price returns the merged lines to reserve and the priced items.
func (p itemPricer) price(
	ctx context.Context,
	products ProductRepoFactory,
	currency kernel.Currency,
	lines []services.OrderLine,
	lock bool,
) ([]services.OrderLine, []*order.Item, error) {
	merged, err := services.MergeLines(lines)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := products.ProductRepository().GetForOrder(ctx, services.ProductIDs(merged), currency, lock)
	if err != nil {
		return nil, nil, err
	}
	valid, err := p.stock.Validate(merged, catalog, currency)
	if err != nil {
		return nil, nil, err
	}
	items, err := p.pricing.PriceItems(valid, catalog)
	if err != nil {
		return nil, nil, err
	}
	return valid, items, nil
}

// authorizeStatusChange lets owners cancel their own orders. Every other
// transition needs an actor that manages orders.
func authorizeStatusChange(o *order.Order, actor kernel.Actor, next order.Status) error {
	if err := authorize(o, actor); err != nil {
		return err
	}
	if next != order.Cancelled && !actor.CanManageAnyOrder() {
		return errs.NewUnauthorizedError("order status", actor.ID().String())
	}
	return nil
}

// applyStatus moves the order and releases its stock when it is cancelled.
func applyStatus(
	ctx context.Context,
	products ProductRepoFactory,
	o *order.Order,
	next order.Status,
	note string,
	actor kernel.Actor,
	now time.Time,
) error {
	if err := o.ChangeStatus(next, note, actor, now); err != nil {
		return err
	}
	if next == order.Cancelled {
		return releaseItems(ctx, products, o.Items())
	}
	return nil
}
