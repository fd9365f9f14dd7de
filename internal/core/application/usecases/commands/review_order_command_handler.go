package commands

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// OrderPreview is a priced cart that was not persisted.
type OrderPreview struct {
	Currency        kernel.Currency
	ShippingAddress kernel.Address
	BillingAddress  kernel.Address
	Items           []*order.Item
	TaxRate         decimal.Decimal
	Totals          order.Totals
}

// ReviewOrderCommandHandler runs the checkout checks and pricing without
// writing anything. Its unit of work is always rolled back.
type ReviewOrderCommandHandler struct {
	uowFactory UoWFactory
	pipeline   checkoutPipeline
}

func NewReviewOrderCommandHandler(uowFactory UoWFactory, cfg CheckoutConfig) ReviewOrderCommandHandler {
	return ReviewOrderCommandHandler{
		uowFactory: uowFactory,
		pipeline:   newCheckoutPipeline(cfg),
	}
}

func (h *ReviewOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (OrderPreview, error) {
	if err := cmd.Validate(); err != nil {
		return OrderPreview{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return OrderPreview{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	plan, err := h.pipeline.plan(ctx, uow, cmd, false)
	if err != nil {
		return OrderPreview{}, err
	}

	totals, err := order.ComputeTotals(plan.items, h.pipeline.taxRate, plan.shippingCost)
	if err != nil {
		return OrderPreview{}, err
	}

	return OrderPreview{
		Currency:        plan.currency,
		ShippingAddress: plan.shipping,
		BillingAddress:  plan.billing,
		Items:           plan.items,
		TaxRate:         h.pipeline.taxRate,
		Totals:          totals,
	}, nil
}
