package commands

import (
	"context"
	"errors"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"

	"go.uber.org/zap"
)

const (
	orderNumberSequence    = "order_number"
	maxOrderNumberAttempts = 3
)

// CreateOrderCommandHandler places orders. The whole pipeline runs in one
// unit of work: account resolution, address snapshots, stock validation with
// locked product rows, pricing, numbering, stock reservation and persistence.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, cfg, publisher, logger)
//	o, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return err // errs.KindOf(err) tells the caller what went wrong
//	}
type CreateOrderCommandHandler struct {
	uowFactory   UoWFactory
	pipeline     checkoutPipeline
	numberPrefix string
	events       eventNotifier
	logger       *zap.Logger
}

func NewCreateOrderCommandHandler(
	uowFactory UoWFactory,
	cfg CheckoutConfig,
	publisher ports.OrderEventPublisher,
	logger *zap.Logger,
) CreateOrderCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return CreateOrderCommandHandler{
		uowFactory:   uowFactory,
		pipeline:     newCheckoutPipeline(cfg),
		numberPrefix: cfg.NumberPrefix,
		events:       newEventNotifier(publisher, logger),
		logger:       logger,
	}
}

// Handle retries the whole unit of work when another transaction took the
// allocated order number.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		o, err := h.place(ctx, cmd)
		if errors.Is(err, order.ErrOrderNumberTaken) && attempt < maxOrderNumberAttempts {
			h.logger.Warn("order number taken, retrying", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}

		h.logger.Info("order created",
			zap.String("order_id", o.ID().String()),
			zap.String("order_number", o.Number().String()),
			zap.String("total", o.Total().StringFixed(2)),
			zap.String("currency", o.Currency().String()),
		)
		h.events.notify(ctx, ports.OrderCreated, o)
		return o, nil
	}
}

func (h *CreateOrderCommandHandler) place(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	plan, err := h.pipeline.plan(ctx, uow, cmd, true)
	if err != nil {
		return nil, err
	}

	seq, err := uow.SequenceRepository().Next(ctx, orderNumberSequence)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(order.Params{
		ID:                kernel.NewUUID(),
		Number:            order.FormatNumber(h.numberPrefix, seq),
		AccountID:         plan.accountID,
		StorefrontID:      cmd.StorefrontID(),
		ShippingAddressID: plan.shippingID,
		BillingAddressID:  plan.billingID,
		ShippingAddress:   plan.shipping,
		BillingAddress:    plan.billing,
		Currency:          plan.currency,
		Items:             plan.items,
		TaxRate:           h.pipeline.taxRate,
		ShippingCost:      plan.shippingCost,
		PaymentMethod:     cmd.PaymentMethod(),
		Metadata:          cmd.Metadata(),
		Notes:             cmd.Notes(),
		CouponCode:        cmd.CouponCode(),
		Actor:             cmd.Actor(),
		Now:               time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err = reserveLines(ctx, uow, plan.lines); err != nil {
		return nil, err
	}
	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}
