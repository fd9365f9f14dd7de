package commands

import (
	"context"
	"time"

	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"go.uber.org/zap"
)

// AddOrderItemsCommandHandler prices and reserves the new lines. A product
// that is already on the order gets a second line.
type AddOrderItemsCommandHandler struct {
	uowFactory StockUoWFactory
	items      itemPricer
	events     eventNotifier
}

func NewAddOrderItemsCommandHandler(
	uowFactory StockUoWFactory,
	publisher ports.OrderEventPublisher,
	logger *zap.Logger,
) AddOrderItemsCommandHandler {
	return AddOrderItemsCommandHandler{
		uowFactory: uowFactory,
		items:      newItemPricer(),
		events:     newEventNotifier(publisher, logger),
	}
}

func (h *AddOrderItemsCommandHandler) Handle(ctx context.Context, cmd AddOrderItemsCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if err = authorize(o, cmd.Actor()); err != nil {
		return nil, err
	}
	if !o.Status().AllowsModification() {
		return nil, errs.NewInvalidTransitionError("order", o.Status().String(), "add items")
	}

	lines, items, err := h.items.price(ctx, uow, o.Currency(), cmd.Lines(), true)
	if err != nil {
		return nil, err
	}
	if err = reserveLines(ctx, uow, lines); err != nil {
		return nil, err
	}
	if err = o.AddItems(items, cmd.Actor(), time.Now().UTC()); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.events.notify(ctx, ports.OrderUpdated, o)
	return o, nil
}

// RemoveOrderItemsCommandHandler drops lines and returns their stock.
type RemoveOrderItemsCommandHandler struct {
	uowFactory StockUoWFactory
	events     eventNotifier
}

func NewRemoveOrderItemsCommandHandler(
	uowFactory StockUoWFactory,
	publisher ports.OrderEventPublisher,
	logger *zap.Logger,
) RemoveOrderItemsCommandHandler {
	return RemoveOrderItemsCommandHandler{
		uowFactory: uowFactory,
		events:     newEventNotifier(publisher, logger),
	}
}

func (h *RemoveOrderItemsCommandHandler) Handle(ctx context.Context, cmd RemoveOrderItemsCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if err = authorize(o, cmd.Actor()); err != nil {
		return nil, err
	}

	removed, err := o.RemoveItems(cmd.ItemIDs(), cmd.Actor(), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err = releaseItems(ctx, uow, removed); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.events.notify(ctx, ports.OrderUpdated, o)
	return o, nil
}
