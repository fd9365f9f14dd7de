package commands

import (
	"context"
	"time"

	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"go.uber.org/zap"
)

// ChangeOrderStatusCommandHandler runs one order status transition in its
// own unit of work. Cancelling releases the reserved stock.
type ChangeOrderStatusCommandHandler struct {
	uowFactory StockUoWFactory
	events     eventNotifier
	logger     *zap.Logger
}

func NewChangeOrderStatusCommandHandler(
	uowFactory StockUoWFactory,
	publisher ports.OrderEventPublisher,
	logger *zap.Logger,
) ChangeOrderStatusCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		events:     newEventNotifier(publisher, logger),
		logger:     logger,
	}
}

func (h *ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (*order.Order, error) {
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
	if err = authorizeStatusChange(o, cmd.Actor(), cmd.Status()); err != nil {
		return nil, err
	}

	from := o.Status()
	if err = applyStatus(ctx, uow, o, cmd.Status(), cmd.Note(), cmd.Actor(), time.Now().UTC()); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Info("order status changed",
		zap.String("order_id", o.ID().String()),
		zap.String("from", from.String()),
		zap.String("to", o.Status().String()),
	)
	h.events.notify(ctx, ports.OrderStatusChanged, o)
	return o, nil
}

// ChangePaymentStatusCommandHandler runs one payment status transition.
// Only actors that manage orders may change settlement.
type ChangePaymentStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	events     eventNotifier
}

func NewChangePaymentStatusCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.OrderEventPublisher,
	logger *zap.Logger,
) ChangePaymentStatusCommandHandler {
	return ChangePaymentStatusCommandHandler{
		uowFactory: uowFactory,
		events:     newEventNotifier(publisher, logger),
	}
}

func (h *ChangePaymentStatusCommandHandler) Handle(ctx context.Context, cmd ChangePaymentStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if !cmd.Actor().CanManageAnyOrder() {
		return nil, errs.NewUnauthorizedError("payment status", cmd.Actor().ID().String())
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
	err = o.ChangePaymentStatus(cmd.Status(), cmd.TransactionID(), cmd.Note(), cmd.Actor(), time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.events.notify(ctx, ports.OrderPaymentStatusChanged, o)
	return o, nil
}
