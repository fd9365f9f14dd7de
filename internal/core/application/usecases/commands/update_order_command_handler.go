package commands

import (
	"context"
	"time"

	"orders/internal/core/domain/model/account"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/services"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"go.uber.org/zap"
)

type UpdateOrderCommandHandler struct {
	uowFactory UoWFactory
	currencies services.CurrencyResolver
	addresses  AddressSnapshotResolver
	items      itemPricer
	events     eventNotifier
}

func NewUpdateOrderCommandHandler(
	uowFactory UoWFactory,
	currencies services.CurrencyResolver,
	publisher ports.OrderEventPublisher,
	logger *zap.Logger,
) UpdateOrderCommandHandler {
	return UpdateOrderCommandHandler{
		uowFactory: uowFactory,
		currencies: currencies,
		addresses:  NewAddressSnapshotResolver(),
		items:      newItemPricer(),
		events:     newEventNotifier(publisher, logger),
	}
}

// Handle applies the patch to a locked order. General changes are audited
// with one "order updated" entry, a status change with its own entry.
func (h *UpdateOrderCommandHandler) Handle(ctx context.Context, cmd UpdateOrderCommand) (*order.Order, error) {
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
	if cmd.Status() != order.Unknown {
		err = authorizeStatusChange(o, cmd.Actor(), cmd.Status())
	} else {
		err = authorize(o, cmd.Actor())
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if cmd.HasGeneralChanges() {
		if err = h.applyChanges(ctx, uow, o, cmd, now); err != nil {
			return nil, err
		}
		o.RecordUpdate(cmd.Note(), cmd.Actor(), now)
	}
	if cmd.Status() != order.Unknown {
		if err = applyStatus(ctx, uow, o, cmd.Status(), cmd.Note(), cmd.Actor(), now); err != nil {
			return nil, err
		}
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if cmd.HasGeneralChanges() {
		h.events.notify(ctx, ports.OrderUpdated, o)
	}
	if cmd.Status() != order.Unknown {
		h.events.notify(ctx, ports.OrderStatusChanged, o)
	}
	return o, nil
}

func (h *UpdateOrderCommandHandler) applyChanges(
	ctx context.Context,
	uow UoW,
	o *order.Order,
	cmd UpdateOrderCommand,
	now time.Time,
) error {
	if in := cmd.ShippingAddress(); in != nil {
		id, snapshot, err := h.addresses.Resolve(ctx, uow.AddressRepository(), o.AccountID(), in, account.AddressShipping)
		if err != nil {
			return err
		}
		if err = o.ChangeShippingAddress(id, snapshot, h.currencies.Resolve(snapshot.Country()), now); err != nil {
			return err
		}
	}
	if in := cmd.BillingAddress(); in != nil {
		id, snapshot, err := h.addresses.Resolve(ctx, uow.AddressRepository(), o.AccountID(), in, account.AddressBilling)
		if err != nil {
			return err
		}
		if err = o.ChangeBillingAddress(id, snapshot, now); err != nil {
			return err
		}
	}

	if cmd.ReplacesItems() {
		if err := h.replaceItems(ctx, uow, o, cmd, now); err != nil {
			return err
		}
	}

	if notes := cmd.Notes(); notes != nil {
		if err := o.ChangeNotes(*notes, now); err != nil {
			return err
		}
	}
	if patch := cmd.Metadata(); len(patch) > 0 {
		if err := o.MergeMetadata(patch, now); err != nil {
			return err
		}
	}
	return nil
}

// replaceItems returns the stock of the current items before validating the
// new set, so a product kept in the cart can reuse its own reservation.
func (h *UpdateOrderCommandHandler) replaceItems(
	ctx context.Context,
	uow UoW,
	o *order.Order,
	cmd UpdateOrderCommand,
	now time.Time,
) error {
	if !o.Status().AllowsItemRemoval() {
		return errs.NewInvalidTransitionError("order items", o.Status().String(), "replace items")
	}
	if err := releaseItems(ctx, uow, o.Items()); err != nil {
		return err
	}
	lines, items, err := h.items.price(ctx, uow, o.Currency(), cmd.Lines(), true)
	if err != nil {
		return err
	}
	if err = reserveLines(ctx, uow, lines); err != nil {
		return err
	}
	return o.ReplaceItems(items, now)
}
