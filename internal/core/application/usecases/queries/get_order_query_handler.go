package queries

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"
)

// OrderReader loads whole aggregates outside of a unit of work.
type OrderReader interface {
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
	GetByNumber(ctx context.Context, number order.Number) (*order.Order, error)
}

// GetOrderQueryHandler returns the hydrated order with items, payments and
// history. Customers only see their own orders.
//
// Example:
//
//	handler := NewGetOrderQueryHandler(orderrepo.NewGormOrderRepository(db, tracker))
//	query, _ := NewGetOrderByNumberQuery(actor, "LTS-O-42")
//	o, err := handler.Handle(ctx, query)
type GetOrderQueryHandler struct {
	orders OrderReader
}

func NewGetOrderQueryHandler(orders OrderReader) GetOrderQueryHandler {
	return GetOrderQueryHandler{orders: orders}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var (
		o   *order.Order
		err error
	)
	if query.Number() != "" {
		o, err = h.orders.GetByNumber(ctx, query.Number())
	} else {
		o, err = h.orders.Get(ctx, query.ID())
	}
	if err != nil {
		return nil, err
	}

	if !o.IsOwnedBy(query.Actor()) {
		return nil, errs.NewUnauthorizedError("order", query.Actor().ID().String())
	}
	return o, nil
}
