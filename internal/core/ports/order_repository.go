// Package ports defines the contracts between the order domain and its
// infrastructure: repositories bound to a unit of work, the event publisher
// and the analytics cache.
package ports

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
)

// OrderRepository persists order aggregates together with their items,
// payments and history.
type OrderRepository interface {
	// Add persists a new order. A clash on the order number is reported as an
	// error wrapping order.ErrOrderNumberTaken.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes. Items missing from the aggregate are deleted,
	// history is only ever appended.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get loads an order with items, payments and history.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate is Get holding a row lock on the order until the unit of work ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByNumber loads an order by its human readable number.
	GetByNumber(ctx context.Context, number order.Number) (*order.Order, error)
}
