package ports

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/product"
)

// ProductRepository is the catalog as seen by the order engine.
type ProductRepository interface {
	// GetForOrder loads the products with their pricing in currency. Unknown
	// ids are simply absent from the result. With lock set the rows stay
	// locked until the unit of work ends.
	GetForOrder(ctx context.Context, ids []kernel.UUID, currency kernel.Currency, lock bool) ([]*product.Product, error)

	// Reserve decrements in_stock and increments reserved only if in_stock >= quantity.
	// When no row matches it fails with an errs.StockViolationError.
	Reserve(ctx context.Context, productID kernel.UUID, quantity int) error

	// Release returns previously reserved stock.
	Release(ctx context.Context, productID kernel.UUID, quantity int) error
}
