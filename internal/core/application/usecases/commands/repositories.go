// Package commands contains the operations that change orders. Every handler
// runs inside one unit of work and either commits all of its writes or none.
package commands

import (
	"context"

	"orders/internal/core/ports"
)

// Unit of Work interfaces narrowed to what each handler touches.
type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	ProductRepoFactory interface {
		ProductRepository() ports.ProductRepository
	}

	AccountRepoFactory interface {
		AccountRepository() ports.AccountRepository
		AddressRepository() ports.AddressRepository
	}

	CheckoutRepoFactory interface {
		SequenceRepository() ports.SequenceRepository
		ShippingChargeRepository() ports.ShippingChargeRepository
	}

	// OrderUoW covers changes to the order aggregate alone, such as payment
	// status transitions.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// StockUoW covers order changes that move stock: cancellation and item removal.
	StockUoW interface {
		TxManager
		OrderRepoFactory
		ProductRepoFactory
	}

	StockUoWFactory interface {
		Create() StockUoW
	}

	// UoW covers the full checkout pipeline: accounts, addresses, catalog,
	// numbering and shipping charges.
	//
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//   ...
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		ProductRepoFactory
		AccountRepoFactory
		CheckoutRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
