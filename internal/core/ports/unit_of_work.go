package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is one database transaction. Repositories obtained from it after
// Begin run inside that transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	// Rollback is a no-op error after Commit, so handlers may always defer it.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	ProductRepository() ProductRepository
	AccountRepository() AccountRepository
	AddressRepository() AddressRepository
	SequenceRepository() SequenceRepository
	ShippingChargeRepository() ShippingChargeRepository
}
