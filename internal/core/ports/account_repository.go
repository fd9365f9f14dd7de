package ports

import (
	"context"

	"orders/internal/core/domain/model/account"
	"orders/internal/core/domain/model/kernel"
)

type AccountRepository interface {
	// FindByEmail returns errs.ErrObjectNotFound when no account uses email.
	FindByEmail(ctx context.Context, email string) (*account.Account, error)
	Get(ctx context.Context, id kernel.UUID) (*account.Account, error)
	Add(ctx context.Context, a *account.Account) error
}

type AddressRepository interface {
	// FindByIDAndOwner returns errs.ErrObjectNotFound when the address does not
	// exist or belongs to another account.
	FindByIDAndOwner(ctx context.Context, id, ownerID kernel.UUID) (*account.Address, error)
}
