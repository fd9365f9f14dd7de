package commands

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"orders/internal/core/domain/model/account"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"golang.org/x/crypto/bcrypt"
)

const guestPasswordBytes = 24

// AccountResolver decides which account an order belongs to.
type AccountResolver struct {
	bcryptCost int
}

func NewAccountResolver(bcryptCost int) AccountResolver {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return AccountResolver{bcryptCost: bcryptCost}
}

// Resolve returns the actor's own account when authenticated. Otherwise the
// account registered under email is used, and a guest account with a random
// password is created when there is none.
func (r AccountResolver) Resolve(
	ctx context.Context,
	accounts ports.AccountRepository,
	actor kernel.Actor,
	email string,
	contact kernel.Address,
) (kernel.UUID, error) {
	if actor.IsAuthenticated() {
		return actor.ID(), nil
	}

	existing, err := r.Lookup(ctx, accounts, actor, email)
	if err != nil {
		return kernel.UUID{}, err
	}
	if !existing.IsZero() {
		return existing, nil
	}

	hash, err := r.randomPasswordHash()
	if err != nil {
		return kernel.UUID{}, err
	}
	guest, err := account.NewGuestAccount(kernel.NewUUID(), email, contact, hash)
	if err != nil {
		return kernel.UUID{}, err
	}
	if err := accounts.Add(ctx, guest); err != nil {
		return kernel.UUID{}, err
	}
	return guest.ID(), nil
}

// Lookup is Resolve without creating anything. It returns a zero id when a
// guest's email is not registered yet.
func (r AccountResolver) Lookup(
	ctx context.Context,
	accounts ports.AccountRepository,
	actor kernel.Actor,
	email string,
) (kernel.UUID, error) {
	if actor.IsAuthenticated() {
		return actor.ID(), nil
	}
	if email == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredErrorWithCause("email", errors.New("guest checkout needs an email"))
	}

	found, err := accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return found.ID(), nil
	case errors.Is(err, errs.ErrObjectNotFound):
		return kernel.UUID{}, nil
	default:
		return kernel.UUID{}, err
	}
}

func (r AccountResolver) randomPasswordHash() (string, error) {
	secret := make([]byte, guestPasswordBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate guest password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword(secret, r.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash guest password: %w", err)
	}
	return string(hash), nil
}
