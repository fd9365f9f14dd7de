package kernel

import (
	"fmt"
	"strings"

	"orders/internal/pkg/errs"
)

type Role string

const (
	RoleGuest    Role = "guest"
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
	RoleSystem   Role = "system"
)

// ParseRole maps a role name to a Role. An empty name is a guest.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RoleGuest, nil
	case RoleGuest, RoleCustomer, RoleStaff, RoleAdmin, RoleSystem:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("unknown role %q", s))
	}
}

// Actor is the identity performing an operation. Guests have a zero ID.
type Actor struct {
	id   UUID
	role Role
}

func NewActor(id UUID, role Role) Actor {
	return Actor{id: id, role: role}
}

// GuestActor is an unauthenticated caller.
func GuestActor() Actor {
	return Actor{role: RoleGuest}
}

// SystemActor is used by scheduled jobs.
func SystemActor() Actor {
	return Actor{role: RoleSystem}
}

func (a Actor) ID() UUID   { return a.id }
func (a Actor) Role() Role { return a.role }

// IsAuthenticated reports whether the actor carries an account identity.
func (a Actor) IsAuthenticated() bool {
	return !a.id.IsZero()
}

// CanManageAnyOrder reports whether the actor bypasses order ownership checks.
func (a Actor) CanManageAnyOrder() bool {
	return a.role == RoleAdmin || a.role == RoleStaff || a.role == RoleSystem
}

// Owns reports whether the actor is the given account.
func (a Actor) Owns(accountID UUID) bool {
	return a.IsAuthenticated() && a.id.IsEqual(accountID)
}
