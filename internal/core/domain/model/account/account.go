// Package account models the purchasing account and its stored addresses as
// far as the order engine needs them.
package account

import (
	"fmt"
	"net/mail"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
)

// Account is a customer or guest identity.
type Account struct {
	id           kernel.UUID
	email        string
	firstName    string
	lastName     string
	phone        string
	passwordHash string
	guest        bool
}

// NormalizeEmail trims and lower cases an address and checks its syntax.
func NormalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return "", errs.NewValueIsRequiredError("email")
	}
	if _, err := mail.ParseAddress(e); err != nil {
		return "", errs.NewValueIsInvalidErrorWithCause("email", err)
	}
	return e, nil
}

// NewGuestAccount creates the account of a guest checkout. passwordHash is
// the hash of a random password the guest never sees.
func NewGuestAccount(id kernel.UUID, email string, contact kernel.Address, passwordHash string) (*Account, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, errs.NewValueIsRequiredError("passwordHash")
	}
	if err = id.Validate(); err != nil {
		return nil, err
	}

	return &Account{
		id:           id,
		email:        normalized,
		firstName:    contact.FirstName(),
		lastName:     contact.LastName(),
		phone:        contact.Phone(),
		passwordHash: passwordHash,
		guest:        true,
	}, nil
}

// RestoreAccount rebuilds a stored account.
func RestoreAccount(id kernel.UUID, email, firstName, lastName, phone, passwordHash string, guest bool) *Account {
	return &Account{
		id:           id,
		email:        email,
		firstName:    firstName,
		lastName:     lastName,
		phone:        phone,
		passwordHash: passwordHash,
		guest:        guest,
	}
}

func (a *Account) ID() kernel.UUID      { return a.id }
func (a *Account) Email() string        { return a.email }
func (a *Account) FirstName() string    { return a.firstName }
func (a *Account) LastName() string     { return a.lastName }
func (a *Account) Phone() string        { return a.phone }
func (a *Account) PasswordHash() string { return a.passwordHash }
func (a *Account) IsGuest() bool        { return a.guest }

// AddressType restricts where a stored address may be used.
type AddressType string

const (
	AddressAny      AddressType = ""
	AddressShipping AddressType = "shipping"
	AddressBilling  AddressType = "billing"
)

func ParseAddressType(s string) (AddressType, error) {
	switch t := AddressType(strings.ToLower(strings.TrimSpace(s))); t {
	case AddressAny, AddressShipping, AddressBilling:
		return t, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("addressType", fmt.Errorf("%q is not supported", s))
	}
}

// Address is a stored address owned by an account.
type Address struct {
	id      kernel.UUID
	ownerID kernel.UUID
	kind    AddressType
	fields  kernel.AddressFields
}

func RestoreAddress(id, ownerID kernel.UUID, kind AddressType, fields kernel.AddressFields) *Address {
	return &Address{id: id, ownerID: ownerID, kind: kind, fields: fields}
}

func (a *Address) ID() kernel.UUID              { return a.id }
func (a *Address) OwnerID() kernel.UUID         { return a.ownerID }
func (a *Address) Type() AddressType            { return a.kind }
func (a *Address) Fields() kernel.AddressFields { return a.fields }

// Supports reports whether the address may be used in the given role.
func (a *Address) Supports(role AddressType) bool {
	return a.kind == AddressAny || a.kind == role
}

// Snapshot freezes the stored address for embedding in an order.
func (a *Address) Snapshot() (kernel.Address, error) {
	return kernel.NewAddress(a.fields)
}
