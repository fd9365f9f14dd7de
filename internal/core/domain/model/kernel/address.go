package kernel

import (
	"errors"
	"strings"

	"orders/internal/pkg/errs"
)

// Address is the immutable snapshot of a shipping or billing address embedded
// in an order. Later edits to the stored address never reach it.
type Address struct {
	firstName  string
	lastName   string
	phone      string
	street     string
	city       string
	state      string
	postalCode string
	country    string
}

// AddressFields carries the raw values used to build an Address.
type AddressFields struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// NewAddress validates fields and returns the snapshot. Country must be an
// ISO 3166 alpha-2 code and is upper cased.
func NewAddress(f AddressFields) (Address, error) {
	a := Address{
		firstName:  strings.TrimSpace(f.FirstName),
		lastName:   strings.TrimSpace(f.LastName),
		phone:      strings.TrimSpace(f.Phone),
		street:     strings.TrimSpace(f.Street),
		city:       strings.TrimSpace(f.City),
		state:      strings.TrimSpace(f.State),
		postalCode: strings.TrimSpace(f.PostalCode),
		country:    strings.ToUpper(strings.TrimSpace(f.Country)),
	}

	var problems []error
	if a.firstName == "" {
		problems = append(problems, errs.NewValueIsRequiredError("address.firstName"))
	}
	if a.street == "" {
		problems = append(problems, errs.NewValueIsRequiredError("address.street"))
	}
	if a.city == "" {
		problems = append(problems, errs.NewValueIsRequiredError("address.city"))
	}
	if len(a.country) != 2 {
		problems = append(problems, errs.NewValueIsInvalidError("address.country"))
	}
	if err := errors.Join(problems...); err != nil {
		return Address{}, err
	}

	return a, nil
}

func (a Address) FirstName() string  { return a.firstName }
func (a Address) LastName() string   { return a.lastName }
func (a Address) Phone() string      { return a.phone }
func (a Address) Street() string     { return a.street }
func (a Address) City() string       { return a.city }
func (a Address) State() string      { return a.state }
func (a Address) PostalCode() string { return a.postalCode }
func (a Address) Country() string    { return a.country }

// IsZero reports whether the snapshot is empty.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Fields returns a copy of the snapshot as plain values.
func (a Address) Fields() AddressFields {
	return AddressFields{
		FirstName:  a.firstName,
		LastName:   a.lastName,
		Phone:      a.phone,
		Street:     a.street,
		City:       a.city,
		State:      a.state,
		PostalCode: a.postalCode,
		Country:    a.country,
	}
}
