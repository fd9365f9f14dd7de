package commands

import (
	"context"
	"errors"

	"orders/internal/core/domain/model/account"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"
)

// AddressInput is either an AddressByReference or an InlineAddress.
type AddressInput interface {
	isAddressInput()
}

// AddressByReference points at an address stored in the account's address book.
type AddressByReference struct {
	ID kernel.UUID
}

// InlineAddress carries the address fields directly.
type InlineAddress struct {
	Fields kernel.AddressFields
}

func (AddressByReference) isAddressInput() {}
func (InlineAddress) isAddressInput()      {}

// NewAddressInput builds the variant from a request where at most one of id
// and fields may be set. Neither set yields nil, both set is invalid.
func NewAddressInput(param string, id *kernel.UUID, fields *kernel.AddressFields) (AddressInput, error) {
	switch {
	case id != nil && fields != nil:
		return nil, errs.NewValueIsInvalidErrorWithCause(param, errors.New("give either an address id or address fields, not both"))
	case id != nil:
		return AddressByReference{ID: *id}, nil
	case fields != nil:
		return InlineAddress{Fields: *fields}, nil
	default:
		return nil, nil
	}
}

// AddressSnapshotResolver freezes an address for embedding into an order.
type AddressSnapshotResolver struct{}

func NewAddressSnapshotResolver() AddressSnapshotResolver {
	return AddressSnapshotResolver{}
}

// Resolve returns the stored address id (nil for inline input) and the snapshot.
// A reference the owner does not have is reported as invalid input.
func (AddressSnapshotResolver) Resolve(
	ctx context.Context,
	addresses ports.AddressRepository,
	ownerID kernel.UUID,
	input AddressInput,
	role account.AddressType,
) (*kernel.UUID, kernel.Address, error) {
	param := string(role) + "Address"

	switch in := input.(type) {
	case InlineAddress:
		snapshot, err := kernel.NewAddress(in.Fields)
		if err != nil {
			return nil, kernel.Address{}, err
		}
		return nil, snapshot, nil

	case AddressByReference:
		if ownerID.IsZero() {
			return nil, kernel.Address{}, errs.NewValueIsInvalidErrorWithCause(
				param, errs.NewObjectNotFoundError("address", in.ID.String()),
			)
		}
		stored, err := addresses.FindByIDAndOwner(ctx, in.ID, ownerID)
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil, kernel.Address{}, errs.NewValueIsInvalidErrorWithCause(param, err)
		}
		if err != nil {
			return nil, kernel.Address{}, err
		}
		if !stored.Supports(role) {
			return nil, kernel.Address{}, errs.NewValueIsInvalidErrorWithCause(
				param, errors.New("mismatched address type"),
			)
		}
		snapshot, err := stored.Snapshot()
		if err != nil {
			return nil, kernel.Address{}, err
		}
		id := stored.ID()
		return &id, snapshot, nil

	default:
		return nil, kernel.Address{}, errs.NewValueIsRequiredError(param)
	}
}
