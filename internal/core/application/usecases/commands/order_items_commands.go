package commands

import (
	"errors"
	"slices"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/services"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var (
	ErrAddOrderItemsCommandIsNotConstructed = errors.New(
		"AddOrderItemsCommand must be created via NewAddOrderItemsCommand constructor",
	)
	ErrRemoveOrderItemsCommandIsNotConstructed = errors.New(
		"RemoveOrderItemsCommand must be created via NewRemoveOrderItemsCommand constructor",
	)
)

type AddOrderItemsCommand struct { //nolint:recvcheck //using for validation
	actor   kernel.Actor
	orderID kernel.UUID
	lines   []services.OrderLine

	guard guard.ConstructorGuard
}

func NewAddOrderItemsCommand(actor kernel.Actor, orderID kernel.UUID, lines []services.OrderLine) (AddOrderItemsCommand, error) {
	var problems []error
	if orderID.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("orderId"))
	}
	if _, err := services.MergeLines(lines); err != nil {
		problems = append(problems, err)
	}
	if err := errors.Join(problems...); err != nil {
		return AddOrderItemsCommand{}, err
	}

	return AddOrderItemsCommand{
		actor:   actor,
		orderID: orderID,
		lines:   slices.Clone(lines),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c AddOrderItemsCommand) Validate() error {
	return c.guard.Validate(ErrAddOrderItemsCommandIsNotConstructed)
}

func (c AddOrderItemsCommand) Actor() kernel.Actor         { return c.actor }
func (c AddOrderItemsCommand) OrderID() kernel.UUID        { return c.orderID }
func (c AddOrderItemsCommand) Lines() []services.OrderLine { return slices.Clone(c.lines) }

type RemoveOrderItemsCommand struct { //nolint:recvcheck //using for validation
	actor   kernel.Actor
	orderID kernel.UUID
	itemIDs []kernel.UUID

	guard guard.ConstructorGuard
}

func NewRemoveOrderItemsCommand(actor kernel.Actor, orderID kernel.UUID, itemIDs []kernel.UUID) (RemoveOrderItemsCommand, error) {
	var problems []error
	if orderID.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("orderId"))
	}
	if len(itemIDs) == 0 {
		problems = append(problems, errs.NewValueIsRequiredError("itemIds"))
	}
	if slices.ContainsFunc(itemIDs, kernel.UUID.IsZero) {
		problems = append(problems, errs.NewValueIsInvalidError("itemIds"))
	}
	if err := errors.Join(problems...); err != nil {
		return RemoveOrderItemsCommand{}, err
	}

	return RemoveOrderItemsCommand{
		actor:   actor,
		orderID: orderID,
		itemIDs: slices.Clone(itemIDs),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c RemoveOrderItemsCommand) Validate() error {
	return c.guard.Validate(ErrRemoveOrderItemsCommandIsNotConstructed)
}

func (c RemoveOrderItemsCommand) Actor() kernel.Actor    { return c.actor }
func (c RemoveOrderItemsCommand) OrderID() kernel.UUID   { return c.orderID }
func (c RemoveOrderItemsCommand) ItemIDs() []kernel.UUID { return slices.Clone(c.itemIDs) }
