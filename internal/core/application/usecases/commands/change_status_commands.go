package commands

import (
	"errors"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var (
	ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
		"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
	)
	ErrChangePaymentStatusCommandIsNotConstructed = errors.New(
		"ChangePaymentStatusCommand must be created via NewChangePaymentStatusCommand constructor",
	)
)

type ChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	actor   kernel.Actor
	orderID kernel.UUID
	status  order.Status
	note    string

	guard guard.ConstructorGuard
}

func NewChangeOrderStatusCommand(
	actor kernel.Actor,
	orderID kernel.UUID,
	status string,
	note string,
) (ChangeOrderStatusCommand, error) {
	var problems []error
	if orderID.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("orderId"))
	}
	parsed, err := parseRequiredStatus(status)
	if err != nil {
		problems = append(problems, err)
	}
	if err = errors.Join(problems...); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	return ChangeOrderStatusCommand{
		actor:   actor,
		orderID: orderID,
		status:  parsed,
		note:    strings.TrimSpace(note),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

func (c ChangeOrderStatusCommand) Actor() kernel.Actor  { return c.actor }
func (c ChangeOrderStatusCommand) OrderID() kernel.UUID { return c.orderID }
func (c ChangeOrderStatusCommand) Status() order.Status { return c.status }
func (c ChangeOrderStatusCommand) Note() string         { return c.note }

type ChangePaymentStatusCommand struct { //nolint:recvcheck //using for validation
	actor         kernel.Actor
	orderID       kernel.UUID
	status        order.PaymentStatus
	transactionID string
	note          string

	guard guard.ConstructorGuard
}

func NewChangePaymentStatusCommand(
	actor kernel.Actor,
	orderID kernel.UUID,
	status string,
	transactionID string,
	note string,
) (ChangePaymentStatusCommand, error) {
	var problems []error
	if orderID.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("orderId"))
	}
	var parsed order.PaymentStatus
	if strings.TrimSpace(status) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("paymentStatus"))
	} else if p, err := order.ParsePaymentStatus(status); err != nil {
		problems = append(problems, err)
	} else {
		parsed = p
	}
	if err := errors.Join(problems...); err != nil {
		return ChangePaymentStatusCommand{}, err
	}

	return ChangePaymentStatusCommand{
		actor:         actor,
		orderID:       orderID,
		status:        parsed,
		transactionID: strings.TrimSpace(transactionID),
		note:          strings.TrimSpace(note),
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c ChangePaymentStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangePaymentStatusCommandIsNotConstructed)
}

func (c ChangePaymentStatusCommand) Actor() kernel.Actor         { return c.actor }
func (c ChangePaymentStatusCommand) OrderID() kernel.UUID        { return c.orderID }
func (c ChangePaymentStatusCommand) Status() order.PaymentStatus { return c.status }
func (c ChangePaymentStatusCommand) TransactionID() string       { return c.transactionID }
func (c ChangePaymentStatusCommand) Note() string                { return c.note }

func parseRequiredStatus(status string) (order.Status, error) {
	if strings.TrimSpace(status) == "" {
		return order.Unknown, errs.NewValueIsRequiredError("status")
	}
	return order.ParseStatus(status)
}
