package commands

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/services"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var ErrUpdateOrderCommandIsNotConstructed = errors.New(
	"UpdateOrderCommand must be created via NewUpdateOrderCommand constructor",
)

// UpdateOrderParams is a patch. Nil fields are left unchanged.
type UpdateOrderParams struct {
	Actor           kernel.Actor
	OrderID         kernel.UUID
	ShippingAddress AddressInput
	BillingAddress  AddressInput
	// Items replaces the whole item set when non-nil.
	Items    []services.OrderLine
	Notes    *string
	Metadata map[string]any
	Status   string
	Note     string
}

type UpdateOrderCommand struct { //nolint:recvcheck //using for validation
	actor        kernel.Actor
	orderID      kernel.UUID
	shipping     AddressInput
	billing      AddressInput
	replaceItems bool
	lines        []services.OrderLine
	notes        *string
	metadata     map[string]any
	status       order.Status
	note         string

	guard guard.ConstructorGuard
}

func NewUpdateOrderCommand(p UpdateOrderParams) (UpdateOrderCommand, error) {
	cmd := UpdateOrderCommand{
		actor:    p.Actor,
		shipping: p.ShippingAddress,
		billing:  p.BillingAddress,
		metadata: maps.Clone(p.Metadata),
		note:     strings.TrimSpace(p.Note),
		guard:    guard.NewConstructorGuard(),
	}
	if p.Notes != nil {
		notes := strings.TrimSpace(*p.Notes)
		cmd.notes = &notes
	}

	if err := errors.Join(
		cmd.setOrderID(p.OrderID),
		cmd.setLines(p.Items),
		cmd.setStatus(p.Status),
	); err != nil {
		return UpdateOrderCommand{}, err
	}
	if !cmd.HasGeneralChanges() && cmd.status == order.Unknown {
		return UpdateOrderCommand{}, errs.NewValueIsRequiredError("changes")
	}

	return cmd, nil
}

func (c UpdateOrderCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderCommandIsNotConstructed)
}

func (c UpdateOrderCommand) Actor() kernel.Actor           { return c.actor }
func (c UpdateOrderCommand) OrderID() kernel.UUID          { return c.orderID }
func (c UpdateOrderCommand) ShippingAddress() AddressInput { return c.shipping }
func (c UpdateOrderCommand) BillingAddress() AddressInput  { return c.billing }
func (c UpdateOrderCommand) ReplacesItems() bool           { return c.replaceItems }
func (c UpdateOrderCommand) Lines() []services.OrderLine   { return slices.Clone(c.lines) }
func (c UpdateOrderCommand) Notes() *string                { return c.notes }
func (c UpdateOrderCommand) Metadata() map[string]any      { return maps.Clone(c.metadata) }

// Status is order.Unknown when the patch leaves the status alone.
func (c UpdateOrderCommand) Status() order.Status { return c.status }
func (c UpdateOrderCommand) Note() string         { return c.note }

// HasGeneralChanges reports whether anything besides the status is patched.
func (c UpdateOrderCommand) HasGeneralChanges() bool {
	return c.shipping != nil || c.billing != nil || c.replaceItems || c.notes != nil || len(c.metadata) > 0
}

func (c *UpdateOrderCommand) setOrderID(id kernel.UUID) error {
	if id.IsZero() {
		return errs.NewValueIsRequiredError("orderId")
	}
	c.orderID = id
	return nil
}

func (c *UpdateOrderCommand) setLines(lines []services.OrderLine) error {
	if lines == nil {
		return nil
	}
	if _, err := services.MergeLines(lines); err != nil {
		return err
	}
	c.replaceItems = true
	c.lines = slices.Clone(lines)
	return nil
}

func (c *UpdateOrderCommand) setStatus(status string) error {
	if strings.TrimSpace(status) == "" {
		return nil
	}
	parsed, err := order.ParseStatus(status)
	if err != nil {
		return err
	}
	c.status = parsed
	return nil
}
