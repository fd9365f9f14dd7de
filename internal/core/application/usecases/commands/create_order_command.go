package commands

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"orders/internal/core/domain/model/account"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/services"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderParams is the raw checkout request.
type CreateOrderParams struct {
	Actor           kernel.Actor
	Email           string
	StorefrontID    *kernel.UUID
	ShippingAddress AddressInput
	BillingAddress  AddressInput
	// Currency is the currency the client expects to pay in. Empty means
	// whatever the shipping country implies.
	Currency      string
	Items         []services.OrderLine
	PaymentMethod string
	Metadata      map[string]any
	Notes         string
	CouponCode    string
}

// CreateOrderCommand is a validated checkout request. It is also the input
// of a dry-run review.
//
//	cmd, err := NewCreateOrderCommand(CreateOrderParams{
//	    Actor:           kernel.GuestActor(),
//	    Email:           "jane@example.com",
//	    ShippingAddress: InlineAddress{Fields: fields},
//	    Items:           []services.OrderLine{{ProductID: id, Quantity: 2}},
//	})
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	actor         kernel.Actor
	email         string
	storefrontID  *kernel.UUID
	shipping      AddressInput
	billing       AddressInput
	currency      kernel.Currency
	lines         []services.OrderLine
	paymentMethod order.PaymentMethod
	metadata      map[string]any
	notes         string
	couponCode    string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand reports every invalid field at once.
func NewCreateOrderCommand(p CreateOrderParams) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		actor:        p.Actor,
		storefrontID: p.StorefrontID,
		metadata:     maps.Clone(p.Metadata),
		notes:        strings.TrimSpace(p.Notes),
		couponCode:   strings.TrimSpace(p.CouponCode),
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setEmail(p.Actor, p.Email),
		cmd.setShipping(p.ShippingAddress),
		cmd.setBilling(p.BillingAddress),
		cmd.setCurrency(p.Currency),
		cmd.setLines(p.Items),
		cmd.setPaymentMethod(p.PaymentMethod),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Actor() kernel.Actor                { return c.actor }
func (c CreateOrderCommand) Email() string                      { return c.email }
func (c CreateOrderCommand) StorefrontID() *kernel.UUID         { return c.storefrontID }
func (c CreateOrderCommand) ShippingAddress() AddressInput      { return c.shipping }
func (c CreateOrderCommand) BillingAddress() AddressInput       { return c.billing }
func (c CreateOrderCommand) Currency() kernel.Currency          { return c.currency }
func (c CreateOrderCommand) Lines() []services.OrderLine        { return slices.Clone(c.lines) }
func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod { return c.paymentMethod }
func (c CreateOrderCommand) Metadata() map[string]any           { return maps.Clone(c.metadata) }
func (c CreateOrderCommand) Notes() string                      { return c.notes }
func (c CreateOrderCommand) CouponCode() string                 { return c.couponCode }

func (c *CreateOrderCommand) setEmail(actor kernel.Actor, email string) error {
	if email == "" && actor.IsAuthenticated() {
		return nil
	}
	normalized, err := account.NormalizeEmail(email)
	if err != nil {
		return err
	}
	c.email = normalized
	return nil
}

func (c *CreateOrderCommand) setShipping(in AddressInput) error {
	if in == nil {
		return errs.NewValueIsRequiredError("shippingAddress")
	}
	c.shipping = in
	return nil
}

func (c *CreateOrderCommand) setBilling(in AddressInput) error {
	c.billing = in
	return nil
}

func (c *CreateOrderCommand) setCurrency(currency string) error {
	if strings.TrimSpace(currency) == "" {
		return nil
	}
	parsed, err := kernel.ParseCurrency(currency)
	if err != nil {
		return err
	}
	c.currency = parsed
	return nil
}

func (c *CreateOrderCommand) setLines(lines []services.OrderLine) error {
	if _, err := services.MergeLines(lines); err != nil {
		return err
	}
	c.lines = slices.Clone(lines)
	return nil
}

func (c *CreateOrderCommand) setPaymentMethod(method string) error {
	parsed, err := order.ParsePaymentMethod(method)
	if err != nil {
		return err
	}
	c.paymentMethod = parsed
	return nil
}
