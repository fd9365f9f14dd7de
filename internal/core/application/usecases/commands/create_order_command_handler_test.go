package commands_test

import (
	"errors"
	"testing"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/account"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/model/product"
	"orders/internal/core/domain/services"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func usd(base string) product.Pricing {
	return product.Pricing{Currency: "USD", BasePrice: dec(base), DiscountType: product.DiscountNone}
}

func usFields() kernel.AddressFields {
	return kernel.AddressFields{
		FirstName: "Jane", LastName: "Doe", Phone: "+15550100",
		Street: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US",
	}
}

func gbFields() kernel.AddressFields {
	f := usFields()
	f.City, f.State, f.PostalCode, f.Country = "London", "", "SW1A 1AA", "GB"
	return f
}

func checkoutConfig() commands.CheckoutConfig {
	return commands.CheckoutConfig{
		NumberPrefix: "LTS",
		TaxRate:      dec("0.1"),
		Currencies:   services.NewCurrencyResolver("USD", nil),
		BcryptCost:   bcrypt.MinCost,
	}
}

func guestCheckout(t *testing.T, lines ...services.OrderLine) commands.CreateOrderCommand {
	t.Helper()
	cmd, err := commands.NewCreateOrderCommand(commands.CreateOrderParams{
		Actor:           kernel.GuestActor(),
		Email:           "Jane@Example.com",
		ShippingAddress: commands.InlineAddress{Fields: usFields()},
		Items:           lines,
	})
	require.NoError(t, err)
	return cmd
}

func TestCreateOrderCommandHandler_Handle_GuestCheckout(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 5, usd("10.00"))
	store.seedShipping("US", "USD", "5.00")
	publisher := &recordingPublisher{}

	h := commands.NewCreateOrderCommandHandler(memUoWFactory{store}, checkoutConfig(), publisher, nil)
	o, err := h.Handle(t.Context(), guestCheckout(t, services.OrderLine{ProductID: widget, Quantity: 2}))
	require.NoError(t, err)

	assert.Equal(t, order.Number("LTS-O-1"), o.Number())
	assert.Equal(t, kernel.Currency("USD"), o.Currency())
	assert.True(t, dec("20.00").Equal(o.Subtotal()), o.Subtotal().String())
	assert.True(t, dec("2.00").Equal(o.Tax()), o.Tax().String())
	assert.True(t, dec("5.00").Equal(o.ShippingCost()), o.ShippingCost().String())
	assert.True(t, dec("27.00").Equal(o.Total()), o.Total().String())
	assert.Equal(t, order.Pending, o.Status())
	assert.Equal(t, order.Unpaid, o.PaymentStatus())
	assert.Len(t, o.History(), 1)
	require.Len(t, o.Payments(), 1)
	assert.True(t, o.Total().Equal(o.Payments()[0].Amount()))
	assert.Equal(t, o.ShippingAddress(), o.BillingAddress())

	inStock, reserved := store.stock(widget)
	assert.Equal(t, 3, inStock)
	assert.Equal(t, 2, reserved)

	require.Equal(t, 1, store.accountCount())
	guest, err := (&memUoW{store: store, work: &store.committed}).AccountRepository().FindByEmail(t.Context(), "jane@example.com")
	require.NoError(t, err)
	assert.True(t, guest.IsGuest())
	assert.Equal(t, guest.ID(), o.AccountID())

	assert.Equal(t, []ports.OrderEventType{ports.OrderCreated}, publisher.types())
}

func TestCreateOrderCommandHandler_Handle_ReusesAccountByEmail(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 5, usd("10.00"))
	existing := account.RestoreAccount(kernel.NewUUID(), "jane@example.com", "Jane", "Doe", "", "hash", false)
	store.committed.accounts[existing.ID()] = existing

	h := commands.NewCreateOrderCommandHandler(memUoWFactory{store}, checkoutConfig(), nil, nil)
	o, err := h.Handle(t.Context(), guestCheckout(t, services.OrderLine{ProductID: widget, Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, existing.ID(), o.AccountID())
	assert.Equal(t, 1, store.accountCount())
}

func TestCreateOrderCommandHandler_Handle_StockViolationRollsBack(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 5, usd("10.00"))
	gadget := store.seedProduct("gadget", 0, usd("3.00"))
	gizmo := store.seedProduct("gizmo", 1, usd("7.00"))

	h := commands.NewCreateOrderCommandHandler(memUoWFactory{store}, checkoutConfig(), nil, nil)
	_, err := h.Handle(t.Context(), guestCheckout(t,
		services.OrderLine{ProductID: widget, Quantity: 1},
		services.OrderLine{ProductID: gadget, Quantity: 1},
		services.OrderLine{ProductID: gizmo, Quantity: 3},
	))
	require.ErrorIs(t, err, errs.ErrStockViolation)

	var sv *errs.StockViolationError
	require.ErrorAs(t, err, &sv)
	assert.Len(t, sv.Violations, 2)

	assert.Equal(t, 0, store.orderCount())
	assert.Equal(t, 0, store.accountCount())
	inStock, reserved := store.stock(widget)
	assert.Equal(t, 5, inStock)
	assert.Equal(t, 0, reserved)
	assert.Equal(t, 0, store.commits)
}

func TestCreateOrderCommandHandler_Handle_CurrencyMismatch(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 5, usd("10.00"), product.Pricing{Currency: "GBP", BasePrice: dec("8.00")})

	cmd, err := commands.NewCreateOrderCommand(commands.CreateOrderParams{
		Actor:           kernel.GuestActor(),
		Email:           "jane@example.com",
		ShippingAddress: commands.InlineAddress{Fields: gbFields()},
		Currency:        "USD",
		Items:           []services.OrderLine{{ProductID: widget, Quantity: 1}},
	})
	require.NoError(t, err)

	h := commands.NewCreateOrderCommandHandler(memUoWFactory{store}, checkoutConfig(), nil, nil)
	_, err = h.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrCurrencyMismatch)
	assert.Equal(t, errs.KindCurrencyMismatch, errs.KindOf(err))

	assert.Equal(t, 0, store.orderCount())
	assert.Equal(t, 0, store.accountCount())
	inStock, _ := store.stock(widget)
	assert.Equal(t, 5, inStock)
}

func TestCreateOrderCommandHandler_Handle_ProductNotSoldInCurrency(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 5, product.Pricing{Currency: "EUR", BasePrice: dec("9.00")})

	h := commands.NewCreateOrderCommandHandler(memUoWFactory{store}, checkoutConfig(), nil, nil)
	_, err := h.Handle(t.Context(), guestCheckout(t, services.OrderLine{ProductID: widget, Quantity: 1}))
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidInput, errs.KindOf(err))
	assert.Equal(t, 0, store.orderCount())
}

func TestCreateOrderCommandHandler_Handle_StoredAddressOfAnotherAccount(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 5, usd("10.00"))
	owner := kernel.NewUUID()
	foreign := store.seedAddress(kernel.NewUUID(), account.AddressShipping, usFields())

	cmd, err := commands.NewCreateOrderCommand(commands.CreateOrderParams{
		Actor:           kernel.NewActor(owner, kernel.RoleCustomer),
		ShippingAddress: commands.AddressByReference{ID: foreign},
		Items:           []services.OrderLine{{ProductID: widget, Quantity: 1}},
	})
	require.NoError(t, err)

	h := commands.NewCreateOrderCommandHandler(memUoWFactory{store}, checkoutConfig(), nil, nil)
	_, err = h.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.Equal(t, 0, store.orderCount())
}

func TestCreateOrderCommandHandler_Handle_StoredAddresses(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 5, usd("10.00"))
	owner := kernel.NewUUID()
	shipping := store.seedAddress(owner, account.AddressShipping, usFields())
	billing := store.seedAddress(owner, account.AddressAny, usFields())

	cmd, err := commands.NewCreateOrderCommand(commands.CreateOrderParams{
		Actor:           kernel.NewActor(owner, kernel.RoleCustomer),
		ShippingAddress: commands.AddressByReference{ID: shipping},
		BillingAddress:  commands.AddressByReference{ID: billing},
		PaymentMethod:   "pay_on_delivery",
		Items:           []services.OrderLine{{ProductID: widget, Quantity: 1}},
	})
	require.NoError(t, err)

	h := commands.NewCreateOrderCommandHandler(memUoWFactory{store}, checkoutConfig(), nil, nil)
	o, err := h.Handle(t.Context(), cmd)
	require.NoError(t, err)
	assert.Equal(t, owner, o.AccountID())
	require.NotNil(t, o.ShippingAddressID())
	assert.Equal(t, shipping, *o.ShippingAddressID())
	require.NotNil(t, o.BillingAddressID())
	assert.Equal(t, billing, *o.BillingAddressID())
	assert.Empty(t, o.Payments())
}

func TestCreateOrderCommandHandler_Handle_BillingOnlyAddressAsShipping(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 5, usd("10.00"))
	owner := kernel.NewUUID()
	billingOnly := store.seedAddress(owner, account.AddressBilling, usFields())

	cmd, err := commands.NewCreateOrderCommand(commands.CreateOrderParams{
		Actor:           kernel.NewActor(owner, kernel.RoleCustomer),
		ShippingAddress: commands.AddressByReference{ID: billingOnly},
		Items:           []services.OrderLine{{ProductID: widget, Quantity: 1}},
	})
	require.NoError(t, err)

	h := commands.NewCreateOrderCommandHandler(memUoWFactory{store}, checkoutConfig(), nil, nil)
	_, err = h.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestCreateOrderCommandHandler_Handle_RetriesTakenNumber(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 5, usd("10.00"))
	attempts := 0
	store.addHook = func(o *order.Order) error {
		attempts++
		if attempts == 1 {
			return errs.NewConflictErrorWithCause("order number", o.Number(), order.ErrOrderNumberTaken)
		}
		return nil
	}

	h := commands.NewCreateOrderCommandHandler(memUoWFactory{store}, checkoutConfig(), nil, nil)
	o, err := h.Handle(t.Context(), guestCheckout(t, services.OrderLine{ProductID: widget, Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, store.orderCount())
	assert.Equal(t, o.ID(), store.onlyOrder().ID())
	inStock, _ := store.stock(widget)
	assert.Equal(t, 4, inStock)
}

func TestCreateOrderCommandHandler_Handle_GivesUpAfterThreeTakenNumbers(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 5, usd("10.00"))
	attempts := 0
	store.addHook = func(o *order.Order) error {
		attempts++
		return errs.NewConflictErrorWithCause("order number", o.Number(), order.ErrOrderNumberTaken)
	}

	h := commands.NewCreateOrderCommandHandler(memUoWFactory{store}, checkoutConfig(), nil, nil)
	_, err := h.Handle(t.Context(), guestCheckout(t, services.OrderLine{ProductID: widget, Quantity: 1}))
	require.ErrorIs(t, err, errs.ErrConflict)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 0, store.orderCount())
}

func TestCreateOrderCommandHandler_Handle_PublishFailureKeepsOrder(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 5, usd("10.00"))
	publisher := &recordingPublisher{err: errors.New("broker down")}

	h := commands.NewCreateOrderCommandHandler(memUoWFactory{store}, checkoutConfig(), publisher, nil)
	_, err := h.Handle(t.Context(), guestCheckout(t, services.OrderLine{ProductID: widget, Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, 1, store.orderCount())
	assert.Len(t, publisher.events, 1)
}

func TestCreateOrderCommandHandler_Handle_SequentialNumbers(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 5, usd("10.00"))
	h := commands.NewCreateOrderCommandHandler(memUoWFactory{store}, checkoutConfig(), nil, nil)

	first, err := h.Handle(t.Context(), guestCheckout(t, services.OrderLine{ProductID: widget, Quantity: 1}))
	require.NoError(t, err)
	second, err := h.Handle(t.Context(), guestCheckout(t, services.OrderLine{ProductID: widget, Quantity: 1}))
	require.NoError(t, err)
	assert.Less(t, first.Number().Sequence(), second.Number().Sequence())
}

func TestCreateOrderCommandHandler_Handle_NotConstructed(t *testing.T) {
	h := commands.NewCreateOrderCommandHandler(memUoWFactory{newMemStore()}, checkoutConfig(), nil, nil)
	_, err := h.Handle(t.Context(), commands.CreateOrderCommand{})
	require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
}

func TestReviewOrderCommandHandler_Handle(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 5, usd("10.00"))
	store.seedShipping("US", "USD", "5.00")

	h := commands.NewReviewOrderCommandHandler(memUoWFactory{store}, checkoutConfig())
	preview, err := h.Handle(t.Context(), guestCheckout(t, services.OrderLine{ProductID: widget, Quantity: 2}))
	require.NoError(t, err)

	assert.Equal(t, kernel.Currency("USD"), preview.Currency)
	assert.Len(t, preview.Items, 1)
	assert.True(t, dec("27.00").Equal(preview.Totals.Total), preview.Totals.Total.String())
	assert.Equal(t, 0, store.commits)
	assert.Equal(t, 0, store.accountCount())
	assert.Equal(t, 0, store.orderCount())
	inStock, _ := store.stock(widget)
	assert.Equal(t, 5, inStock)
}

func TestReviewOrderCommandHandler_Handle_ReportsStockViolations(t *testing.T) {
	store := newMemStore()
	widget := store.seedProduct("widget", 1, usd("10.00"))

	h := commands.NewReviewOrderCommandHandler(memUoWFactory{store}, checkoutConfig())
	_, err := h.Handle(t.Context(), guestCheckout(t, services.OrderLine{ProductID: widget, Quantity: 2}))
	require.ErrorIs(t, err, errs.ErrStockViolation)
}
