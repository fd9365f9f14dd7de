package commands

import (
	"context"
	"errors"

	"orders/internal/core/domain/model/account"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/services"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// CheckoutConfig holds the tunables of order placement.
type CheckoutConfig struct {
	NumberPrefix string
	TaxRate      decimal.Decimal
	Currencies   services.CurrencyResolver
	BcryptCost   int
}

// checkoutPipeline resolves, validates and prices a checkout request inside
// an open unit of work.
type checkoutPipeline struct {
	currencies services.CurrencyResolver
	accounts   AccountResolver
	addresses  AddressSnapshotResolver
	items      itemPricer
	taxRate    decimal.Decimal
}

func newCheckoutPipeline(cfg CheckoutConfig) checkoutPipeline {
	return checkoutPipeline{
		currencies: cfg.Currencies,
		accounts:   NewAccountResolver(cfg.BcryptCost),
		addresses:  NewAddressSnapshotResolver(),
		items:      newItemPricer(),
		taxRate:    cfg.TaxRate,
	}
}

type checkoutPlan struct {
	accountID    kernel.UUID
	shippingID   *kernel.UUID
	billingID    *kernel.UUID
	shipping     kernel.Address
	billing      kernel.Address
	currency     kernel.Currency
	lines        []services.OrderLine
	items        []*order.Item
	shippingCost decimal.Decimal
}

// plan runs every check of order placement. With commit unset nothing is
// written and products are read without locks.
func (p checkoutPipeline) plan(ctx context.Context, uow UoW, cmd CreateOrderCommand, commit bool) (checkoutPlan, error) {
	var (
		plan checkoutPlan
		err  error
	)

	contact := inlineContact(cmd.ShippingAddress())
	if commit {
		plan.accountID, err = p.accounts.Resolve(ctx, uow.AccountRepository(), cmd.Actor(), cmd.Email(), contact)
	} else {
		plan.accountID, err = p.accounts.Lookup(ctx, uow.AccountRepository(), cmd.Actor(), cmd.Email())
	}
	if err != nil {
		return checkoutPlan{}, err
	}

	plan.shippingID, plan.shipping, err = p.addresses.Resolve(
		ctx, uow.AddressRepository(), plan.accountID, cmd.ShippingAddress(), account.AddressShipping,
	)
	if err != nil {
		return checkoutPlan{}, err
	}
	plan.billingID, plan.billing = plan.shippingID, plan.shipping
	if cmd.BillingAddress() != nil {
		plan.billingID, plan.billing, err = p.addresses.Resolve(
			ctx, uow.AddressRepository(), plan.accountID, cmd.BillingAddress(), account.AddressBilling,
		)
		if err != nil {
			return checkoutPlan{}, err
		}
	}

	plan.currency = p.currencies.Resolve(plan.shipping.Country())
	if declared := cmd.Currency(); declared != "" && declared != plan.currency {
		return checkoutPlan{}, errs.NewCurrencyMismatchError(declared.String(), plan.currency.String())
	}

	plan.lines, plan.items, err = p.items.price(ctx, uow, plan.currency, cmd.Lines(), commit)
	if err != nil {
		return checkoutPlan{}, err
	}

	plan.shippingCost, err = uow.ShippingChargeRepository().Find(ctx, plan.shipping.Country(), plan.currency)
	if err != nil {
		return checkoutPlan{}, err
	}
	return plan, nil
}

// inlineContact gives guest accounts a name and phone when the shipping
// address is inline.
func inlineContact(in AddressInput) kernel.Address {
	inline, ok := in.(InlineAddress)
	if !ok {
		return kernel.Address{}
	}
	a, _ := kernel.NewAddress(inline.Fields)
	return a
}

// reserveLines decrements stock for every merged line.
func reserveLines(ctx context.Context, products ProductRepoFactory, lines []services.OrderLine) error {
	repo := products.ProductRepository()
	var violations []errs.StockViolation
	for _, line := range lines {
		err := repo.Reserve(ctx, line.ProductID, line.Quantity)
		var sv *errs.StockViolationError
		if errors.As(err, &sv) {
			violations = append(violations, sv.Violations...)
			continue
		}
		if err != nil {
			return err
		}
	}
	if len(violations) > 0 {
		return errs.NewStockViolationError(violations...)
	}
	return nil
}

// releaseItems returns the stock held by items.
func releaseItems(ctx context.Context, products ProductRepoFactory, items []*order.Item) error {
	repo := products.ProductRepository()
	for _, item := range items {
		if err := repo.Release(ctx, item.ProductID(), item.Quantity()); err != nil {
			return err
		}
	}
	return nil
}

// authorize fails with Unauthorized unless actor may act on o.
func authorize(o *order.Order, actor kernel.Actor) error {
	if o.IsOwnedBy(actor) {
		return nil
	}
	return errs.NewUnauthorizedError("order", actor.ID().String())
}
