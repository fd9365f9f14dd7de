package order

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Order is the aggregate root of a placed purchase.
//
// Monetary fields are always derived from the item set, the persisted tax
// rate and the shipping cost; nothing is taken from the caller.
type Order struct {
	id           kernel.UUID
	number       Number
	accountID    kernel.UUID
	storefrontID *kernel.UUID

	shippingAddressID *kernel.UUID
	billingAddressID  *kernel.UUID
	shippingAddress   kernel.Address
	billingAddress    kernel.Address

	currency     kernel.Currency
	items        []*Item
	subtotal     decimal.Decimal
	taxRate      decimal.Decimal
	tax          decimal.Decimal
	shippingCost decimal.Decimal
	discount     decimal.Decimal
	total        decimal.Decimal

	status        Status
	paymentStatus PaymentStatus
	payments      []*Payment
	history       []HistoryEntry

	metadata   map[string]any
	notes      string
	couponCode string

	createdAt time.Time
	updatedAt time.Time

	isConstructed bool
}

// Params holds everything needed to place a new order.
type Params struct {
	ID                kernel.UUID
	Number            Number
	AccountID         kernel.UUID
	StorefrontID      *kernel.UUID
	ShippingAddressID *kernel.UUID
	BillingAddressID  *kernel.UUID
	ShippingAddress   kernel.Address
	BillingAddress    kernel.Address
	Currency          kernel.Currency
	Items             []*Item
	TaxRate           decimal.Decimal
	ShippingCost      decimal.Decimal
	PaymentMethod     PaymentMethod
	Metadata          map[string]any
	Notes             string
	CouponCode        string
	Actor             kernel.Actor
	Now               time.Time
}

// NewOrder places an order in pending/unpaid state, creates its payment
// (except for pay on delivery) and appends the "created" history entry.
func NewOrder(p Params) (*Order, error) {
	o := &Order{
		id:                p.ID,
		number:            p.Number,
		accountID:         p.AccountID,
		storefrontID:      p.StorefrontID,
		shippingAddressID: p.ShippingAddressID,
		billingAddressID:  p.BillingAddressID,
		shippingAddress:   p.ShippingAddress,
		billingAddress:    p.BillingAddress,
		currency:          p.Currency,
		taxRate:           p.TaxRate,
		shippingCost:      kernel.RoundMoney(p.ShippingCost),
		status:            Pending,
		paymentStatus:     Unpaid,
		metadata:          maps.Clone(p.Metadata),
		notes:             p.Notes,
		couponCode:        p.CouponCode,
		createdAt:         p.Now,
		updatedAt:         p.Now,
		isConstructed:     true,
	}
	if o.billingAddress.IsZero() {
		o.billingAddress = o.shippingAddress
	}

	if err := errors.Join(
		o.validateIdentity(),
		o.validatePricingInputs(),
		o.setItems(p.Items),
	); err != nil {
		return nil, err
	}
	if err := o.recalculate(p.Now); err != nil {
		return nil, err
	}

	if p.PaymentMethod != MethodPayOnDelivery {
		method := p.PaymentMethod
		if method == "" {
			method = MethodCard
		}
		o.payments = append(o.payments, newPayment(o.total, o.currency, method, p.Now))
	}

	o.appendHistory("order created", p.Actor, p.Now)
	return o, nil
}

// RestoreParams carries a persisted order.
type RestoreParams struct {
	Params

	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	Status        Status
	PaymentStatus PaymentStatus
	Payments      []*Payment
	History       []HistoryEntry
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RestoreOrder rebuilds an order from storage. Totals are taken as stored.
func RestoreOrder(r RestoreParams) (*Order, error) {
	o := &Order{
		id:                r.ID,
		number:            r.Number,
		accountID:         r.AccountID,
		storefrontID:      r.StorefrontID,
		shippingAddressID: r.ShippingAddressID,
		billingAddressID:  r.BillingAddressID,
		shippingAddress:   r.ShippingAddress,
		billingAddress:    r.BillingAddress,
		currency:          r.Currency,
		items:             slices.Clone(r.Items),
		subtotal:          r.Subtotal,
		taxRate:           r.TaxRate,
		tax:               r.Tax,
		shippingCost:      r.ShippingCost,
		discount:          r.Discount,
		total:             r.Total,
		status:            r.Status,
		paymentStatus:     r.PaymentStatus,
		payments:          slices.Clone(r.Payments),
		history:           slices.Clone(r.History),
		metadata:          maps.Clone(r.Metadata),
		notes:             r.Notes,
		couponCode:        r.CouponCode,
		createdAt:         r.CreatedAt,
		updatedAt:         r.UpdatedAt,
		isConstructed:     true,
	}

	if err := errors.Join(o.validateIdentity(), r.Status.Validate(), r.PaymentStatus.Validate()); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID                 { return o.id }
func (o *Order) Number() Number                  { return o.number }
func (o *Order) AccountID() kernel.UUID          { return o.accountID }
func (o *Order) StorefrontID() *kernel.UUID      { return o.storefrontID }
func (o *Order) ShippingAddressID() *kernel.UUID { return o.shippingAddressID }
func (o *Order) BillingAddressID() *kernel.UUID  { return o.billingAddressID }
func (o *Order) ShippingAddress() kernel.Address { return o.shippingAddress }
func (o *Order) BillingAddress() kernel.Address  { return o.billingAddress }
func (o *Order) Currency() kernel.Currency       { return o.currency }
func (o *Order) Items() []*Item                  { return slices.Clone(o.items) }
func (o *Order) Subtotal() decimal.Decimal       { return o.subtotal }
func (o *Order) TaxRate() decimal.Decimal        { return o.taxRate }
func (o *Order) Tax() decimal.Decimal            { return o.tax }
func (o *Order) ShippingCost() decimal.Decimal   { return o.shippingCost }
func (o *Order) Discount() decimal.Decimal       { return o.discount }
func (o *Order) Total() decimal.Decimal          { return o.total }
func (o *Order) Status() Status                  { return o.status }
func (o *Order) PaymentStatus() PaymentStatus    { return o.paymentStatus }
func (o *Order) Payments() []*Payment            { return slices.Clone(o.payments) }
func (o *Order) History() []HistoryEntry         { return slices.Clone(o.history) }
func (o *Order) Metadata() map[string]any        { return maps.Clone(o.metadata) }
func (o *Order) Notes() string                   { return o.notes }
func (o *Order) CouponCode() string              { return o.couponCode }
func (o *Order) CreatedAt() time.Time            { return o.createdAt }
func (o *Order) UpdatedAt() time.Time            { return o.updatedAt }

// IsOwnedBy reports whether the actor may act on the order.
func (o *Order) IsOwnedBy(actor kernel.Actor) bool {
	return actor.CanManageAnyOrder() || actor.Owns(o.accountID)
}

// ReplaceItems swaps the whole item set and re-derives totals. Replacing drops
// the current lines, so it follows the item removal rule. The caller records
// history through RecordUpdate.
func (o *Order) ReplaceItems(items []*Item, now time.Time) error {
	if !o.status.AllowsItemRemoval() {
		return errs.NewInvalidTransitionError("order items", o.status.String(), "replace items")
	}
	if err := o.setItems(items); err != nil {
		return err
	}
	return o.recalculate(now)
}

// AddItems appends lines and appends one history entry.
func (o *Order) AddItems(items []*Item, actor kernel.Actor, now time.Time) error {
	if err := o.ensureModifiable("add items"); err != nil {
		return err
	}
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	if err := o.setItems(append(slices.Clone(o.items), items...)); err != nil {
		return err
	}
	if err := o.recalculate(now); err != nil {
		return err
	}
	o.appendHistory(fmt.Sprintf("%d item(s) added", len(items)), actor, now)
	return nil
}

// RemoveItems drops the given lines and returns them so their stock can be released.
func (o *Order) RemoveItems(itemIDs []kernel.UUID, actor kernel.Actor, now time.Time) ([]*Item, error) {
	if !o.status.AllowsItemRemoval() {
		return nil, errs.NewInvalidTransitionError("order items", o.status.String(), "remove items")
	}
	if len(itemIDs) == 0 {
		return nil, errs.NewValueIsRequiredError("itemIds")
	}

	remaining := make([]*Item, 0, len(o.items))
	removed := make([]*Item, 0, len(itemIDs))
	for _, item := range o.items {
		if slices.ContainsFunc(itemIDs, item.id.IsEqual) {
			removed = append(removed, item)
			continue
		}
		remaining = append(remaining, item)
	}

	for _, id := range itemIDs {
		if !slices.ContainsFunc(removed, func(i *Item) bool { return i.id.IsEqual(id) }) {
			return nil, errs.NewObjectNotFoundError("orderItem", id.String())
		}
	}
	if len(remaining) == 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"itemIds", errors.New("an order must keep at least one item, cancel it instead"),
		)
	}

	o.items = remaining
	if err := o.recalculate(now); err != nil {
		return nil, err
	}
	o.appendHistory(fmt.Sprintf("%d item(s) removed", len(removed)), actor, now)
	return removed, nil
}

// ChangeShippingAddress stores a new reference and snapshot. The settlement
// currency is fixed at creation, so the resolver passes the currency implied
// by the new country for comparison.
func (o *Order) ChangeShippingAddress(
	addressID *kernel.UUID,
	snapshot kernel.Address,
	impliedCurrency kernel.Currency,
	now time.Time,
) error {
	if err := o.ensureModifiable("change shipping address"); err != nil {
		return err
	}
	if impliedCurrency != o.currency {
		return errs.NewCurrencyMismatchError(o.currency.String(), impliedCurrency.String())
	}
	o.shippingAddressID = addressID
	o.shippingAddress = snapshot
	o.updatedAt = now
	return nil
}

func (o *Order) ChangeBillingAddress(addressID *kernel.UUID, snapshot kernel.Address, now time.Time) error {
	if err := o.ensureModifiable("change billing address"); err != nil {
		return err
	}
	o.billingAddressID = addressID
	o.billingAddress = snapshot
	o.updatedAt = now
	return nil
}

func (o *Order) ChangeNotes(notes string, now time.Time) error {
	if err := o.ensureModifiable("change notes"); err != nil {
		return err
	}
	o.notes = notes
	o.updatedAt = now
	return nil
}

// MergeMetadata sets the given keys; a nil value deletes the key.
func (o *Order) MergeMetadata(patch map[string]any, now time.Time) error {
	if err := o.ensureModifiable("change metadata"); err != nil {
		return err
	}
	if o.metadata == nil {
		o.metadata = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		if v == nil {
			delete(o.metadata, k)
			continue
		}
		o.metadata[k] = v
	}
	o.updatedAt = now
	return nil
}

// RecordUpdate appends the single "order updated" entry of a patch.
func (o *Order) RecordUpdate(note string, actor kernel.Actor, now time.Time) {
	if note == "" {
		note = "order updated"
	}
	o.appendHistory(note, actor, now)
}

// ChangeStatus moves the order along the status table and audits it.
func (o *Order) ChangeStatus(next Status, note string, actor kernel.Actor, now time.Time) error {
	to, err := o.status.TransitionTo(next)
	if err != nil {
		return err
	}

	if note == "" {
		note = fmt.Sprintf("status changed from %s to %s", o.status, to)
	}
	o.status = to
	o.updatedAt = now
	o.appendHistory(note, actor, now)
	return nil
}

// ChangePaymentStatus moves the payment status and keeps the payment row in
// step. Capturing a pay-on-delivery order creates its payment.
func (o *Order) ChangePaymentStatus(
	next PaymentStatus,
	transactionID string,
	note string,
	actor kernel.Actor,
	now time.Time,
) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if o.paymentStatus == Paid && o.status == Delivered && next != Unpaid {
		return errs.NewInvalidTransitionError("payment status of a delivered order", o.paymentStatus.String(), next.String())
	}
	if !o.paymentStatus.CanTransitionTo(next) {
		return errs.NewInvalidTransitionError("payment status", o.paymentStatus.String(), next.String())
	}

	if len(o.payments) == 0 && (next == Paid || next == PaymentPending) {
		o.payments = append(o.payments, newPayment(o.total, o.currency, MethodPayOnDelivery, now))
	}
	for _, p := range o.payments {
		p.setStatus(next, transactionID, now)
	}

	if note == "" {
		note = fmt.Sprintf("payment status changed from %s to %s", o.paymentStatus, next)
	}
	o.paymentStatus = next
	o.updatedAt = now
	o.appendHistory(note, actor, now)
	return nil
}

func (o *Order) ensureModifiable(action string) error {
	if !o.status.AllowsModification() {
		return errs.NewInvalidTransitionError("order", o.status.String(), action)
	}
	return nil
}

func (o *Order) setItems(items []*Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	if slices.Contains(items, nil) {
		return errs.NewValueIsInvalidError("items")
	}
	o.items = slices.Clone(items)
	return nil
}

// Totals are the monetary fields derived from an item set.
type Totals struct {
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	Tax          decimal.Decimal
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
}

// ComputeTotals applies subtotal + tax + shipping - discount with every sum
// rounded to cents. The subtotal rounds the unrounded quantity * unit price sum
// once. A negative total is invalid input.
func ComputeTotals(items []*Item, taxRate, shippingCost decimal.Decimal) (Totals, error) {
	amounts := make([]decimal.Decimal, 0, len(items))
	lineDiscounts := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		amounts = append(amounts, item.unitPrice.Mul(decimal.NewFromInt(int64(item.quantity))))
		lineDiscounts = append(lineDiscounts, item.discount)
	}

	t := Totals{
		Subtotal:     kernel.SumMoney(amounts...),
		Discount:     kernel.SumMoney(lineDiscounts...),
		ShippingCost: kernel.RoundMoney(shippingCost),
	}
	t.Tax = kernel.RoundMoney(t.Subtotal.Mul(taxRate))
	t.Total = kernel.RoundMoney(t.Subtotal.Add(t.Tax).Add(t.ShippingCost).Sub(t.Discount))
	if t.Total.IsNegative() {
		return Totals{}, errs.NewValueIsInvalidErrorWithCause("total", fmt.Errorf("order total %s is negative", t.Total))
	}
	return t, nil
}

// recalculate derives every monetary field from the current item set.
func (o *Order) recalculate(now time.Time) error {
	t, err := ComputeTotals(o.items, o.taxRate, o.shippingCost)
	if err != nil {
		return err
	}

	o.subtotal, o.discount, o.tax, o.total = t.Subtotal, t.Discount, t.Tax, t.Total
	for _, p := range o.payments {
		p.resync(t.Total, now)
	}
	o.updatedAt = now
	return nil
}

func (o *Order) appendHistory(note string, actor kernel.Actor, now time.Time) {
	o.history = append(o.history, newHistoryEntry(o.status, note, actor, now))
}

func (o *Order) validateIdentity() error {
	var problems []error
	if err := o.id.Validate(); err != nil {
		problems = append(problems, err)
	}
	if err := o.accountID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("accountId", err))
	}
	if o.number.Sequence() < 1 {
		problems = append(problems, errs.NewValueIsInvalidError("orderNumber"))
	}
	if o.shippingAddress.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("shippingAddress"))
	}
	if _, err := kernel.ParseCurrency(o.currency.String()); err != nil {
		problems = append(problems, err)
	}
	return errors.Join(problems...)
}

func (o *Order) validatePricingInputs() error {
	var problems []error
	if o.taxRate.IsNegative() || o.taxRate.GreaterThan(decimal.NewFromInt(1)) {
		problems = append(problems, errs.NewValueIsOutOfRangeError("taxRate", o.taxRate, 0, 1))
	}
	if o.shippingCost.IsNegative() {
		problems = append(problems, errs.NewValueIsInvalidError("shippingCost"))
	}
	return errors.Join(problems...)
}
