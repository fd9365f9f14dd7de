package order

import (
	"fmt"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	MethodCard          PaymentMethod = "card"
	MethodBankTransfer  PaymentMethod = "bank_transfer"
	MethodPayPal        PaymentMethod = "paypal"
	MethodPayOnDelivery PaymentMethod = "pay_on_delivery"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case MethodCard, MethodBankTransfer, MethodPayPal, MethodPayOnDelivery:
		return m, nil
	case "":
		return MethodCard, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("paymentMethod", fmt.Errorf("%q is not supported", s))
	}
}

// Payment is the settlement record of an order. Its amount follows the order total.
type Payment struct {
	id             kernel.UUID
	amount         decimal.Decimal
	currency       kernel.Currency
	method         PaymentMethod
	status         PaymentStatus
	transactionID  string
	refundedAmount decimal.Decimal
	createdAt      time.Time
	updatedAt      time.Time
}

func newPayment(amount decimal.Decimal, currency kernel.Currency, method PaymentMethod, now time.Time) *Payment {
	return &Payment{
		id:             kernel.NewUUID(),
		amount:         amount,
		currency:       currency,
		method:         method,
		status:         Unpaid,
		refundedAmount: decimal.Zero,
		createdAt:      now,
		updatedAt:      now,
	}
}

// RestoredPayment carries persisted payment columns.
type RestoredPayment struct {
	ID             kernel.UUID
	Amount         decimal.Decimal
	Currency       kernel.Currency
	Method         PaymentMethod
	Status         PaymentStatus
	TransactionID  string
	RefundedAmount decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func RestorePayment(r RestoredPayment) *Payment {
	return &Payment{
		id:             r.ID,
		amount:         r.Amount,
		currency:       r.Currency,
		method:         r.Method,
		status:         r.Status,
		transactionID:  r.TransactionID,
		refundedAmount: r.RefundedAmount,
		createdAt:      r.CreatedAt,
		updatedAt:      r.UpdatedAt,
	}
}

func (p *Payment) ID() kernel.UUID                 { return p.id }
func (p *Payment) Amount() decimal.Decimal         { return p.amount }
func (p *Payment) Currency() kernel.Currency       { return p.currency }
func (p *Payment) Method() PaymentMethod           { return p.method }
func (p *Payment) Status() PaymentStatus           { return p.status }
func (p *Payment) TransactionID() string           { return p.transactionID }
func (p *Payment) RefundedAmount() decimal.Decimal { return p.refundedAmount }
func (p *Payment) CreatedAt() time.Time            { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time            { return p.updatedAt }

func (p *Payment) setStatus(status PaymentStatus, transactionID string, now time.Time) {
	p.status = status
	if transactionID != "" {
		p.transactionID = transactionID
	}
	switch status {
	case Refunded:
		p.refundedAmount = p.amount
	case Unpaid:
		p.refundedAmount = decimal.Zero
	}
	p.updatedAt = now
}

func (p *Payment) resync(amount decimal.Decimal, now time.Time) {
	if p.amount.Equal(amount) {
		return
	}
	p.amount = amount
	p.updatedAt = now
}
