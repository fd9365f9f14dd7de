package order

import (
	"fmt"
	"strings"

	"orders/internal/pkg/errs"
)

// PaymentStatus tracks settlement of an order independently of fulfilment.
type PaymentStatus int

const (
	PaymentUnknown PaymentStatus = iota
	Unpaid
	PaymentPending
	Paid
	PartiallyRefunded
	Refunded
	PaymentFailed
)

var paymentStatusNames = map[PaymentStatus]string{
	Unpaid:            "unpaid",
	PaymentPending:    "pending",
	Paid:              "paid",
	PartiallyRefunded: "partially_refunded",
	Refunded:          "refunded",
	PaymentFailed:     "failed",
}

// unpaid is reachable from everywhere so staff can reopen settlement.
var paymentStatusTransitions = map[PaymentStatus][]PaymentStatus{
	Unpaid:            {PaymentPending, Paid, PaymentFailed},
	PaymentPending:    {Paid, PaymentFailed, Unpaid},
	Paid:              {PartiallyRefunded, Refunded, Unpaid},
	PartiallyRefunded: {Refunded, Unpaid},
	Refunded:          {Unpaid},
	PaymentFailed:     {PaymentPending, Paid, Unpaid},
}

func AllPaymentStatuses() []PaymentStatus {
	return []PaymentStatus{Unpaid, PaymentPending, Paid, PartiallyRefunded, Refunded, PaymentFailed}
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for status, n := range paymentStatusNames {
		if n == name {
			return status, nil
		}
	}
	return PaymentUnknown, errs.NewValueIsInvalidErrorWithCause(
		"paymentStatus", fmt.Errorf("%q is not a payment status", s),
	)
}

func (s PaymentStatus) String() string {
	if name, ok := paymentStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s PaymentStatus) Validate() error {
	if _, ok := paymentStatusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("paymentStatus", fmt.Errorf("%d is not a valid payment status", s))
	}
	return nil
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
