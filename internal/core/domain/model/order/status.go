package order

import (
	"fmt"
	"strings"

	"orders/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
// State transitions:
//
//	pending ──> confirmed ──> processing <──> on_hold ──> shipped ──> delivered
//	   │            │                                        │            │
//	   └────────────┴──> cancelled                           └──> returned <┘
//
// pending may skip straight to processing or on_hold, confirmed may ship
// directly. cancelled and returned are terminal.
type Status int

const (
	// Unknown catches uninitialised values.
	Unknown Status = iota
	Pending
	Confirmed
	Processing
	OnHold
	Shipped
	Delivered
	Cancelled
	Returned
)

var statusNames = map[Status]string{
	Pending:    "pending",
	Confirmed:  "confirmed",
	Processing: "processing",
	OnHold:     "on_hold",
	Shipped:    "shipped",
	Delivered:  "delivered",
	Cancelled:  "cancelled",
	Returned:   "returned",
}

var statusTransitions = map[Status][]Status{
	Pending:    {Confirmed, Processing, OnHold, Cancelled},
	Confirmed:  {Processing, OnHold, Shipped, Cancelled},
	Processing: {OnHold, Shipped},
	OnHold:     {Processing, Shipped},
	Shipped:    {Delivered, Returned},
	Delivered:  {Returned},
	Cancelled:  {},
	Returned:   {},
}

// AllStatuses lists every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{Pending, Confirmed, Processing, OnHold, Shipped, Delivered, Cancelled, Returned}
}

// ParseStatus maps a lower case status name to a Status.
func ParseStatus(s string) (Status, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for status, n := range statusNames {
		if n == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not an order status", s))
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// CanTransitionTo reports whether the table allows s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo returns next when the change is legal.
func (s Status) TransitionTo(next Status) (Status, error) {
	if err := next.Validate(); err != nil {
		return Unknown, err
	}
	if !s.CanTransitionTo(next) {
		return Unknown, errs.NewInvalidTransitionError("order status", s.String(), next.String())
	}
	return next, nil
}

// IsTerminal reports whether no further transition exists.
func (s Status) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// AllowsModification reports whether address, note and item changes are accepted.
func (s Status) AllowsModification() bool {
	return s != Delivered && s != Cancelled && s != Returned
}

// AllowsItemRemoval is stricter than AllowsModification: shipped goods stay on the order.
func (s Status) AllowsItemRemoval() bool {
	return s.AllowsModification() && s != Shipped
}
