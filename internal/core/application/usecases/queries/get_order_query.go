// Package queries contains the read side: single orders, order listings and
// sales analytics.
package queries

import (
	"errors"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery or NewGetOrderByNumberQuery constructor",
)

// GetOrderQuery looks an order up by id or by order number.
type GetOrderQuery struct {
	actor  kernel.Actor
	id     kernel.UUID
	number order.Number

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(actor kernel.Actor, id kernel.UUID) (GetOrderQuery, error) {
	if id.IsZero() {
		return GetOrderQuery{}, errs.NewValueIsRequiredError("orderId")
	}
	return GetOrderQuery{actor: actor, id: id, guard: guard.NewConstructorGuard()}, nil
}

func NewGetOrderByNumberQuery(actor kernel.Actor, number string) (GetOrderQuery, error) {
	parsed, err := order.ParseNumber(strings.TrimSpace(number))
	if err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{actor: actor, number: parsed, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) Actor() kernel.Actor  { return q.actor }
func (q GetOrderQuery) ID() kernel.UUID      { return q.id }
func (q GetOrderQuery) Number() order.Number { return q.number }
