package queries

import (
	"errors"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// ListOrdersQuery pages through orders, newest first. Customers see their
// own orders, staff see every order.
type ListOrdersQuery struct {
	actor    kernel.Actor
	page     int
	pageSize int

	guard guard.ConstructorGuard
}

// NewListOrdersQuery treats zero page and page size as defaults.
func NewListOrdersQuery(actor kernel.Actor, page, pageSize int) (ListOrdersQuery, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	var problems []error
	if !actor.IsAuthenticated() && !actor.CanManageAnyOrder() {
		problems = append(problems, errs.NewUnauthorizedError("orders", "guest"))
	}
	if page < 1 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("page", page, 1, "unbounded"))
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		problems = append(problems, errs.NewValueIsOutOfRangeError("pageSize", pageSize, 1, MaxPageSize))
	}
	if err := errors.Join(problems...); err != nil {
		return ListOrdersQuery{}, err
	}

	return ListOrdersQuery{actor: actor, page: page, pageSize: pageSize, guard: guard.NewConstructorGuard()}, nil
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Actor() kernel.Actor { return q.actor }
func (q ListOrdersQuery) Page() int           { return q.page }
func (q ListOrdersQuery) PageSize() int       { return q.pageSize }
func (q ListOrdersQuery) Offset() int         { return (q.page - 1) * q.pageSize }

// OrderSummary is one row of an order listing.
type OrderSummary struct {
	ID            kernel.UUID
	Number        string
	AccountID     kernel.UUID
	Status        string
	PaymentStatus string
	Currency      string
	Total         decimal.Decimal
	ItemCount     int
	CreatedAt     time.Time
}

type ListOrdersQueryResponse struct {
	Orders   []OrderSummary
	Page     int
	PageSize int
	Total    int64
}
