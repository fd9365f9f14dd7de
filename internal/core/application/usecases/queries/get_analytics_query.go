package queries

import (
	"errors"
	"strings"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var ErrGetAnalyticsQueryIsNotConstructed = errors.New(
	"GetAnalyticsQuery must be created via NewGetAnalyticsQuery constructor",
)

// GetAnalyticsQuery selects the orders rolled into a report. A nil from
// starts at the earliest order, a nil to ends now.
type GetAnalyticsQuery struct {
	actor        kernel.Actor
	from         *time.Time
	to           *time.Time
	storefrontID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetAnalyticsQuery(actor kernel.Actor, from, to *time.Time, storefrontID *kernel.UUID) (GetAnalyticsQuery, error) {
	var problems []error
	if !actor.CanManageAnyOrder() {
		problems = append(problems, errs.NewUnauthorizedError("analytics", actor.ID().String()))
	}
	if from != nil && to != nil && from.After(*to) {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("from", errors.New("from is after to")))
	}
	if err := errors.Join(problems...); err != nil {
		return GetAnalyticsQuery{}, err
	}

	return GetAnalyticsQuery{
		actor:        actor,
		from:         utcPtr(from),
		to:           utcPtr(to),
		storefrontID: storefrontID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (q GetAnalyticsQuery) Validate() error {
	return q.guard.Validate(ErrGetAnalyticsQueryIsNotConstructed)
}

func (q GetAnalyticsQuery) Actor() kernel.Actor        { return q.actor }
func (q GetAnalyticsQuery) From() *time.Time           { return q.from }
func (q GetAnalyticsQuery) To() *time.Time             { return q.to }
func (q GetAnalyticsQuery) StorefrontID() *kernel.UUID { return q.storefrontID }

// CacheKey identifies the filter, not the resolved window, so open ended
// reports share one entry until it expires or is refreshed.
func (q GetAnalyticsQuery) CacheKey() string {
	parts := []string{"earliest", "now", "all"}
	if q.from != nil {
		parts[0] = q.from.Format(time.RFC3339)
	}
	if q.to != nil {
		parts[1] = q.to.Format(time.RFC3339)
	}
	if q.storefrontID != nil {
		parts[2] = q.storefrontID.String()
	}
	return strings.Join(parts, ":")
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
