package ports

import (
	"context"

	"orders/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// ShippingChargeRepository looks up the flat shipping charge of a destination.
type ShippingChargeRepository interface {
	// Find returns zero when no charge is configured.
	Find(ctx context.Context, country string, currency kernel.Currency) (decimal.Decimal, error)
}

// StorefrontRepository maps request domains to storefronts.
type StorefrontRepository interface {
	// ResolveByDomain returns errs.ErrObjectNotFound for unknown domains.
	ResolveByDomain(ctx context.Context, domain string) (kernel.UUID, error)
}
