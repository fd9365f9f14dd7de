// Package storerepo reads storefront domains and flat shipping charges.
package storerepo

import (
	"context"
	"errors"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StorefrontDTO struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name   string    `gorm:"size:128;not null"`
	Domain string    `gorm:"size:255;uniqueIndex;not null"`
}

func (StorefrontDTO) TableName() string {
	return "storefronts"
}

type ShippingChargeDTO struct {
	Country  string          `gorm:"size:2;primaryKey"`
	Currency string          `gorm:"size:3;primaryKey"`
	Amount   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (ShippingChargeDTO) TableName() string {
	return "shipping_charges"
}

// GormStorefrontRepository implements ports.StorefrontRepository.
type GormStorefrontRepository struct {
	db *gorm.DB
}

func NewGormStorefrontRepository(db *gorm.DB) *GormStorefrontRepository {
	return &GormStorefrontRepository{db: db}
}

// ResolveByDomain matches the host without port, case insensitively.
func (r *GormStorefrontRepository) ResolveByDomain(ctx context.Context, domain string) (kernel.UUID, error) {
	host := strings.ToLower(strings.TrimSpace(domain))
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	if host == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError("domain")
	}

	var dto StorefrontDTO
	if err := r.db.WithContext(ctx).First(&dto, "domain = ?", host).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return kernel.UUID{}, errs.NewObjectNotFoundError("storefront", host)
		}
		return kernel.UUID{}, err
	}
	return kernel.UUIDFromBytes(dto.ID[:])
}

// GormShippingChargeRepository implements ports.ShippingChargeRepository.
type GormShippingChargeRepository struct {
	db *gorm.DB
}

func NewGormShippingChargeRepository(db *gorm.DB) *GormShippingChargeRepository {
	return &GormShippingChargeRepository{db: db}
}

func (r *GormShippingChargeRepository) Find(
	ctx context.Context,
	country string,
	currency kernel.Currency,
) (decimal.Decimal, error) {
	var dto ShippingChargeDTO
	err := r.db.WithContext(ctx).
		First(&dto, "country = ? AND currency = ?", strings.ToUpper(country), currency.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return dto.Amount, nil
}
