// Package productrepo reads the catalog and moves stock between the in_stock
// and reserved counters.
package productrepo

import (
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/product"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name      string     `gorm:"size:255;not null"`
	Sku       string     `gorm:"size:128;index"`
	InStock   int        `gorm:"not null;default:0;check:chk_products_in_stock,in_stock >= 0"`
	Reserved  int        `gorm:"not null;default:0;check:chk_products_reserved,reserved >= 0"`
	Prices    []PriceDTO `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProductDTO) TableName() string {
	return "products"
}

// PriceDTO is the price of a product in one currency.
type PriceDTO struct {
	ProductID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Currency      string          `gorm:"size:3;primaryKey"`
	BasePrice     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DiscountType  string          `gorm:"size:16;not null;default:none"`
	DiscountValue decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
}

func (PriceDTO) TableName() string {
	return "product_prices"
}

func toDomain(dto ProductDTO, price *PriceDTO) (*product.Product, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var pricing *product.Pricing
	if price != nil {
		discountType, err := product.ParseDiscountType(price.DiscountType)
		if err != nil {
			return nil, err
		}
		pricing = &product.Pricing{
			Currency:      kernel.Currency(price.Currency),
			BasePrice:     price.BasePrice,
			DiscountType:  discountType,
			DiscountValue: price.DiscountValue,
		}
	}

	return product.NewProduct(id, dto.Name, dto.Sku, dto.InStock, dto.Reserved, pricing)
}
