package productrepo

import (
	"context"
	"errors"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/model/product"
	"orders/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ports.ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) GetForOrder(
	ctx context.Context,
	ids []kernel.UUID,
	currency kernel.Currency,
	lock bool,
) ([]*product.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}

	db := r.db.WithContext(ctx)
	query := db.Where("id IN ?", raw).Order("id")
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var dtos []ProductDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	var prices []PriceDTO
	if err := db.Where("product_id IN ? AND currency = ?", raw, currency.String()).Find(&prices).Error; err != nil {
		return nil, err
	}
	byProduct := make(map[uuid.UUID]*PriceDTO, len(prices))
	for i := range prices {
		byProduct[prices[i].ProductID] = &prices[i]
	}

	products := make([]*product.Product, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto, byProduct[dto.ID])
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Reserve is a conditional decrement. A row that no longer has enough stock
// is reported as a stock violation with the current availability.
func (r *GormProductRepository) Reserve(ctx context.Context, productID kernel.UUID, quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, order.MaxItemQuantity)
	}
	db := r.db.WithContext(ctx)

	result := db.Model(&ProductDTO{}).
		Where("id = ? AND in_stock >= ?", productID.Bytes(), quantity).
		Updates(map[string]any{
			"in_stock": gorm.Expr("in_stock - ?", quantity),
			"reserved": gorm.Expr("reserved + ?", quantity),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var current ProductDTO
	if err := db.First(&current, "id = ?", productID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewObjectNotFoundError("product", productID.String())
		}
		return err
	}
	kind := errs.InsufficientStock
	if current.InStock == 0 {
		kind = errs.OutOfStock
	}
	return errs.NewStockViolationError(errs.StockViolation{
		ProductID: productID.String(),
		Name:      current.Name,
		Requested: quantity,
		Available: current.InStock,
		Kind:      kind,
	})
}

func (r *GormProductRepository) Release(ctx context.Context, productID kernel.UUID, quantity int) error {
	if quantity < 1 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&ProductDTO{}).
		Where("id = ?", productID.Bytes()).
		Updates(map[string]any{
			"in_stock": gorm.Expr("in_stock + ?", quantity),
			"reserved": gorm.Expr("GREATEST(reserved - ?, 0)", quantity),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("product", productID.String())
	}
	return nil
}
