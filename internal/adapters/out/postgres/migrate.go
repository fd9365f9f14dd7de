package postgres

import (
	"orders/internal/adapters/out/postgres/accountrepo"
	"orders/internal/adapters/out/postgres/orderrepo"
	"orders/internal/adapters/out/postgres/productrepo"
	"orders/internal/adapters/out/postgres/sequencerepo"
	"orders/internal/adapters/out/postgres/storerepo"

	"gorm.io/gorm"
)

// Models lists every table owned by the service in dependency order.
func Models() []any {
	return []any{
		&accountrepo.AccountDTO{},
		&accountrepo.AddressDTO{},
		&storerepo.StorefrontDTO{},
		&storerepo.ShippingChargeDTO{},
		&productrepo.ProductDTO{},
		&productrepo.PriceDTO{},
		&sequencerepo.SequenceDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.ItemDTO{},
		&orderrepo.PaymentDTO{},
		&orderrepo.HistoryDTO{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
