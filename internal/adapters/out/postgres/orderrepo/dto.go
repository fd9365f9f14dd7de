// Package orderrepo maps the order aggregate onto the orders, order_items,
// order_payments and order_history tables.
package orderrepo

import (
	"encoding/json"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderDTO is the orders row. Address snapshots are embedded so an order keeps
// the address it was placed with even if the account edits its address book.
type OrderDTO struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Number            string     `gorm:"column:order_number;size:64;uniqueIndex;not null"`
	AccountID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	StorefrontID      *uuid.UUID `gorm:"type:uuid;index"`
	ShippingAddressID *uuid.UUID `gorm:"type:uuid"`
	BillingAddressID  *uuid.UUID `gorm:"type:uuid"`

	ShippingAddress AddressDTO `gorm:"embedded;embeddedPrefix:shipping_"`
	BillingAddress  AddressDTO `gorm:"embedded;embeddedPrefix:billing_"`

	Currency      string          `gorm:"size:3;index;not null"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TaxRate       decimal.Decimal `gorm:"type:numeric(6,4);not null"`
	Tax           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ShippingCost  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Discount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null;check:chk_orders_total_non_negative,total >= 0"`
	Status        string          `gorm:"size:32;index;not null"`
	PaymentStatus string          `gorm:"size:32;index;not null"`

	Metadata   datatypes.JSON `gorm:"type:jsonb"`
	Notes      string         `gorm:"type:text"`
	CouponCode string         `gorm:"size:64"`

	Items    []ItemDTO    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments []PaymentDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History  []HistoryDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type AddressDTO struct {
	FirstName  string `gorm:"size:128"`
	LastName   string `gorm:"size:128"`
	Phone      string `gorm:"size:64"`
	Street     string `gorm:"size:255"`
	City       string `gorm:"size:128"`
	State      string `gorm:"size:128"`
	PostalCode string `gorm:"size:32"`
	Country    string `gorm:"size:2"`
}

type ItemDTO struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name      string          `gorm:"size:255;not null"`
	Sku       string          `gorm:"size:128"`
	BasePrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(18,6);not null"`
	Discount  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity  int             `gorm:"not null;check:chk_order_items_quantity,quantity BETWEEN 1 AND 10000"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (ItemDTO) TableName() string {
	return "order_items"
}

type PaymentDTO struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency       string          `gorm:"size:3;not null"`
	Method         string          `gorm:"size:32;not null"`
	Status         string          `gorm:"size:32;not null"`
	TransactionID  *string         `gorm:"size:128;uniqueIndex"`
	RefundedAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (PaymentDTO) TableName() string {
	return "order_payments"
}

// HistoryDTO is one audit entry. Position is the entry's index in the
// append-only trail and is the read order; created_at can tie.
type HistoryDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_order_history_position,priority:1"`
	Position  int        `gorm:"not null;uniqueIndex:idx_order_history_position,priority:2"`
	Status    string     `gorm:"size:32;not null"`
	Note      string     `gorm:"type:text"`
	ActorID   *uuid.UUID `gorm:"type:uuid"`
	ActorRole string     `gorm:"size:32"`
	CreatedAt time.Time  `gorm:"index"`
}

func (HistoryDTO) TableName() string {
	return "order_history"
}

func optionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func addressFromDomain(a kernel.Address) AddressDTO {
	f := a.Fields()
	return AddressDTO{
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Phone:      f.Phone,
		Street:     f.Street,
		City:       f.City,
		State:      f.State,
		PostalCode: f.PostalCode,
		Country:    f.Country,
	}
}

func fromDomain(o *order.Order) (OrderDTO, error) {
	metadata, err := json.Marshal(o.Metadata())
	if err != nil {
		return OrderDTO{}, err
	}

	dto := OrderDTO{
		ID:                o.ID().Bytes(),
		Number:            o.Number().String(),
		AccountID:         o.AccountID().Bytes(),
		StorefrontID:      optionalID(o.StorefrontID()),
		ShippingAddressID: optionalID(o.ShippingAddressID()),
		BillingAddressID:  optionalID(o.BillingAddressID()),
		ShippingAddress:   addressFromDomain(o.ShippingAddress()),
		BillingAddress:    addressFromDomain(o.BillingAddress()),
		Currency:          o.Currency().String(),
		Subtotal:          o.Subtotal(),
		TaxRate:           o.TaxRate(),
		Tax:               o.Tax(),
		ShippingCost:      o.ShippingCost(),
		Discount:          o.Discount(),
		Total:             o.Total(),
		Status:            o.Status().String(),
		PaymentStatus:     o.PaymentStatus().String(),
		Metadata:          datatypes.JSON(metadata),
		Notes:             o.Notes(),
		CouponCode:        o.CouponCode(),
		CreatedAt:         o.CreatedAt(),
		UpdatedAt:         o.UpdatedAt(),
	}

	for _, item := range o.Items() {
		dto.Items = append(dto.Items, ItemDTO{
			ID:        item.ID().Bytes(),
			OrderID:   dto.ID,
			ProductID: item.ProductID().Bytes(),
			Name:      item.Name(),
			Sku:       item.Sku(),
			BasePrice: item.BasePrice(),
			UnitPrice: item.UnitPrice(),
			Discount:  item.Discount(),
			Quantity:  item.Quantity(),
			LineTotal: item.LineTotal(),
		})
	}
	for _, p := range o.Payments() {
		dto.Payments = append(dto.Payments, PaymentDTO{
			ID:             p.ID().Bytes(),
			OrderID:        dto.ID,
			Amount:         p.Amount(),
			Currency:       p.Currency().String(),
			Method:         string(p.Method()),
			Status:         p.Status().String(),
			TransactionID:  optionalString(p.TransactionID()),
			RefundedAmount: p.RefundedAmount(),
			CreatedAt:      p.CreatedAt(),
			UpdatedAt:      p.UpdatedAt(),
		})
	}
	for position, h := range o.History() {
		var actorID *uuid.UUID
		if !h.ActorID().IsZero() {
			raw := h.ActorID().Bytes()
			actorID = &raw
		}
		dto.History = append(dto.History, HistoryDTO{
			ID:        h.ID().Bytes(),
			OrderID:   dto.ID,
			Position:  position,
			Status:    h.Status().String(),
			Note:      h.Note(),
			ActorID:   actorID,
			ActorRole: string(h.ActorRole()),
			CreatedAt: h.CreatedAt(),
		})
	}
	return dto, nil
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	accountID, err := kernel.UUIDFromBytes(dto.AccountID[:])
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := order.ParsePaymentStatus(dto.PaymentStatus)
	if err != nil {
		return nil, err
	}
	shipping, err := addressToDomain(dto.ShippingAddress)
	if err != nil {
		return nil, err
	}
	billing, err := addressToDomain(dto.BillingAddress)
	if err != nil {
		return nil, err
	}

	var metadata map[string]any
	if len(dto.Metadata) > 0 {
		if err := json.Unmarshal(dto.Metadata, &metadata); err != nil {
			return nil, err
		}
	}

	items := make([]*order.Item, 0, len(dto.Items))
	for _, i := range dto.Items {
		items = append(items, order.RestoreItem(order.RestoredItem{
			ID:        mustUUID(i.ID),
			ProductID: mustUUID(i.ProductID),
			Name:      i.Name,
			Sku:       i.Sku,
			BasePrice: i.BasePrice,
			UnitPrice: i.UnitPrice,
			Discount:  i.Discount,
			Quantity:  i.Quantity,
			LineTotal: i.LineTotal,
		}))
	}

	payments := make([]*order.Payment, 0, len(dto.Payments))
	for _, p := range dto.Payments {
		ps, err := order.ParsePaymentStatus(p.Status)
		if err != nil {
			return nil, err
		}
		payments = append(payments, order.RestorePayment(order.RestoredPayment{
			ID:             mustUUID(p.ID),
			Amount:         p.Amount,
			Currency:       kernel.Currency(p.Currency),
			Method:         order.PaymentMethod(p.Method),
			Status:         ps,
			TransactionID:  derefString(p.TransactionID),
			RefundedAmount: p.RefundedAmount,
			CreatedAt:      p.CreatedAt,
			UpdatedAt:      p.UpdatedAt,
		}))
	}

	history := make([]order.HistoryEntry, 0, len(dto.History))
	for _, h := range dto.History {
		hs, err := order.ParseStatus(h.Status)
		if err != nil {
			return nil, err
		}
		var actorID kernel.UUID
		if h.ActorID != nil {
			actorID = mustUUID(*h.ActorID)
		}
		history = append(history, order.RestoreHistoryEntry(
			mustUUID(h.ID), hs, h.Note, actorID, kernel.Role(h.ActorRole), h.CreatedAt,
		))
	}

	return order.RestoreOrder(order.RestoreParams{
		Params: order.Params{
			ID:                id,
			Number:            order.Number(dto.Number),
			AccountID:         accountID,
			StorefrontID:      toOptionalID(dto.StorefrontID),
			ShippingAddressID: toOptionalID(dto.ShippingAddressID),
			BillingAddressID:  toOptionalID(dto.BillingAddressID),
			ShippingAddress:   shipping,
			BillingAddress:    billing,
			Currency:          kernel.Currency(dto.Currency),
			Items:             items,
			TaxRate:           dto.TaxRate,
			ShippingCost:      dto.ShippingCost,
			Metadata:          metadata,
			Notes:             dto.Notes,
			CouponCode:        dto.CouponCode,
		},
		Subtotal:      dto.Subtotal,
		Tax:           dto.Tax,
		Discount:      dto.Discount,
		Total:         dto.Total,
		Status:        status,
		PaymentStatus: paymentStatus,
		Payments:      payments,
		History:       history,
		CreatedAt:     dto.CreatedAt,
		UpdatedAt:     dto.UpdatedAt,
	})
}

func addressToDomain(dto AddressDTO) (kernel.Address, error) {
	if dto == (AddressDTO{}) {
		return kernel.Address{}, nil
	}
	return kernel.NewAddress(kernel.AddressFields{
		FirstName:  dto.FirstName,
		LastName:   dto.LastName,
		Phone:      dto.Phone,
		Street:     dto.Street,
		City:       dto.City,
		State:      dto.State,
		PostalCode: dto.PostalCode,
		Country:    dto.Country,
	})
}

// optionalString stores an absent transaction id as NULL so the unique index
// only covers real gateway ids.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toOptionalID(raw *uuid.UUID) *kernel.UUID {
	if raw == nil {
		return nil
	}
	id := mustUUID(*raw)
	return &id
}

// mustUUID converts ids read back from uuid columns, which are always well formed.
func mustUUID(raw uuid.UUID) kernel.UUID {
	id, _ := kernel.UUIDFromBytes(raw[:])
	return id
}
