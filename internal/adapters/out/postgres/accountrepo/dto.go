// Package accountrepo persists accounts and their address book.
package accountrepo

import (
	"time"

	"orders/internal/core/domain/model/account"
	"orders/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type AccountDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"size:320;uniqueIndex;not null"`
	FirstName    string    `gorm:"size:128"`
	LastName     string    `gorm:"size:128"`
	Phone        string    `gorm:"size:64"`
	PasswordHash string    `gorm:"size:255;not null"`
	Guest        bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (AccountDTO) TableName() string {
	return "accounts"
}

type AddressDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Type       string    `gorm:"size:16"`
	FirstName  string    `gorm:"size:128"`
	LastName   string    `gorm:"size:128"`
	Phone      string    `gorm:"size:64"`
	Street     string    `gorm:"size:255"`
	City       string    `gorm:"size:128"`
	State      string    `gorm:"size:128"`
	PostalCode string    `gorm:"size:32"`
	Country    string    `gorm:"size:2"`
	CreatedAt  time.Time
}

func (AddressDTO) TableName() string {
	return "addresses"
}

func fromDomain(a *account.Account) AccountDTO {
	return AccountDTO{
		ID:           a.ID().Bytes(),
		Email:        a.Email(),
		FirstName:    a.FirstName(),
		LastName:     a.LastName(),
		Phone:        a.Phone(),
		PasswordHash: a.PasswordHash(),
		Guest:        a.IsGuest(),
	}
}

func toDomain(dto AccountDTO) (*account.Account, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return account.RestoreAccount(id, dto.Email, dto.FirstName, dto.LastName, dto.Phone, dto.PasswordHash, dto.Guest), nil
}

func addressToDomain(dto AddressDTO) (*account.Address, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	ownerID, err := kernel.UUIDFromBytes(dto.OwnerID[:])
	if err != nil {
		return nil, err
	}
	kind, err := account.ParseAddressType(dto.Type)
	if err != nil {
		return nil, err
	}
	return account.RestoreAddress(id, ownerID, kind, kernel.AddressFields{
		FirstName:  dto.FirstName,
		LastName:   dto.LastName,
		Phone:      dto.Phone,
		Street:     dto.Street,
		City:       dto.City,
		State:      dto.State,
		PostalCode: dto.PostalCode,
		Country:    dto.Country,
	}), nil
}
