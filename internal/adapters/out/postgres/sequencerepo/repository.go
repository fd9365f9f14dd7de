// Package sequencerepo allocates gap tolerant, strictly increasing numbers
// from a counter table.
package sequencerepo

import (
	"context"
	"strings"

	"orders/internal/pkg/errs"

	"gorm.io/gorm"
)

type SequenceDTO struct {
	Name  string `gorm:"size:64;primaryKey"`
	Value int64  `gorm:"not null"`
}

func (SequenceDTO) TableName() string {
	return "sequences"
}

// GormSequenceRepository implements ports.SequenceRepository.
type GormSequenceRepository struct {
	db *gorm.DB
}

func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next increments the named counter and returns the new value. The upsert
// keeps the row locked until the surrounding transaction ends.
func (r *GormSequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errs.NewValueIsRequiredError("sequence")
	}

	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sequences (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value`, name).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
