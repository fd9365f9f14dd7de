package ports

import (
	"context"
	"errors"

	"orders/internal/core/domain/services"
)

var ErrCacheMiss = errors.New("cache miss")

// ReportCache stores computed analytics reports by filter key.
type ReportCache interface {
	// Get returns ErrCacheMiss when key is absent or expired.
	Get(ctx context.Context, key string) (services.Report, error)
	Set(ctx context.Context, key string, report services.Report) error
}
