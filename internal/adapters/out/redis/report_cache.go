// Package redis caches analytics reports.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"orders/internal/core/domain/services"
	"orders/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "orders:analytics"

// ReportCache stores reports as JSON with a fixed TTL.
type ReportCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewReportCache(client redis.Cmdable, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReportCache{client: client, ttl: ttl}
}

func (c *ReportCache) Get(ctx context.Context, key string) (services.Report, error) {
	data, err := c.client.Get(ctx, GenerateKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return services.Report{}, ports.ErrCacheMiss
	}
	if err != nil {
		return services.Report{}, fmt.Errorf("redis get failed: %w", err)
	}

	var report services.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return services.Report{}, fmt.Errorf("unmarshal report failed: %w", err)
	}
	return report, nil
}

func (c *ReportCache) Set(ctx context.Context, key string, report services.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report failed: %w", err)
	}
	if err := c.client.Set(ctx, GenerateKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// GenerateKey namespaces a report key.
func GenerateKey(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}
