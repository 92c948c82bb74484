// Package cache holds the Redis-backed availability report cache.
//
// Reports are keyed by an epoch counter that every ledger mutation bumps. A
// credit of O- changes the availability of every recipient type, so rather
// than track which reports a mutation touches, the epoch bump orphans all of
// them at once. Orphaned entries age out via TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bloodbank/internal/inventory"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

const (
	epochKey   = "inventory:epoch"
	defaultTTL = 30 * time.Second
)

type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: defaultTTL}
}

// WithTTL overrides the report lifetime.
func (c *AvailabilityCache) WithTTL(ttl time.Duration) *AvailabilityCache {
	c.ttl = ttl
	return c
}

// Get returns the cached report for the current epoch, or sentinel.ErrNotFound
// on a miss.
func (c *AvailabilityCache) Get(ctx context.Context, bloodType id.BloodType, amount int) (*inventory.AvailabilityReport, error) {
	epoch, err := c.client.Get(ctx, epochKey).Int64()
	if err == redis.Nil {
		epoch = 0
	} else if err != nil {
		return nil, fmt.Errorf("read cache epoch: %w", err)
	}

	raw, err := c.client.Get(ctx, reportKey(epoch, bloodType, amount)).Bytes()
	if err == redis.Nil {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cached report: %w", err)
	}

	var report inventory.AvailabilityReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode cached report: %w", err)
	}
	return &report, nil
}

// Set stores the report under the current epoch.
func (c *AvailabilityCache) Set(ctx context.Context, report *inventory.AvailabilityReport) error {
	epoch, err := c.client.Get(ctx, epochKey).Int64()
	if err == redis.Nil {
		epoch = 0
	} else if err != nil {
		return fmt.Errorf("read cache epoch: %w", err)
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	key := reportKey(epoch, report.BloodType, report.RequestedAmount)
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("store cached report: %w", err)
	}
	return nil
}

// Invalidate bumps the epoch, detaching every cached report.
func (c *AvailabilityCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, epochKey).Err(); err != nil {
		return fmt.Errorf("bump cache epoch: %w", err)
	}
	return nil
}

func reportKey(epoch int64, bloodType id.BloodType, amount int) string {
	return fmt.Sprintf("inventory:availability:%d:%s:%d", epoch, bloodType, amount)
}
