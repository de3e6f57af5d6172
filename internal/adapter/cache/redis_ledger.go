package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alexanderjung3838-wq/roboentrega/internal/repository"
)

const processedKeyPrefix = "orders:processed:"

// RedisLedger implements ProcessedOrderLedger backed by Redis.
type RedisLedger struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ repository.ProcessedOrderLedger = (*RedisLedger)(nil)

// NewRedisLedger constructs a Redis-backed ledger. Entries expire after ttl
// so the keyspace stays bounded.
func NewRedisLedger(client redis.UniversalClient, ttl time.Duration) *RedisLedger {
	return &RedisLedger{client: client, ttl: ttl}
}

// MarkProcessed claims the order ID with SETNX, reporting whether this caller
// was first.
func (l *RedisLedger) MarkProcessed(ctx context.Context, orderID int64) (bool, error) {
	key := fmt.Sprintf("%s%d", processedKeyPrefix, orderID)
	first, err := l.client.SetNX(ctx, key, 1, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim order %d: %w", orderID, err)
	}
	return first, nil
}
