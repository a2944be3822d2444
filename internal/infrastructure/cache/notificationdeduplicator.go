package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// notificationKeyPrefix is the prefix for notification delivery locks
	notificationKeyPrefix = "payment_notification:"
	// DefaultNotificationLockTTL bounds how long a crashed worker can block redeliveries
	DefaultNotificationLockTTL = 30 * time.Second
)

// NotificationDeduplicator provides a Redis-based lock per gateway
// notification so concurrent redeliveries are not processed twice.
type NotificationDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewNotificationDeduplicator creates a new NotificationDeduplicator.
// A non-positive ttl selects DefaultNotificationLockTTL.
func NewNotificationDeduplicator(client *redis.Client, ttl time.Duration) *NotificationDeduplicator {
	if ttl <= 0 {
		ttl = DefaultNotificationLockTTL
	}
	return &NotificationDeduplicator{client: client, ttl: ttl}
}

// buildKey builds the Redis key for a notification
// Format: payment_notification:{order_ref}:{transaction_type}:{response_code}
func (d *NotificationDeduplicator) buildKey(key string) string {
	return notificationKeyPrefix + key
}

// Acquire atomically takes the lock using SetNX.
// Returns false when another delivery holds it.
func (d *NotificationDeduplicator) Acquire(ctx context.Context, key string) (bool, error) {
	acquired, err := d.client.SetNX(ctx, d.buildKey(key), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire notification lock: %w", err)
	}

	return acquired, nil
}

// Release drops the lock so a later redelivery is processed normally.
func (d *NotificationDeduplicator) Release(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, d.buildKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to release notification lock: %w", err)
	}

	return nil
}
