package cache

import (
	"context"
	"fmt"
	"time"

	"FlockCheck/storage/redis"
)

const messageProcessedPrefix = "message:processed"

// TryMarkMessageProcessing atomically claims a message id with SETNX.
// Returns false when another consumer already holds the claim, so redelivered
// messages are processed at most once.
func TryMarkMessageProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)

	ok, err := redis.Client().SetNX(ctx, key, "processing", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim message %s: %w", messageID, err)
	}
	return ok, nil
}

// MarkMessageProcessed finalizes the claim with a longer TTL.
func MarkMessageProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	return redis.Client().Set(ctx, key, "done", ttl).Err()
}

// UnmarkMessageProcessing releases the claim so a failed message can be
// retried on redelivery.
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	return redis.Client().Del(ctx, key).Err()
}
