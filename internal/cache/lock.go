package cache

import (
	"context"
	"time"

	"FlockCheck/storage/redis"
)

const lockPrefix = "lock"

// TryLock takes a distributed lock via SETNX. Used by the end-of-day
// closeout so only one scheduler instance runs the sweep.
func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullKey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullKey, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return result, nil
}

func Unlock(ctx context.Context, key string) error {
	fullKey := redis.Key(lockPrefix, key)
	return redis.Client().Del(ctx, fullKey).Err()
}
