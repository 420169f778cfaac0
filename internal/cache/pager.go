package cache

import (
	"context"
	"time"

	"FlockCheck/storage/redis"
)

const pagerCounterPrefix = "pager:counter"

// Pager counters live for two days so a campus spanning midnight services
// never loses a live counter, then expire on their own.
const pagerCounterTTL = 48 * time.Hour

// PagerCounterStore advances per-scope pager counters with Redis INCR.
// INCR's atomicity is what keeps concurrently issued numbers unique across
// kiosks.
type PagerCounterStore struct{}

func NewPagerCounterStore() *PagerCounterStore {
	return &PagerCounterStore{}
}

func (PagerCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	fullKey := redis.Key(pagerCounterPrefix, key)

	n, err := redis.Client().Incr(ctx, fullKey).Result()
	if err != nil {
		return 0, err
	}

	// First increment sets the TTL; later ones leave it alone.
	if n == 1 {
		redis.Client().Expire(ctx, fullKey, pagerCounterTTL)
	}

	return n, nil
}
