package cache

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"FlockCheck/internal/model"
	"FlockCheck/storage/redis"
)

const sessionPrefix = "supervisor:session"

// GetSession returns a cached supervisor session, or nil on a miss.
func GetSession(ctx context.Context, token string) (*model.SupervisorSession, error) {
	key := redis.Key(sessionPrefix, token)

	raw, err := redis.Client().Get(ctx, key).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var session model.SupervisorSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SetSession caches a session until it expires.
func SetSession(ctx context.Context, session *model.SupervisorSession) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}

	key := redis.Key(sessionPrefix, session.Token)
	return redis.Client().Set(ctx, key, raw, ttl).Err()
}

// DeleteSession evicts a revoked session immediately.
func DeleteSession(ctx context.Context, token string) error {
	key := redis.Key(sessionPrefix, token)
	return redis.Client().Del(ctx, key).Err()
}
