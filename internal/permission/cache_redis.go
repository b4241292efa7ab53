package permission

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "perm:"

// RedisCache is the Cache implementation for multi-replica deployments,
// where an invalidation issued by one replica must be seen by all.
//
// Redis failures degrade to cache misses: the resolver recomputes from the
// membership store, so a flaky cache can slow requests down but never make
// an authorization decision wrong.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *RedisCache {
	if log == nil {
		log = slog.Default()
	}
	return &RedisCache{rdb: rdb, ttl: ttl, log: log}
}

func (r *RedisCache) Get(ctx context.Context, userID, workspaceID string) (Set, bool) {
	b, err := r.rdb.Get(ctx, redisKeyPrefix+cacheKey(userID, workspaceID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("permission cache read failed", "err", err)
		}
		return nil, false
	}

	var keys []Key
	if err := json.Unmarshal(b, &keys); err != nil {
		// Corrupt entry; treat as miss and drop it.
		_ = r.rdb.Del(ctx, redisKeyPrefix+cacheKey(userID, workspaceID)).Err()
		return nil, false
	}
	return NewSet(keys...), true
}

func (r *RedisCache) Set(ctx context.Context, userID, workspaceID string, perms Set) {
	keys := make([]Key, 0, len(perms))
	for k := range perms {
		keys = append(keys, k)
	}
	b, err := json.Marshal(keys)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, redisKeyPrefix+cacheKey(userID, workspaceID), b, r.ttl).Err(); err != nil {
		r.log.Warn("permission cache write failed", "err", err)
	}
}

func (r *RedisCache) Invalidate(ctx context.Context, userID, workspaceID string) {
	if err := r.rdb.Del(ctx, redisKeyPrefix+cacheKey(userID, workspaceID)).Err(); err != nil {
		// An invalidation that fails must be loud: until the TTL expires,
		// this replica set may serve stale permissions.
		r.log.Error("permission cache invalidation failed", "err", err, "user_id", userID, "workspace_id", workspaceID)
	}
}
