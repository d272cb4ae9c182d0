package flatdoc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedStore wraps a Store with a Redis read-through cache of Get results.
// Every cached address is tracked in a per-collection Redis Set so a Set
// call can invalidate exactly the collection it touched. Cache failures
// degrade gracefully: they are logged and counted, never surfaced.
type CachedStore struct {
	store   *Store
	redis   *redis.Client
	ttl     time.Duration
	logger  Logger
	metrics Metrics
}

// cachedResult wraps the value so a cached nil is distinguishable from a
// cache miss
type cachedResult struct {
	Value interface{} `json:"value"`
}

// NewCachedStore wraps store with a Redis result cache. A non-positive ttl
// falls back to DefaultCacheTTL.
func NewCachedStore(store *Store, client *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{
		store:   store,
		redis:   client,
		ttl:     ttl,
		logger:  store.logger,
		metrics: store.metrics,
	}
}

func resultKey(address string) string {
	return "flatdoc:result:" + address
}

func collectionKeySet(collection string) string {
	return "flatdoc:cached:" + collection
}

// Get returns the cached result when present, otherwise reads through the
// underlying store and caches what it found
func (c *CachedStore) Get(ctx context.Context, address string) (interface{}, error) {
	key := resultKey(address)
	payload, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var cached cachedResult
		if unmarshalErr := json.Unmarshal(payload, &cached); unmarshalErr == nil {
			c.metrics.Increment(MetricCacheHit)
			return cached.Value, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.metrics.Increment(MetricCacheError)
		c.logger.Warn("cache read failed", "address", address, "error", err)
	}
	c.metrics.Increment(MetricCacheMiss)

	value, err := c.store.Get(ctx, address)
	if err != nil {
		return nil, err
	}

	addr, err := CompileAddress(address)
	if err != nil {
		return value, nil
	}
	if payload, marshalErr := json.Marshal(cachedResult{Value: value}); marshalErr == nil {
		pipe := c.redis.TxPipeline()
		pipe.Set(ctx, key, payload, c.ttl)
		pipe.SAdd(ctx, collectionKeySet(addr.Collection), key)
		if _, pipeErr := pipe.Exec(ctx); pipeErr != nil {
			c.metrics.Increment(MetricCacheError)
			c.logger.Warn("cache write failed", "address", address, "error", pipeErr)
		}
	}
	return value, nil
}

// Set writes through to the store and invalidates every cached result of
// the touched collection
func (c *CachedStore) Set(ctx context.Context, address string, value interface{}) error {
	if err := c.store.Set(ctx, address, value); err != nil {
		return err
	}

	addr, err := CompileAddress(address)
	if err != nil {
		return nil
	}
	setKey := collectionKeySet(addr.Collection)
	keys, err := c.redis.SMembers(ctx, setKey).Result()
	if err != nil {
		c.metrics.Increment(MetricCacheError)
		c.logger.Warn("cache invalidation failed", "collection", addr.Collection, "error", err)
		return nil
	}
	keys = append(keys, setKey)
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.metrics.Increment(MetricCacheError)
		c.logger.Warn("cache invalidation failed", "collection", addr.Collection, "error", err)
	}
	return nil
}
