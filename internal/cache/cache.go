// Package cache provides the bounded, thread-safe caches used by
// internal/space's graph transport space to memoise per-source shortest
// path trees (spec.md §4.1, §9: "LRU cache in graph space ... must be
// either thread-safe ... or replicated per worker").
//
// Two backends are provided: an in-process LRU (the default, adequate for
// a single-process simulation run) and a Redis-backed cache shared across
// worker goroutines or even separate processes.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

// Cache is a bounded key-value cache. Implementations must be safe for
// concurrent use by multiple goroutines — the fleet's worker pool calls
// Get/Add from every vehicle's dispatch goroutine during the fork-join
// section of spec.md §5.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Add(key K, value V)
	Purge()
}

// ─── In-process LRU ─────────────────────────────────────────

// lruCache wraps hashicorp/golang-lru/v2, which is already safe for
// concurrent use internally (it holds its own mutex).
type lruCache[K comparable, V any] struct {
	inner *lru.Cache[K, V]
}

// NewLRU creates an in-process bounded LRU cache with the given capacity.
// A capacity of ~10,000 sources is adequate for urban-scale graphs per
// spec.md §4.1.
func NewLRU[K comparable, V any](size int) (Cache[K, V], error) {
	inner, err := lru.New[K, V](size)
	if err != nil {
		return nil, err
	}
	return &lruCache[K, V]{inner: inner}, nil
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	return c.inner.Get(key)
}

func (c *lruCache[K, V]) Add(key K, value V) {
	c.inner.Add(key, value)
}

func (c *lruCache[K, V]) Purge() {
	c.inner.Purge()
}

// ─── Redis-backed cache ─────────────────────────────────────

// RedisCache stores JSON-encoded values in Redis under a fixed key prefix,
// with a TTL so a crashed worker never wedges the cache open forever.
//
// Failure mode matches the teacher's demand/supply cache
// (pkg/... PricingRepository.GetDemandSupply): on any Redis error we log
// a warning and report a cache miss rather than propagating the error —
// the caller (GraphSpace) always has a correct, if slower, fallback
// (recompute Dijkstra from scratch).
type RedisCache[K comparable, V any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	keyFn  func(K) string
}

// NewRedisCache creates a Redis-backed cache. keyFn converts the cache key
// into a Redis key suffix (e.g. strconv.Itoa for an integer node id).
func NewRedisCache[K comparable, V any](client *redis.Client, prefix string, ttl time.Duration, keyFn func(K) string) *RedisCache[K, V] {
	return &RedisCache[K, V]{client: client, prefix: prefix, ttl: ttl, keyFn: keyFn}
}

func (c *RedisCache[K, V]) Get(key K) (V, bool) {
	var zero V

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	raw, err := c.client.Get(ctx, c.prefix+c.keyFn(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[cache] WARNING: redis get failed: %v — treating as miss", err)
		}
		return zero, false
	}

	var value V
	if err := json.Unmarshal(raw, &value); err != nil {
		log.Printf("[cache] WARNING: redis value corrupt: %v — treating as miss", err)
		return zero, false
	}
	return value, true
}

func (c *RedisCache[K, V]) Add(key K, value V) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("[cache] WARNING: failed to encode cache value: %v", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+c.keyFn(key), raw, c.ttl).Err(); err != nil {
		log.Printf("[cache] WARNING: redis set failed: %v", err)
	}
}

func (c *RedisCache[K, V]) Purge() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}
}
