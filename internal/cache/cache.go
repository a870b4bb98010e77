// Package cache implements the read-through and invalidation rules shared by
// every service. Cache failures are logged and never returned to callers:
// the database stays authoritative and the cache only saves work.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog/log"
)

// ErrMiss is returned by a Store when the key is absent
var ErrMiss = errors.New("cache: miss")

// Store is a key-value backend with per-key expiry
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
	Ping(ctx context.Context) error
}

// Recorder observes cache outcomes
type Recorder interface {
	CacheHit()
	CacheMiss()
	CacheError(op string)
	CacheInvalidated(n int)
}

// TTLs maps each key class to its lifetime
type TTLs struct {
	Short   time.Duration
	Catalog time.Duration
	Detail  time.Duration
}

// DefaultTTLs are used when a class has no configured lifetime
var DefaultTTLs = TTLs{
	Short:   15 * time.Minute,
	Catalog: time.Hour,
	Detail:  24 * time.Hour,
}

// Cache wraps a Store with best-effort semantics
type Cache struct {
	store    Store
	ttls     TTLs
	recorder Recorder
}

// New creates a cache over store. A nil recorder discards observations.
func New(store Store, ttls TTLs, recorder Recorder) *Cache {
	if ttls.Short <= 0 {
		ttls.Short = DefaultTTLs.Short
	}
	if ttls.Catalog <= 0 {
		ttls.Catalog = DefaultTTLs.Catalog
	}
	if ttls.Detail <= 0 {
		ttls.Detail = DefaultTTLs.Detail
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Cache{store: store, ttls: ttls, recorder: recorder}
}

// TTL returns the lifetime of a key class
func (c *Cache) TTL(class Class) time.Duration {
	switch class {
	case ClassCatalog:
		return c.ttls.Catalog
	case ClassDetail:
		return c.ttls.Detail
	default:
		return c.ttls.Short
	}
}

// ReadThrough returns the cached value under key, or computes, stores and
// returns it. Errors from compute are returned unchanged and nothing is
// stored; cache errors only degrade to a miss.
func ReadThrough[T any](ctx context.Context, c *Cache, key Key, compute func(context.Context) (T, error)) (T, error) {
	data, err := c.store.Get(ctx, key.name)
	switch {
	case err == nil:
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			c.recorder.CacheHit()
			return cached, nil
		}
		c.warn("decode", key.name, err)
	case !errors.Is(err, ErrMiss):
		c.warn("get", key.name, err)
	}

	c.recorder.CacheMiss()

	value, err := compute(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		c.warn("encode", key.name, err)
		return value, nil
	}
	if err := c.store.Set(ctx, key.name, encoded, c.TTL(key.class)); err != nil {
		c.warn("set", key.name, err)
	}

	return value, nil
}

// Invalidate deletes every key and prefix given. It is idempotent and never
// fails the caller; run it after the authoritative write has committed.
func (c *Cache) Invalidate(ctx context.Context, targets ...Target) {
	keys := mapset.NewThreadUnsafeSet[string]()
	prefixes := mapset.NewThreadUnsafeSet[string]()
	for _, t := range targets {
		switch t.(type) {
		case Prefix:
			prefixes.Add(t.target())
		default:
			keys.Add(t.target())
		}
	}

	removed := 0
	if keys.Cardinality() > 0 {
		names := keys.ToSlice()
		if err := c.store.Delete(ctx, names...); err != nil {
			c.warn("delete", names[0], err)
		} else {
			removed += len(names)
		}
	}
	for prefix := range prefixes.Iter() {
		n, err := c.store.DeletePrefix(ctx, prefix)
		if err != nil {
			c.warn("delete_prefix", prefix, err)
			continue
		}
		removed += int(n)
	}

	c.recorder.CacheInvalidated(removed)
}

// Flush deletes every key the store holds for this application
func (c *Cache) Flush(ctx context.Context) (int64, error) {
	n, err := c.store.DeletePrefix(ctx, "")
	if err != nil {
		c.recorder.CacheError("flush")
		return n, err
	}
	c.recorder.CacheInvalidated(int(n))
	return n, nil
}

// Ping checks the backing store
func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func (c *Cache) warn(op, key string, err error) {
	c.recorder.CacheError(op)
	log.Warn().Err(err).Str("op", op).Str("key", key).Msg("cache operation failed")
}

type nopRecorder struct{}

func (nopRecorder) CacheHit() {}

func (nopRecorder) CacheMiss() {}

func (nopRecorder) CacheError(string) {}

func (nopRecorder) CacheInvalidated(int) {}
