package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/storefront/internal/cache"
	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// CacheStore is a cache.Store backed by Redis. Every key is stored under
// namespace so a flush never touches data owned by other applications.
type CacheStore struct {
	client    *Client
	namespace string
}

// NewCacheStore creates a new Redis cache store
func NewCacheStore(client *Client, namespace string) *CacheStore {
	return &CacheStore{client: client, namespace: namespace}
}

// Get returns cache.ErrMiss when the key is absent
func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.rdb.Get(ctx, s.namespace+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrMiss
		}
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return data, nil
}

func (s *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.rdb.Set(ctx, s.namespace+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.namespace + k
	}
	if err := s.client.rdb.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix using SCAN, so large
// keyspaces are walked in batches instead of blocking Redis with KEYS.
func (s *CacheStore) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	pattern := s.namespace + escapePattern(prefix) + "*"
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := s.client.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := s.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}

func (s *CacheStore) Ping(ctx context.Context) error {
	return s.client.rdb.Ping(ctx).Err()
}

// escapePattern quotes glob metacharacters so a prefix matches literally
func escapePattern(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
