package cache

import (
	"context"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore is an in-process Store for single-instance deployments and tests
type MemoryStore struct {
	items *ttlcache.Cache[string, []byte]
}

// NewMemoryStore creates an in-process store and starts its expiry loop
func NewMemoryStore(capacity uint64) *MemoryStore {
	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](capacity))
	}

	items := ttlcache.New(opts...)
	go items.Start()

	return &MemoryStore{items: items}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	item := s.items.Get(key)
	if item == nil {
		return nil, ErrMiss
	}
	value := item.Value()
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.items.Set(key, stored, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s.items.Delete(key)
	}
	return nil
}

func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) (int64, error) {
	var deleted int64
	for _, key := range s.items.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.items.Delete(key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len reports the number of live entries
func (s *MemoryStore) Len() int {
	return s.items.Len()
}

// Close stops the expiry loop
func (s *MemoryStore) Close() {
	s.items.Stop()
}
