package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/coocood/freecache"
)

var _ Store = (*Memory)(nil)

// DefaultMemorySize gives 32KB per entry (freecache caps an entry at 1/1024 of the cache).
const DefaultMemorySize = 32 * 1024 * 1024

// Memory is a process-local store, used for local development and tests.
// Its content does not survive a restart.
type Memory struct {
	cache *freecache.Cache
}

func NewMemory(size int) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &Memory{
		cache: freecache.NewCache(size),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	val, err := m.cache.Get([]byte(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("memory get %s: %w", key, err)
	}
	return val, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	// no expiration
	if err := m.cache.Set([]byte(key), value, 0); err != nil {
		return fmt.Errorf("memory set %s: %w", key, err)
	}
	return nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.cache.Del([]byte(k))
	}
	return nil
}
