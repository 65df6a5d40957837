// Package cache stores a single JSON value under a storage key together with the time it was
// written, and treats it as absent once it is older than the TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/thomas-vilte/deckreport/internal/storage"
)

// Entry is the persisted envelope. TS is a millisecond Unix timestamp.
type Entry struct {
	TS   int64           `json:"ts"`
	Data json.RawMessage `json:"data"`
}

type Cache struct {
	store storage.Store
	key   string
	ttl   time.Duration
	now   func() time.Time
}

type Option func(*Cache)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(store storage.Store, key string, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		key:   key,
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached payload when one exists and is younger than the TTL.
func (c *Cache) Get(ctx context.Context) (json.RawMessage, bool, error) {
	raw, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("error decoding cache entry %s: %w", c.key, err)
	}
	if entry.TS == 0 || len(entry.Data) == 0 {
		return nil, false, nil
	}

	age := c.now().Sub(time.UnixMilli(entry.TS))
	if age >= c.ttl {
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set stores v with the current timestamp.
func (c *Cache) Set(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding cache payload: %w", err)
	}
	raw, err := json.Marshal(Entry{TS: c.now().UnixMilli(), Data: data})
	if err != nil {
		return fmt.Errorf("error encoding cache entry: %w", err)
	}
	return c.store.Set(ctx, c.key, raw)
}

// Invalidate drops the cached entry.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx, c.key)
}
