// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache stores JSON-encoded values with a time-to-live. Values live
// in a Backend (in-process map or SQLite file); Cache adds typing, expiry,
// and key normalization on top.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/seo-engine/pkg/types"
)

// Entry is a stored payload and the time it was written.
type Entry struct {
	Payload  []byte
	StoredAt time.Time
}

// Backend persists entries grouped by namespace.
type Backend interface {
	Load(namespace, key string) (Entry, bool, error)
	Store(namespace, key string, e Entry) error
	Delete(namespace, key string) error
	Close() error
}

// Open returns the backend selected by cfg.
func Open(cfg types.CacheConfig) (Backend, error) {
	switch cfg.Backend {
	case "", types.CacheMemory:
		return NewMemory(), nil
	case types.CacheSQLite:
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want memory or sqlite)", cfg.Backend)
	}
}

// Cache is a typed view over one namespace of a Backend.
type Cache[V any] struct {
	backend   Backend
	namespace string
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *zap.Logger
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger logs backend and decode errors, which are otherwise treated
// as misses silently.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New returns a Cache over namespace whose entries expire after ttl.
func New[V any](backend Backend, namespace string, ttl time.Duration, opts ...Option) *Cache[V] {
	o := options{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &Cache[V]{
		backend:   backend,
		namespace: namespace,
		ttl:       ttl,
		now:       o.now,
		logger:    o.logger.With(zap.String("cache", namespace)),
	}
}

// Get returns the value stored under key if it is younger than the TTL.
// Expired or undecodable entries are deleted and reported as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	e, ok, err := c.backend.Load(c.namespace, key)
	if err != nil {
		c.logger.Warn("cache load failed", zap.String("key", key), zap.Error(err))
		return zero, false
	}
	if !ok {
		return zero, false
	}

	if c.now().Sub(e.StoredAt) >= c.ttl {
		c.evict(key)
		return zero, false
	}

	var v V
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		c.evict(key)
		return zero, false
	}
	return v, true
}

// Set stores v under key, stamped with the current time.
func (c *Cache[V]) Set(key string, v V) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache value: %w", err)
	}
	if err := c.backend.Store(c.namespace, key, Entry{Payload: payload, StoredAt: c.now()}); err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

func (c *Cache[V]) evict(key string) {
	if err := c.backend.Delete(c.namespace, key); err != nil {
		c.logger.Warn("cache evict failed", zap.String("key", key), zap.Error(err))
	}
}

// Key joins parts into a cache key with types.LookupKey.
func Key(parts ...string) string {
	return types.LookupKey(parts...)
}
