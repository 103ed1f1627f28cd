// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/seo-engine/pkg/types"
)

type report struct {
	Topic    string   `json:"topic"`
	Headings []string `json:"headings"`
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time           { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]Backend{
		"memory": NewMemory(),
		"sqlite": sq,
	}
}

func TestCache_SetGet(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := New[report](b, "reports", time.Hour, WithLogger(zaptest.NewLogger(t)))

			_, ok := c.Get("coffee")
			assert.False(t, ok)

			want := report{Topic: "coffee", Headings: []string{"Brewing", "Beans"}}
			require.NoError(t, c.Set("coffee", want))

			got, ok := c.Get("coffee")
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			clock := newClock()
			c := New[report](b, "reports", 15*time.Minute, WithClock(clock.now))
			require.NoError(t, c.Set("k", report{Topic: "t"}))

			clock.advance(14*time.Minute + 59*time.Second)
			_, ok := c.Get("k")
			assert.True(t, ok, "entry should be fresh just before the TTL")

			clock.advance(time.Second)
			_, ok = c.Get("k")
			assert.False(t, ok, "entry should expire at the TTL")

			// The expired entry was evicted from the backend.
			_, found, err := b.Load("reports", "k")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestCache_SetRefreshesTimestamp(t *testing.T) {
	clock := newClock()
	c := New[int](NewMemory(), "n", time.Minute, WithClock(clock.now))
	require.NoError(t, c.Set("k", 1))
	clock.advance(50 * time.Second)
	require.NoError(t, c.Set("k", 2))
	clock.advance(50 * time.Second)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestCache_NamespacesAreIsolated(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a := New[string](b, "aggregate", time.Hour)
			z := New[string](b, "analysis", time.Hour)
			require.NoError(t, a.Set("coffee", "raw"))

			_, ok := z.Get("coffee")
			assert.False(t, ok)
			got, ok := a.Get("coffee")
			require.True(t, ok)
			assert.Equal(t, "raw", got)
		})
	}
}

func TestCache_UndecodableEntryIsMiss(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Store("reports", "k", Entry{Payload: []byte("{not json"), StoredAt: time.Now()}))

	c := New[report](m, "reports", time.Hour, WithLogger(zaptest.NewLogger(t)))
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, New[string](first, "ns", time.Hour).Set("k", "v"))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()
	got, ok := New[string](second, "ns", time.Hour).Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestSQLite_Purge(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Store("ns", "old", Entry{Payload: []byte(`1`), StoredAt: base}))
	require.NoError(t, s.Store("ns", "new", Entry{Payload: []byte(`2`), StoredAt: base.Add(time.Hour)}))

	n, err := s.Purge(base.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err := s.Load("ns", "new")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	b, err := Open(types.CacheConfig{Backend: types.CacheMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b)

	b, err = Open(types.CacheConfig{Backend: types.CacheSQLite, Path: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, b)
	b.Close()

	_, err = Open(types.CacheConfig{Backend: "redis"})
	assert.Error(t, err)
}

func TestMemory_Concurrent(t *testing.T) {
	c := New[int](NewMemory(), "n", time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			_ = c.Set(key, i)
			c.Get(key)
		}(i)
	}
	wg.Wait()
	for i := 0; i < 5; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok)
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("Coffee  Shops ", "Austin, TX"), Key("coffee shops", " austin,  tx"))
	assert.NotEqual(t, Key("coffee", "5"), Key("coffee", "10"))
	assert.Equal(t, "coffee shops|5|en", Key("Coffee Shops", "5", "EN"))
}
