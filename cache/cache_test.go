package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

// clock is a manually advanced time source for expiry tests.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("get missing: ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v2"), 0); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	val, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(val) != "v2" {
		t.Fatalf("get = %q ok=%v err=%v", val, ok, err)
	}
	if exists, err := c.Exists(ctx, "k"); err != nil || !exists {
		t.Fatalf("exists = %v err=%v", exists, err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if exists, err := c.Exists(ctx, "k"); err != nil || exists {
		t.Fatalf("exists after delete = %v err=%v", exists, err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("deleting an absent key should not fail: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	t.Parallel()
	exerciseCache(t, NewMemoryCache())
}

func TestMemoryCacheExpiry(t *testing.T) {
	t.Parallel()
	clk := &clock{t: time.Unix(1700000000, 0)}
	c := NewMemoryCache()
	c.now = clk.now
	ctx := context.Background()
	_ = c.Set(ctx, "session", []byte("x"), time.Hour)
	clk.advance(59 * time.Minute)
	if ok, _ := c.Exists(ctx, "session"); !ok {
		t.Fatal("key expired early")
	}
	clk.advance(time.Minute)
	if ok, _ := c.Exists(ctx, "session"); ok {
		t.Fatal("key should have expired")
	}
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	t.Parallel()
	c := NewMemoryCache()
	ctx := context.Background()
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'z'
	val, _, _ := c.Get(ctx, "k")
	if string(val) != "abc" {
		t.Fatalf("stored value aliased caller buffer: %q", val)
	}
}

func newTestSQLite(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(context.Background(), filepath.Join(t.TempDir(), "sessions", "cache.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSQLiteCache(t *testing.T) {
	t.Parallel()
	exerciseCache(t, newTestSQLite(t))
}

func TestSQLiteCacheExpiryAndPurge(t *testing.T) {
	t.Parallel()
	clk := &clock{t: time.Unix(1700000000, 0)}
	c := newTestSQLite(t)
	c.now = clk.now
	ctx := context.Background()
	if err := c.Set(ctx, "short", []byte("x"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	clk.advance(2 * time.Minute)
	if ok, _ := c.Exists(ctx, "short"); ok {
		t.Fatal("expired row still visible")
	}
	n, err := c.Purge(ctx)
	if err != nil || n != 1 {
		t.Fatalf("purge removed %d rows, err=%v", n, err)
	}
	if ok, _ := c.Exists(ctx, "forever"); !ok {
		t.Fatal("non-expiring row was purged")
	}
}

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	t.Parallel()
	c, _ := newTestRedis(t)
	exerciseCache(t, c)
}

func TestRedisCacheExpiry(t *testing.T) {
	t.Parallel()
	c, mr := newTestRedis(t)
	ctx := context.Background()
	if err := c.Set(ctx, "session", []byte("x"), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(time.Hour + time.Second)
	if ok, _ := c.Exists(ctx, "session"); ok {
		t.Fatal("key should have expired")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	t.Parallel()
	if _, err := NewRedisCache(context.Background(), "not-a-url"); err == nil {
		t.Fatal("expected error for invalid redis url")
	}
}
