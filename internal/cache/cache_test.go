package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/truthquest/internal/model"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("search", "moon landing")
	b := CacheKey("search", "moon landing")
	c := CacheKey("searchmoon", " landing")

	if a != b {
		t.Error("expected identical parts to produce identical keys")
	}
	if a == c {
		t.Error("expected part boundaries to affect the key")
	}
	if !strings.HasPrefix(a, "truthquest:v1:") {
		t.Errorf("unexpected key prefix: %s", a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("expected hit with v, got %q %v", got, ok)
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Delete")
	}

	_ = c.Set("a", []byte("1"), 0)
	_ = c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after Clear")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestMemoryCache_MaxEntries(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute).WithMaxEntries(2)
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)
	_ = c.Set("c", []byte("3"), 0)

	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
	if _, ok := c.Get("c"); ok {
		t.Error("expected new key to be dropped when full")
	}

	_ = c.Set("a", []byte("updated"), 0)
	if got, _ := c.Get("a"); string(got) != "updated" {
		t.Errorf("expected existing key to be replaced, got %q", got)
	}
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	value := []byte("abc")
	_ = c.Set("k", value, 0)
	value[0] = 'x'

	got, _ := c.Get("k")
	got[1] = 'y'
	again, _ := c.Get("k")
	if string(again) != "abc" {
		t.Errorf("expected cached value to be isolated, got %q", again)
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(filepath.Join(dir, "cache"), time.Hour)
	key := CacheKey("search", "q")

	if err := c.Set(key, []byte(`{"hits":[]}`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := c.Get(key)
	if !ok || string(got) != `{"hits":[]}` {
		t.Fatalf("expected stored value, got %q %v", got, ok)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || strings.Contains(entries[0].Name(), ":") {
		t.Errorf("expected one sanitized cache file, got %v", entries)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("Delete of missing key should succeed, got %v", err)
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	_ = c.Set("k", []byte("v"), -time.Second)

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestLayeredCache_PromotesFromSlow(t *testing.T) {
	fast := NewMemoryCache(time.Minute, time.Minute)
	slow := NewDiskCache(t.TempDir(), time.Hour)
	c := NewLayered(fast, slow)

	_ = slow.Set("k", []byte("v"), 0)

	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("expected hit from slow layer, got %q %v", got, ok)
	}
	if _, ok := fast.Get("k"); !ok {
		t.Error("expected slow hit to be promoted into fast layer")
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Delete")
	}
}

func TestNew(t *testing.T) {
	c, err := New(model.CacheConfig{Enabled: false})
	if err != nil || c != nil {
		t.Fatalf("disabled cache: expected nil, got %v %v", c, err)
	}

	c, err = New(model.CacheConfig{Enabled: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("expected memory cache without a dir, got %T", c)
	}

	c, err = New(model.CacheConfig{Enabled: true, Dir: t.TempDir(), TTL: time.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(*LayeredCache); !ok {
		t.Errorf("expected layered cache with a dir, got %T", c)
	}

	if _, err := New(model.CacheConfig{Enabled: true, RedisURL: "not-a-url"}); err == nil {
		t.Error("expected error for invalid redis url")
	}
}

func TestNewRedisCache_ParsesURL(t *testing.T) {
	c, err := NewRedisCache("redis://localhost:6379/2", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = c.Close() }()

	if got := c.rdb.Options().DB; got != 2 {
		t.Errorf("expected DB 2, got %d", got)
	}
}
