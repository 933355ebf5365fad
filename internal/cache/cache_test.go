// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/caremap/internal/metrics"
)

func TestCacheBasicOperations(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Fatal("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists = c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheExpiration(t *testing.T) {
	c := New(50 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	if _, exists := c.Get("key1"); !exists {
		t.Fatal("Expected key1 to exist immediately after set")
	}

	time.Sleep(80 * time.Millisecond)

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed on Get, Len() = %d", c.Len())
	}
}

func TestCacheSetWithTTLOverridesDefault(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	c.SetWithTTL("short", 1, 20*time.Millisecond)
	c.Set("long", 2)
	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("short entry should have expired")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("long entry should still exist")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	c.Delete("missing")

	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if got := c.GetStats().TotalKeys; got != 0 {
		t.Errorf("TotalKeys after Clear = %d", got)
	}
}

func TestCacheStatsAndHitRate(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	if c.HitRate() != 0 {
		t.Errorf("empty cache hit rate = %v", c.HitRate())
	}

	c.Set("k", "v")
	c.Get("k")
	c.Get("k")
	c.Get("k")
	c.Get("nope")

	stats := c.GetStats()
	if stats.Hits != 3 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 3 hits 1 miss", stats)
	}
	if got := c.HitRate(); got != 75 {
		t.Errorf("HitRate() = %v, want 75", got)
	}
}

func TestCacheBackgroundCleanup(t *testing.T) {
	c := NewNamed("", 10*time.Millisecond, 20*time.Millisecond)
	defer c.Close()

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	deadline := time.Now().Add(time.Second)
	for c.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if c.Len() != 0 {
		t.Errorf("background sweep left %d entries", c.Len())
	}
}

func TestCacheNamedRecordsMetrics(t *testing.T) {
	c := NewNamed("test_named", time.Minute, time.Minute)
	defer c.Close()

	hitsBefore := testutil.ToFloat64(metrics.CacheHits.WithLabelValues("test_named"))
	missesBefore := testutil.ToFloat64(metrics.CacheMisses.WithLabelValues("test_named"))

	c.Set("x", 1)
	c.Get("x")
	c.Get("y")

	if got := testutil.ToFloat64(metrics.CacheHits.WithLabelValues("test_named")); got != hitsBefore+1 {
		t.Errorf("cache_hits_total = %v, want %v", got, hitsBefore+1)
	}
	if got := testutil.ToFloat64(metrics.CacheMisses.WithLabelValues("test_named")); got != missesBefore+1 {
		t.Errorf("cache_misses_total = %v, want %v", got, missesBefore+1)
	}
	if got := testutil.ToFloat64(metrics.CacheSize.WithLabelValues("test_named")); got != 1 {
		t.Errorf("cache_entries = %v, want 1", got)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%5)
			c.Set(key, n)
			c.Get(key)
			if n%7 == 0 {
				c.Delete(key)
			}
		}(i)
	}
	wg.Wait()
}

func TestCloseIsIdempotent(t *testing.T) {
	c := New(time.Minute)
	c.Close()
	c.Close()

	c.Set("still", "works")
	if _, ok := c.Get("still"); !ok {
		t.Error("cache should remain usable after Close")
	}
}

func TestGenerateKey(t *testing.T) {
	k1 := GenerateKey("route", [4]float64{3.5, 43.68, 3.6, 43.7})
	k2 := GenerateKey("route", [4]float64{3.5, 43.68, 3.6, 43.7})
	k3 := GenerateKey("route", [4]float64{3.6, 43.7, 3.5, 43.68})

	if k1 != k2 {
		t.Error("same params should yield the same key")
	}
	if k1 == k3 {
		t.Error("different params should yield different keys")
	}
	if len(k1) != len("route:")+32 {
		t.Errorf("unexpected key length %d: %s", len(k1), k1)
	}
}
