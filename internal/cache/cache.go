// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

// Package cache provides the in-memory TTL cache behind route responses and
// map sessions.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/caremap/internal/metrics"
)

// Entry is a cached value with its expiry.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Stats tracks cache performance.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Cache is a thread-safe TTL cache. Expired entries are dropped lazily on
// Get and periodically by a background sweep that stops on Close.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	name    string

	statsMu sync.RWMutex
	stats   Stats

	stop      chan struct{}
	closeOnce sync.Once
}

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = 5 * time.Minute

// New creates a cache whose entries live for ttl.
//
//	routes := cache.New(time.Hour)
//	routes.Set(key, route)
func New(ttl time.Duration) *Cache {
	return NewNamed("", ttl, DefaultCleanupInterval)
}

// NewNamed creates a cache reporting hits, misses, size and evictions under
// cache_type=name. An empty name disables metrics.
func NewNamed(name string, ttl, cleanupInterval time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		name:    name,
		stats:   Stats{LastCleanup: time.Now()},
		stop:    make(chan struct{}),
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	go c.cleanupLoop(cleanupInterval)
	return c
}

// Get returns the value for key if present and not expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		// re-check: a concurrent Set may have refreshed the entry
		evicted := int64(0)
		if current, ok := c.entries[key]; ok && time.Now().After(current.ExpiresAt) {
			delete(c.entries, key)
			evicted = 1
		}
		size := len(c.entries)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEvictions(evicted, size)
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with a custom TTL.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = Entry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.setSize(size)
}

// Delete removes key. Missing keys are ignored.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	size := len(c.entries)
	c.mu.Unlock()

	if existed {
		c.recordEvictions(1, size)
	}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	evicted := int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.recordEvictions(evicted, 0)
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a copy of the current statistics.
func (c *Cache) GetStats() Stats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

// HitRate returns hits as a percentage of lookups.
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the background sweep. The cache stays usable.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) cleanup() {
	now := time.Now()

	c.mu.Lock()
	evicted := int64(0)
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.LastCleanup = now
	c.statsMu.Unlock()
	c.recordEvictions(evicted, size)
}

func (c *Cache) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
	if c.name != "" {
		metrics.CacheHits.WithLabelValues(c.name).Inc()
	}
}

func (c *Cache) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
	if c.name != "" {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
	}
}

func (c *Cache) recordEvictions(n int64, size int) {
	c.statsMu.Lock()
	c.stats.Evictions += n
	c.statsMu.Unlock()
	if c.name != "" && n > 0 {
		metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
	}
	c.setSize(size)
}

func (c *Cache) setSize(size int) {
	c.statsMu.Lock()
	c.stats.TotalKeys = int64(size)
	c.statsMu.Unlock()
	if c.name != "" {
		metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
	}
}

// GenerateKey builds a compact key from a method name and JSON-encodable params.
//
//	key := cache.GenerateKey("route", [4]float64{lon1, lat1, lon2, lat2})
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
