// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCacheBasic(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	c.Add("dubai marina", "loc-123")

	if got, ok := c.Get("dubai marina"); !ok || got != "loc-123" {
		t.Errorf("Get() = %q, %v; want loc-123, true", got, ok)
	}
	if _, ok := c.Get("jvc"); ok {
		t.Error("expected miss for unknown key")
	}

	hits, misses, size := c.Stats()
	if hits != 1 || misses != 1 || size != 1 {
		t.Errorf("Stats() = %d/%d/%d, want 1/1/1", hits, misses, size)
	}
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)

	for i := 1; i <= 3; i++ {
		c.Add(fmt.Sprintf("k%d", i), i)
	}

	// Touch k1 so k2 becomes the oldest.
	c.Get("k1")
	c.Add("k4", 4)

	if _, ok := c.Get("k2"); ok {
		t.Error("expected k2 evicted as least recently used")
	}
	for _, key := range []string{"k1", "k3", "k4"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("expected %s retained", key)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)

	c.Add("key", "value")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("key"); ok {
		t.Error("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected lazy removal on expired Get, Len() = %d", c.Len())
	}
}

func TestLRUCacheUpdateExisting(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Add("key", 1)
	c.Add("key", 2)

	if got, _ := c.Get("key"); got != 2 {
		t.Errorf("Get() = %d, want 2", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRUCacheRemoveAndClear(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	c.Add("a", "1")
	c.Add("b", "2")

	if !c.Remove("a") {
		t.Error("expected Remove to report existing key")
	}
	if c.Remove("a") {
		t.Error("expected Remove to report missing key")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}
