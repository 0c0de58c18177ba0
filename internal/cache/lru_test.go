package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("Get on empty cache should miss")
	}
	c.Set("a", "alpha")
	got, ok := c.Get("a")
	if !ok || got != "alpha" {
		t.Fatalf("Get(a) = %q, %v; want alpha, true", got, ok)
	}

	c.Set("a", "again")
	if got, _ := c.Get("a"); got != "again" {
		t.Errorf("Set should overwrite, got %q", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Stats() = %+v, want 2 hits 1 miss", stats)
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // b is now least recently used
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s should still be cached", key)
		}
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	c.Set("old", "x")
	clock.t = clock.t.Add(30 * time.Second)
	c.Set("new", "y")
	clock.t = clock.t.Add(45 * time.Second)

	if _, ok := c.Get("old"); ok {
		t.Error("old should have expired")
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("new should still be valid")
	}

	clock.t = clock.t.Add(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after cleanup, want 0", c.Size())
	}
}

func TestLRUCache_DeleteAndPurge(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}

	c.Purge()
	if c.Size() != 0 {
		t.Errorf("Size() = %d after Purge, want 0", c.Size())
	}
}

func TestManager_CleanAll(t *testing.T) {
	a, clockA := newTestCache(10, time.Second)
	b, clockB := newTestCache(10, time.Second)
	a.Set("k", "v")
	b.Set("k", "v")
	b.Set("j", "v")

	m := NewManager()
	m.Register(a)
	m.Register(b)

	clockA.t = clockA.t.Add(time.Minute)
	clockB.t = clockB.t.Add(time.Minute)

	if n := m.CleanAll(); n != 3 {
		t.Errorf("CleanAll() = %d, want 3", n)
	}
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager()
	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()

	done := make(chan struct{})
	go func() {
		m.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not exit after Stop")
	}
}
