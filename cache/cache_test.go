package cache

import (
	"errors"
	"sync"
	"testing"
)

// oneShard sends every key to shard 0 so eviction order is observable.
func oneShard(uint32) uint64 { return 0 }

func TestGetSet(t *testing.T) {
	c := New[uint32, string](4, Uint32Hasher)

	c.Set(1, "one")
	if v, ok := c.Get(1); !ok || v != "one" {
		t.Errorf("Get(1) = %q, %v", v, ok)
	}
	if _, ok := c.Get(2); ok {
		t.Error("Get(2) found a missing key")
	}
	c.Set(1, "uno")
	if v, _ := c.Get(1); v != "uno" {
		t.Errorf("Get(1) after overwrite = %q", v)
	}

	st := c.Stats()
	if st.Len != 1 || st.Hits != 2 || st.Misses != 1 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[uint32, int](3, oneShard)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)
	c.Get(1) // 2 is now the oldest
	c.Set(4, 4)

	if _, ok := c.Get(2); ok {
		t.Error("key 2 survived eviction")
	}
	for _, k := range []uint32{1, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("key %d was evicted", k)
		}
	}
	if st := c.Stats(); st.Evictions != 1 || st.Len != 3 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestGetOrLoad(t *testing.T) {
	c := New[uint32, int](0, Uint32Hasher)
	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	for range 3 {
		v, err := c.GetOrLoad(7, load)
		if err != nil || v != 42 {
			t.Fatalf("GetOrLoad() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}

	errLoad := errors.New("no such visual")
	if _, err := c.GetOrLoad(8, func() (int, error) { return 0, errLoad }); !errors.Is(err, errLoad) {
		t.Errorf("GetOrLoad() error = %v", err)
	}
	if _, ok := c.Get(8); ok {
		t.Error("failed load was cached")
	}
}

func TestDeleteClear(t *testing.T) {
	c := New[uint32, int](0, Uint32Hasher)
	for i := range uint32(20) {
		c.Set(i, int(i))
	}
	if !c.Delete(3) || c.Delete(3) {
		t.Error("Delete() should succeed exactly once")
	}
	if c.Len() != 19 {
		t.Errorf("Len() = %d, want 19", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	c.Set(1, 1)
	if v, ok := c.Get(1); !ok || v != 1 {
		t.Error("cache unusable after Clear")
	}
}

func TestConcurrentGetOrLoad(t *testing.T) {
	c := New[uint32, uint32](0, Uint32Hasher)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range uint32(200) {
				k := i % 50
				v, _ := c.GetOrLoad(k, func() (uint32, error) { return k * 2, nil })
				if v != k*2 {
					t.Errorf("goroutine %d: GetOrLoad(%d) = %d", g, k, v)
					return
				}
			}
		}()
	}
	wg.Wait()
	if st := c.Stats(); st.Misses != 50 {
		t.Errorf("Misses = %d, want 50", st.Misses)
	}
}
