package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("expected a=1, got %d %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("expected size 2, got %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Second)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.Set("other", "v")
	now = now.Add(2 * time.Second)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry returned")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("expected 1 cleaned, got %d", n)
	}
	if c.Size() != 0 {
		t.Errorf("expected empty cache, got %d", c.Size())
	}
}

func TestMemoCachesAndSkipsErrors(t *testing.T) {
	m := NewMemo[int](NewLRUCache[int](4, time.Minute))
	calls := 0

	_, err := m.Do("k", func() (int, error) { calls++; return 0, errors.New("boom") })
	if err == nil {
		t.Fatal("expected error")
	}
	for i := 0; i < 3; i++ {
		v, err := m.Do("k", func() (int, error) { calls++; return 42, nil })
		if err != nil || v != 42 {
			t.Fatalf("got %d %v", v, err)
		}
	}
	if calls != 2 {
		t.Errorf("expected 2 computations, got %d", calls)
	}
}

func TestMemoCollapsesConcurrentCalls(t *testing.T) {
	m := NewMemo[int](NewLRUCache[int](4, time.Minute))
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Do("k", func() (int, error) {
				calls.Add(1)
				<-release
				return 1, nil
			})
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() < 1 || calls.Load() > 8 {
		t.Fatalf("unexpected call count %d", calls.Load())
	}
	if v, err := m.Do("k", func() (int, error) { return 99, nil }); err != nil || v != 1 {
		t.Errorf("expected cached 1, got %d %v", v, err)
	}
}

func TestManagerSweep(t *testing.T) {
	c := NewLRUCache[int](4, -time.Second)
	c.Set("a", 1)
	m := NewManager()
	m.Register(c)
	if n := m.Sweep(); n != 1 {
		t.Errorf("expected 1 swept, got %d", n)
	}
}
