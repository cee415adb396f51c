package oddscache

import (
	"sync"
	"testing"
	"time"
)

func TestGetWithinTTL(t *testing.T) {
	c := New[string](20 * time.Second)

	now := time.Now()
	c.SetClock(func() time.Time { return now })

	k := Key{MatchID: "M1"}
	c.Set(k, "quotes")

	// dentro do TTL
	now = now.Add(19 * time.Second)
	if v, ok := c.Get(k); !ok || v != "quotes" {
		t.Fatalf("expected hit within TTL, got ok=%v v=%q", ok, v)
	}

	// TTL estourado
	now = now.Add(2 * time.Second)
	if _, ok := c.Get(k); ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestMissOnUnknownKey(t *testing.T) {
	c := New[int](time.Second)
	if _, ok := c.Get(Key{MatchID: "nope"}); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestInvalidateDropsAllEntriesForMatch(t *testing.T) {
	c := New[int](time.Minute)

	c.Set(Key{MatchID: "M1"}, 1)
	c.Set(Key{MatchID: "M1", Filter: "BTTS"}, 2)
	c.Set(Key{MatchID: "M2"}, 3)

	c.Invalidate("M1")

	if _, ok := c.Get(Key{MatchID: "M1"}); ok {
		t.Error("M1 unfiltered entry should be gone")
	}
	if _, ok := c.Get(Key{MatchID: "M1", Filter: "BTTS"}); ok {
		t.Error("M1 filtered entry should be gone")
	}
	if v, ok := c.Get(Key{MatchID: "M2"}); !ok || v != 3 {
		t.Error("M2 entry should survive")
	}
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	c := New[int](time.Minute)
	k := Key{MatchID: "M1"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.Set(k, n)
		}(i)
		go func() {
			defer wg.Done()
			c.Get(k)
		}()
	}
	wg.Wait()

	if _, ok := c.Get(k); !ok {
		t.Fatal("expected entry after concurrent writes")
	}
}
