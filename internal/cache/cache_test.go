package cache

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(cfg Config) (*Cache, *clock) {
	clk := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	cfg.Now = clk.now
	return New(cfg), clk
}

func TestCache_GetPut(t *testing.T) {
	cache, _ := newTestCache(Config{MaxSize: 1 << 20, MaxAge: time.Hour})

	data := []byte(`{"matches":[]}`)
	cache.Put("q", data)

	got, found := cache.Get("q")
	if !found {
		t.Fatal("Data not found in cache")
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get = %s, want %s", got, data)
	}

	if _, found := cache.Get("missing"); found {
		t.Error("Found non-existent key")
	}

	stats := cache.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit and 1 miss", stats)
	}
	if stats.TotalSize != int64(len(data)) || stats.EntryCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCache_Overwrite(t *testing.T) {
	cache, _ := newTestCache(Config{})
	cache.Put("k", []byte("aaaa"))
	cache.Put("k", []byte("bb"))

	got, _ := cache.Get("k")
	if string(got) != "bb" {
		t.Errorf("Get = %q, want bb", got)
	}
	if s := cache.GetStats(); s.TotalSize != 2 || s.EntryCount != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestCache_Delete(t *testing.T) {
	cache, _ := newTestCache(Config{})
	cache.Put("k", []byte("v"))
	cache.Delete("k")
	cache.Delete("k")

	if _, found := cache.Get("k"); found {
		t.Error("Found deleted key")
	}
	if cache.Len() != 0 {
		t.Errorf("Len = %d, want 0", cache.Len())
	}
}

func TestCache_Expiration(t *testing.T) {
	cache, clk := newTestCache(Config{MaxAge: time.Minute})
	cache.Put("k", []byte("v"))

	clk.advance(59 * time.Second)
	if _, found := cache.Get("k"); !found {
		t.Fatal("entry expired early")
	}
	clk.advance(2 * time.Second)
	if _, found := cache.Get("k"); found {
		t.Error("entry did not expire")
	}
}

func TestCache_NeverExpire(t *testing.T) {
	cache, clk := newTestCache(Config{MaxAge: -1})
	cache.Put("k", []byte("v"))
	clk.advance(24 * time.Hour)
	if _, found := cache.Get("k"); !found {
		t.Error("entry expired with MaxAge < 0")
	}
}

func TestCache_Eviction(t *testing.T) {
	tests := []struct {
		name     string
		strategy EvictionStrategy
		evicted  string
	}{
		{"LRU", LRU, "b"},
		{"LFU", LFU, "c"},
		{"FIFO", FIFO, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, clk := newTestCache(Config{MaxSize: 30, Strategy: tt.strategy})
			for _, k := range []string{"a", "b", "c"} {
				cache.Put(k, bytes.Repeat([]byte(k), 10))
				clk.advance(time.Second)
			}
			// b is read early, a twice later, c once at the end
			for _, k := range []string{"b", "b", "a", "a", "c"} {
				cache.Get(k)
				clk.advance(time.Second)
			}

			cache.Put("d", bytes.Repeat([]byte("d"), 10))

			if _, found := cache.Get(tt.evicted); found {
				t.Errorf("%s should have been evicted", tt.evicted)
			}
			if cache.GetStats().Evictions != 1 {
				t.Errorf("Evictions = %d, want 1", cache.GetStats().Evictions)
			}
		})
	}
}

func TestCache_TooLarge(t *testing.T) {
	cache, _ := newTestCache(Config{MaxSize: 4})
	cache.Put("big", []byte("12345"))
	if _, found := cache.Get("big"); found {
		t.Error("value larger than MaxSize was stored")
	}
}

func TestCache_InvalidateByDependency(t *testing.T) {
	cache, _ := newTestCache(Config{})
	cache.PutWithDeps("q1", []byte("1"), []string{"rev:1"})
	cache.PutWithDeps("q2", []byte("2"), []string{"rev:1", "q:jean"})
	cache.PutWithDeps("q3", []byte("3"), []string{"rev:2"})
	cache.Put("q4", []byte("4"))

	if n := cache.InvalidateByDependency("rev:1"); n != 2 {
		t.Errorf("invalidated %d, want 2", n)
	}
	for k, want := range map[string]bool{"q1": false, "q2": false, "q3": true, "q4": true} {
		if _, found := cache.Get(k); found != want {
			t.Errorf("Get(%s) found = %v, want %v", k, found, want)
		}
	}

	if n := cache.InvalidateByDependency("rev:"); n != 1 {
		t.Errorf("prefix invalidated %d, want 1", n)
	}
}

func TestCache_Clear(t *testing.T) {
	cache, _ := newTestCache(Config{})
	cache.Put("a", []byte("1"))
	cache.Get("a")
	cache.Clear()
	if cache.Len() != 0 || cache.GetStats() != (Stats{}) {
		t.Errorf("Clear left %d entries, stats %+v", cache.Len(), cache.GetStats())
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := New(Config{CleanupInterval: time.Millisecond})
	defer cache.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				k := fmt.Sprintf("k%d", j%17)
				cache.PutWithDeps(k, []byte(k), []string{fmt.Sprint("rev:", i)})
				cache.Get(k)
				if j%50 == 0 {
					cache.InvalidateByDependency(fmt.Sprint("rev:", i))
				}
			}
		}(i)
	}
	wg.Wait()
	cache.Close()
}

func TestKey(t *testing.T) {
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key does not separate inputs")
	}
	if Key("x") != Key("x") {
		t.Error("Key is not deterministic")
	}
	if len(Key()) != 64 {
		t.Errorf("len(Key()) = %d, want 64", len(Key()))
	}
}
