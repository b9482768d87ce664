package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestForChunks_CoversRangeOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}
	n := 500

	var mu sync.Mutex
	seen := make([]int, n)
	ForChunks(n, func(start, end int) {
		if start >= end {
			t.Errorf("Empty chunk [%d, %d)", start, end)
		}
		mu.Lock()
		defer mu.Unlock()
		for i := start; i < end; i++ {
			seen[i]++
		}
	}, cfg)

	for i, c := range seen {
		if c != 1 {
			t.Fatalf("Index %d visited %d times", i, c)
		}
	}
}

func TestForChunks_Empty(t *testing.T) {
	called := false
	ForChunks(0, func(_, _ int) { called = true }, DefaultConfig())
	if called {
		t.Error("Expected no call for empty range")
	}
}

func TestCount(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 10}

	got := Count(1000, func(i int) bool { return i%7 == 0 }, cfg)
	if got != 143 {
		t.Errorf("Expected 143, got %d", got)
	}

	cfg.Enabled = false
	if got := Count(10, func(int) bool { return true }, cfg); got != 10 {
		t.Errorf("Expected 10, got %d", got)
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfgSeq)
		}
	})
}

func BenchmarkCount(b *testing.B) {
	cfg := DefaultConfig()
	data := make([]float32, 500*500)
	for i := range data {
		data[i] = 500
	}

	for i := 0; i < b.N; i++ {
		Count(len(data), func(j int) bool { return data[j] != 500 }, cfg)
	}
}
