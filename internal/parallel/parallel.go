// Package parallel fans index ranges out over worker goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// ForChunks splits [0, n) into contiguous chunks and calls f(start, end)
// once per chunk. Falls back to a single call if parallelism is disabled
// or n is too small.
func ForChunks(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// For executes f(i) for i in [0, n) with optional parallelism.
func For(n int, f func(i int), cfg Config) {
	ForChunks(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// Count returns how many i in [0, n) satisfy pred.
func Count(n int, pred func(i int) bool, cfg Config) int {
	var total atomic.Int64
	ForChunks(n, func(start, end int) {
		var local int64
		for i := start; i < end; i++ {
			if pred(i) {
				local++
			}
		}
		total.Add(local)
	}, cfg)
	return int(total.Load())
}
