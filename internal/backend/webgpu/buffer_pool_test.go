//go:build windows

package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassOf(t *testing.T) {
	tests := []struct {
		size uint64
		want sizeClass
	}{
		{4, smallClass},
		{smallThreshold - 1, smallClass},
		{smallThreshold, mediumClass},
		{mediumThreshold - 1, mediumClass},
		{mediumThreshold, largeClass},
		{500 * 500 * 4, mediumClass},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classOf(tt.size), "size %d", tt.size)
	}
}

func TestBufferPoolAcquireRelease(t *testing.T) {
	backend := newTestBackend(t)
	pool := NewBufferPool(backend.device)
	defer pool.Clear()

	size := uint64(1024)
	buffer1 := pool.Acquire(size, storageUsage)

	stats := pool.Stats()
	assert.Equal(t, uint64(1), stats.Allocated)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Zero(t, stats.Hits)

	pool.Release(buffer1, size, storageUsage)
	stats = pool.Stats()
	assert.Equal(t, uint64(1), stats.Released)
	assert.Equal(t, 1, stats.Idle)

	buffer2 := pool.Acquire(size, storageUsage)
	assert.Same(t, buffer1, buffer2)
	stats = pool.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Zero(t, stats.Idle)

	pool.Release(buffer2, size, storageUsage)
}

func TestBufferPoolSizeMismatch(t *testing.T) {
	backend := newTestBackend(t)
	pool := NewBufferPool(backend.device)
	defer pool.Clear()

	small := pool.Acquire(1024, storageUsage)
	pool.Release(small, 1024, storageUsage)

	// A larger request in the same class cannot reuse the smaller buffer.
	larger := pool.Acquire(2048, storageUsage)
	defer larger.Release()

	stats := pool.Stats()
	assert.Equal(t, uint64(2), stats.Misses)
	assert.Equal(t, 1, stats.Idle)
}

func TestBufferPoolClear(t *testing.T) {
	backend := newTestBackend(t)
	pool := NewBufferPool(backend.device)

	for i := 0; i < 3; i++ {
		buf := pool.Acquire(2*mediumThreshold, storageUsage)
		defer pool.Release(buf, 2*mediumThreshold, storageUsage)
	}
	pool.Clear()
	assert.Zero(t, pool.Stats().Idle)
}
