//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// sizeClass buckets buffers so a lookup only scans buffers of similar size.
type sizeClass int

const (
	smallClass  sizeClass = iota // < 4KB
	mediumClass                  // 4KB - 1MB
	largeClass                   // >= 1MB
	numClasses
)

const (
	smallThreshold  = 4 * 1024
	mediumThreshold = 1024 * 1024
	maxPoolSize     = 64 // Max idle buffers per class
)

func classOf(size uint64) sizeClass {
	switch {
	case size < smallThreshold:
		return smallClass
	case size < mediumThreshold:
		return mediumClass
	default:
		return largeClass
	}
}

type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

// PoolStats reports buffer pool activity.
type PoolStats struct {
	Allocated uint64 // Buffers created by the pool
	Released  uint64 // Buffers handed back to the pool
	Hits      uint64 // Acquires served from idle buffers
	Misses    uint64 // Acquires that created a buffer
	Idle      int    // Buffers currently waiting for reuse
}

// BufferPool recycles GPU buffers between matmul results so the timed loop
// does not allocate device memory on every iteration.
type BufferPool struct {
	device *wgpu.Device

	mu    sync.Mutex
	idle  [numClasses][]pooledBuffer
	stats PoolStats
}

// NewBufferPool creates a new buffer pool for the given device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{device: device}
}

// Acquire returns an idle buffer of at least size bytes whose usage flags
// include usage, or creates one.
func (p *BufferPool) Acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := classOf(size)
	for i, pb := range p.idle[class] {
		if pb.size >= size && pb.usage&usage == usage {
			p.idle[class] = append(p.idle[class][:i], p.idle[class][i+1:]...)
			p.stats.Hits++
			p.stats.Idle--
			return pb.buffer
		}
	}

	p.stats.Misses++
	p.stats.Allocated++
	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
}

// Release returns a buffer to the pool. If its class is full the buffer is
// released to the driver immediately.
func (p *BufferPool) Release(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Released++

	class := classOf(size)
	if len(p.idle[class]) >= maxPoolSize {
		buffer.Release()
		return
	}
	p.idle[class] = append(p.idle[class], pooledBuffer{buffer: buffer, size: size, usage: usage})
	p.stats.Idle++
}

// Clear releases all idle buffers.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for class := range p.idle {
		for _, pb := range p.idle[class] {
			pb.buffer.Release()
		}
		p.idle[class] = nil
	}
	p.stats.Idle = 0
}

// Stats returns a snapshot of pool statistics.
func (p *BufferPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
