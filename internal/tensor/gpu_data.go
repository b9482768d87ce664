package tensor

import (
	"errors"
	"runtime"
	"sync"
	"unsafe"
)

// GPUBuffers is implemented by backends that own GPU buffers.
type GPUBuffers interface {
	// ReadGPUBuffer reads size bytes from a GPU buffer to CPU memory.
	// bufferPtr is unsafe.Pointer to the backend's buffer type (*wgpu.Buffer).
	ReadGPUBuffer(bufferPtr unsafe.Pointer, size uint64) ([]byte, error)

	// ReleaseGPUBuffer gives a buffer back to the backend.
	ReleaseGPUBuffer(bufferPtr unsafe.Pointer, size uint64)
}

// GPUData holds a reference to GPU-resident tensor data.
type GPUData struct {
	bufferPtr unsafe.Pointer
	size      uint64
	owner     GPUBuffers
	mu        sync.Mutex
}

// NewGPUData wraps a GPU buffer owned by owner.
// The buffer is released when the GPUData is garbage collected, unless
// Release was called first.
func NewGPUData(bufferPtr unsafe.Pointer, size uint64, owner GPUBuffers) *GPUData {
	g := &GPUData{
		bufferPtr: bufferPtr,
		size:      size,
		owner:     owner,
	}

	runtime.SetFinalizer(g, func(gd *GPUData) {
		gd.Release()
	})

	return g
}

// Read copies the buffer contents to CPU memory.
func (g *GPUData) Read() ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.bufferPtr == nil {
		return nil, errReleased
	}
	return g.owner.ReadGPUBuffer(g.bufferPtr, g.size)
}

// Release hands the buffer back to its owner. Safe to call more than once.
func (g *GPUData) Release() {
	runtime.SetFinalizer(g, nil)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.bufferPtr != nil && g.owner != nil {
		g.owner.ReleaseGPUBuffer(g.bufferPtr, g.size)
		g.bufferPtr = nil
	}
}

// BufferPtr returns the underlying GPU buffer pointer, or nil once released.
func (g *GPUData) BufferPtr() unsafe.Pointer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bufferPtr
}

// Size returns the buffer size in bytes.
func (g *GPUData) Size() uint64 {
	return g.size
}

var errReleased = errors.New("gpu buffer already released")
