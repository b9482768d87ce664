//go:build windows

package webgpu

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/born-ml/matbench/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
)

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// storageUsage is the usage set of every tensor buffer this backend creates.
const storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// errReleased is returned for reads issued after Release.
var errReleased = errors.New("webgpu: backend released")

// defaultMaxBatchSize bounds how many command buffers wait for submission.
const defaultMaxBatchSize = 32

// Backend implements tensor operations on GPU using WebGPU.
//
// Operations encode command buffers and queue them; nothing waits for the
// GPU until Synchronize or a read of a result's contents.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	adapterInfo *wgpu.AdapterInfoGo
	bufferPool  *BufferPool

	// fence is copied out by Synchronize; mapping the copy completes only
	// after every earlier submission has executed.
	fence *wgpu.Buffer

	pendingCommands []*wgpu.CommandBuffer
	pendingMu       sync.Mutex
	maxBatchSize    int // 0 = flush only on Synchronize or read
}

// New creates a new WebGPU backend on the high-performance adapter.
// Returns an error wrapping ErrUnavailable if no adapter or device can be opened.
func New() (backend *Backend, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("%w: native library not available: %v", ErrUnavailable, r)
		}
	}()

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return nil, fmt.Errorf("%w: failed to create instance: %w", ErrUnavailable, instanceErr)
	}
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: failed to request adapter: %w", ErrUnavailable, adapterErr)
	}

	adapterInfo, infoErr := adapter.GetInfo()
	if infoErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: failed to get adapter info: %w", ErrUnavailable, infoErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: failed to request device: %w", ErrUnavailable, deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: failed to get queue", ErrUnavailable)
	}

	b := &Backend{
		instance:     instance,
		adapter:      adapter,
		device:       device,
		queue:        queue,
		shaders:      make(map[string]*wgpu.ShaderModule),
		pipelines:    make(map[string]*wgpu.ComputePipeline),
		adapterInfo:  adapterInfo,
		bufferPool:   NewBufferPool(device),
		maxBatchSize: defaultMaxBatchSize,
	}
	b.fence = b.createBuffer(make([]byte, fenceSize), storageUsage)

	return b, nil
}

// Open creates a WebGPU backend as a tensor.Backend.
func Open() (tensor.Backend, error) {
	b, err := New()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// IsAvailable checks if a WebGPU adapter can be obtained on this system.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// queueCommand adds a command buffer to the pending queue for batch submission.
func (b *Backend) queueCommand(cmdBuffer *wgpu.CommandBuffer) {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()

	b.pendingCommands = append(b.pendingCommands, cmdBuffer)

	if b.maxBatchSize > 0 && len(b.pendingCommands) >= b.maxBatchSize {
		b.flushCommandsLocked()
	}
}

// flushCommandsLocked submits all pending command buffers (must hold pendingMu lock).
func (b *Backend) flushCommandsLocked() {
	if len(b.pendingCommands) == 0 {
		return
	}
	b.queue.Submit(b.pendingCommands...)
	b.pendingCommands = b.pendingCommands[:0]
}

// FlushCommands submits all pending command buffers to the GPU queue
// without waiting for them to execute.
func (b *Backend) FlushCommands() {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	b.flushCommandsLocked()
}

// PendingCommands returns the number of encoded but unsubmitted command buffers.
func (b *Backend) PendingCommands() int {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	return len(b.pendingCommands)
}

// SetMaxBatchSize sets the maximum number of commands to accumulate before
// auto-flush. 0 disables the limit.
func (b *Backend) SetMaxBatchSize(size int) {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	b.maxBatchSize = size
}

// Release releases all WebGPU resources.
// Must be called when the backend is no longer needed.
func (b *Backend) Release() {
	b.FlushCommands()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bufferPool != nil {
		b.bufferPool.Clear()
		b.bufferPool = nil
	}
	if b.fence != nil {
		b.fence.Release()
		b.fence = nil
	}

	for _, p := range b.pipelines {
		p.Release()
	}
	b.pipelines = nil

	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Name returns the backend name including the adapter description.
func (b *Backend) Name() string {
	if b.adapterInfo != nil && b.adapterInfo.Device != "" {
		return fmt.Sprintf("WebGPU (%s %s)", b.adapterInfo.Vendor, b.adapterInfo.Device)
	}
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// AdapterInfo returns information about the GPU adapter.
func (b *Backend) AdapterInfo() *wgpu.AdapterInfoGo {
	return b.adapterInfo
}

// PoolStats returns buffer pool statistics. After Release it returns zeros.
func (b *Backend) PoolStats() PoolStats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.bufferPool == nil {
		return PoolStats{}
	}
	return b.bufferPool.Stats()
}

// ReadGPUBuffer implements tensor.GPUBuffers.
// bufferPtr must be *wgpu.Buffer.
func (b *Backend) ReadGPUBuffer(bufferPtr unsafe.Pointer, size uint64) ([]byte, error) {
	b.mu.RLock()
	released := b.device == nil
	b.mu.RUnlock()
	if released {
		return nil, errReleased
	}
	return b.readBuffer((*wgpu.Buffer)(bufferPtr), size)
}

// ReleaseGPUBuffer implements tensor.GPUBuffers by returning the buffer to
// the pool. Releases that arrive after Release are ignored: the device and
// everything allocated on it are already gone.
func (b *Backend) ReleaseGPUBuffer(bufferPtr unsafe.Pointer, size uint64) {
	buffer := (*wgpu.Buffer)(bufferPtr)
	if buffer == nil {
		return
	}

	b.mu.RLock()
	pool := b.bufferPool
	b.mu.RUnlock()

	if pool == nil {
		return
	}
	pool.Release(buffer, size, storageUsage)
}
