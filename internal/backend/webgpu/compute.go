//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/born-ml/matbench/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
)

// fenceSize is the smallest legal copy size (COPY_BUFFER_ALIGNMENT).
const fenceSize = 4

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached in the Backend's shaders map.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, exists := b.shaders[name]; exists {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()

	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates a new one.
func (b *Backend) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	b.mu.RLock()
	if pipeline, exists := b.pipelines[name]; exists {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	// Auto layout (nil layout)
	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()

	return pipeline
}

// createBuffer creates a GPU buffer holding data.
func (b *Backend) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*byte)(mappedPtr), size), data)
	buffer.Unmap()

	return buffer
}

// createUniformBuffer creates a uniform buffer padded to 16 bytes.
func (b *Backend) createUniformBuffer(data []byte) *wgpu.Buffer {
	alignedSize := (len(data) + 15) &^ 15
	padded := make([]byte, alignedSize)
	copy(padded, data)
	return b.createBuffer(padded, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
}

// readBuffer copies a GPU buffer to CPU memory through a staging buffer,
// since storage buffers can't be mapped directly. Pending commands are
// submitted first so the copy observes them; the call blocks until the copy
// has executed.
func (b *Backend) readBuffer(srcBuffer *wgpu.Buffer, size uint64) ([]byte, error) {
	b.FlushCommands()

	stagingBuffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer stagingBuffer.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(srcBuffer, 0, stagingBuffer, 0, size)
	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)

	if err := stagingBuffer.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}

	mappedPtr := stagingBuffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mappedSlice)

	stagingBuffer.Unmap()

	return result, nil
}

// Synchronize blocks until every queued operation has executed on the GPU.
func (b *Backend) Synchronize() error {
	if _, err := b.readBuffer(b.fence, fenceSize); err != nil {
		return fmt.Errorf("webgpu: synchronize: %w", err)
	}
	return nil
}

// Ones uploads a matrix of ones to a device-resident buffer.
// Only float32 is supported.
func (b *Backend) Ones(shape tensor.Shape, dtype tensor.DataType) (*tensor.RawTensor, error) {
	if dtype != tensor.Float32 {
		return nil, fmt.Errorf("webgpu: ones: only float32 is supported, got %s", dtype)
	}

	host, err := tensor.NewRaw(shape, dtype, tensor.CPU)
	if err != nil {
		return nil, fmt.Errorf("webgpu: ones: %w", err)
	}
	host.Fill(1)

	buffer := b.createBuffer(host.Data(), storageUsage)
	return b.wrap(buffer, uint64(host.ByteSize()), shape, dtype) //nolint:gosec // G115: ByteSize() is non-negative
}

// wrap turns a buffer into a GPU-resident tensor owned by this backend.
func (b *Backend) wrap(buffer *wgpu.Buffer, size uint64, shape tensor.Shape, dtype tensor.DataType) (*tensor.RawTensor, error) {
	//nolint:gosec // G103: buffer pointer is handed back to this backend only
	gpuData := tensor.NewGPUData(unsafe.Pointer(buffer), size, b)
	t, err := tensor.NewGPURaw(shape, dtype, tensor.WebGPU, gpuData)
	if err != nil {
		gpuData.Release()
		return nil, err
	}
	return t, nil
}

// bufferOf returns the device buffer holding t, uploading host tensors.
// The second result releases an uploaded buffer and is a no-op otherwise.
func (b *Backend) bufferOf(t *tensor.RawTensor) (*wgpu.Buffer, func()) {
	if gd := t.GPUData(); gd != nil {
		if ptr := gd.BufferPtr(); ptr != nil {
			return (*wgpu.Buffer)(ptr), func() {}
		}
		panic("webgpu: operand buffer already released")
	}
	buffer := b.createBuffer(t.Data(), storageUsage)
	return buffer, buffer.Release
}

// MatMul queues C = A @ B on the GPU and returns C as a device-resident
// tensor. A is [M, K], B is [K, N], C is [M, N].
func (b *Backend) MatMul(a, other *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.runMatMul(a, other)
	if err != nil {
		panic("webgpu: MatMul: " + err.Error())
	}
	return result
}

func (b *Backend) runMatMul(a, other *tensor.RawTensor) (*tensor.RawTensor, error) {
	if a.DType() != tensor.Float32 || other.DType() != tensor.Float32 {
		return nil, fmt.Errorf("only float32 is supported, got %s and %s", a.DType(), other.DType())
	}
	if len(a.Shape()) != 2 || len(other.Shape()) != 2 {
		return nil, fmt.Errorf("matmul requires 2D tensors, got %v and %v", a.Shape(), other.Shape())
	}

	//nolint:gosec // G115: Safe conversions, shape dimensions are non-negative
	M, K, N := uint32(a.Shape()[0]), uint32(a.Shape()[1]), uint32(other.Shape()[1])
	if other.Shape()[0] != int(K) {
		return nil, fmt.Errorf("shape mismatch: [%d,%d] @ [%d,%d]", M, K, other.Shape()[0], N)
	}

	shader := b.compileShader("matmul", matmulShader)
	pipeline := b.getOrCreatePipeline("matmul", shader)

	bufferA, releaseA := b.bufferOf(a)
	defer releaseA()
	bufferOther, releaseOther := b.bufferOf(other)
	defer releaseOther()

	resultShape := tensor.Shape{int(M), int(N)}
	resultSize := uint64(M) * uint64(N) * 4 // float32 = 4 bytes
	// Ownership of the result buffer moves to the returned tensor.
	bufferResult := b.bufferPool.Acquire(resultSize, storageUsage)

	params := make([]byte, 12)
	binary.LittleEndian.PutUint32(params[0:4], M)
	binary.LittleEndian.PutUint32(params[4:8], K)
	binary.LittleEndian.PutUint32(params[8:12], N)
	bufferParams := b.createUniformBuffer(params)
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	//nolint:gosec // G115: Safe conversions, ByteSize() returns non-negative int
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferA, 0, uint64(a.ByteSize())),
		wgpu.BufferBindingEntry(1, bufferOther, 0, uint64(other.ByteSize())),
		wgpu.BufferBindingEntry(2, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(3, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)

	workgroupsX := (N + tileSize - 1) / tileSize
	workgroupsY := (M + tileSize - 1) / tileSize
	computePass.DispatchWorkgroups(workgroupsX, workgroupsY, 1)
	computePass.End()

	b.queueCommand(encoder.Finish(nil))

	return b.wrap(bufferResult, resultSize, resultShape, tensor.Float32)
}
