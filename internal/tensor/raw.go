package tensor

import (
	"fmt"
	"sync"
	"unsafe"
)

// tensorBuffer is host memory backing a RawTensor.
type tensorBuffer struct {
	data []byte
	mu   sync.Mutex
}

func newTensorBuffer(size int) *tensorBuffer {
	return &tensorBuffer{data: make([]byte, size)}
}

// RawTensor is the low-level tensor representation.
//
// A RawTensor lives either in host memory or on a GPU. GPU-resident tensors
// carry a GPUData handle; their host buffer is filled from the device the
// first time Data is called.
type RawTensor struct {
	buffer  *tensorBuffer
	shape   Shape
	stride  []int
	dtype   DataType
	device  Device
	gpuData *GPUData
	synced  bool // host buffer holds the device contents
}

// NewRaw creates a new host-resident RawTensor with the given shape and type.
// Memory is allocated and zeroed.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("unsupported dtype %s", dtype)
	}

	return &RawTensor{
		buffer: newTensorBuffer(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
		synced: true,
	}, nil
}

// NewGPURaw creates a RawTensor whose contents live in a GPU buffer.
// Host memory is allocated but not filled until Data is called.
func NewGPURaw(shape Shape, dtype DataType, device Device, gpuData *GPUData) (*RawTensor, error) {
	if gpuData == nil {
		return nil, fmt.Errorf("gpu tensor requires gpu data")
	}
	t, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	t.gpuData = gpuData
	t.synced = false
	return t, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// GPUData returns the device buffer handle, or nil for host tensors.
func (r *RawTensor) GPUData() *GPUData {
	return r.gpuData
}

// IsResident reports whether the tensor's contents live on a GPU.
func (r *RawTensor) IsResident() bool {
	return r.gpuData != nil
}

// Data returns the raw byte slice.
// For GPU tensors the device buffer is read back on first access, which
// blocks until all work writing the buffer has completed.
//
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	r.buffer.mu.Lock()
	defer r.buffer.mu.Unlock()

	if !r.synced {
		data, err := r.gpuData.Read()
		if err != nil {
			panic(fmt.Sprintf("tensor: failed to read %s buffer: %v", r.device, err))
		}
		copy(r.buffer.data, data)
		r.synced = true
	}
	return r.buffer.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	data := r.Data()
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	data := r.Data()
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// Fill sets every element of a host tensor to value.
// Panics for GPU-resident tensors, which are written by their backend.
func (r *RawTensor) Fill(value float64) {
	if r.IsResident() {
		panic("tensor: Fill on a GPU-resident tensor")
	}
	switch r.dtype {
	case Float32:
		data := r.AsFloat32()
		v := float32(value)
		for i := range data {
			data[i] = v
		}
	case Float64:
		data := r.AsFloat64()
		for i := range data {
			data[i] = value
		}
	}
}

// At returns the element at the given indices as float64.
// Panics if indices are out of bounds.
func (r *RawTensor) At(indices ...int) float64 {
	if len(indices) != len(r.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(r.shape), len(indices)))
	}

	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= r.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, r.shape[i]))
		}
		offset += idx * r.stride[i]
	}

	if r.dtype == Float32 {
		return float64(r.AsFloat32()[offset])
	}
	return r.AsFloat64()[offset]
}

// Release frees the tensor's memory. GPU buffers are handed back to their
// owning backend. The tensor must not be used afterwards.
func (r *RawTensor) Release() {
	if r.gpuData != nil {
		r.gpuData.Release()
	}
	r.buffer.mu.Lock()
	r.buffer.data = nil
	r.buffer.mu.Unlock()
}
