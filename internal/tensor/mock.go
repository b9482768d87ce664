package tensor

import (
	"fmt"
	"sync"
)

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a simple backend for testing.
//
// It multiplies naively on the host and records every call. When created for
// an asynchronous device, products stay zero until Synchronize runs, the way
// queued GPU work would, so callers that skip a synchronization gate observe
// stale results.
type MockBackend struct {
	device Device

	// OnesErr, when set, is returned by Ones.
	OnesErr error
	// SyncErr, when set, is returned by Synchronize.
	SyncErr error

	mu       sync.Mutex
	calls    []string
	pending  []pendingProduct
	released bool
}

type pendingProduct struct {
	out, a, b *RawTensor
}

// NewMockBackend creates a MockBackend on the CPU device.
func NewMockBackend() *MockBackend {
	return &MockBackend{device: CPU}
}

// NewMockBackendOn creates a MockBackend that reports the given device.
func NewMockBackendOn(device Device) *MockBackend {
	return &MockBackend{device: device}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return m.device
}

// Calls returns the recorded operation names in call order.
func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Count returns how many times op was called.
func (m *MockBackend) Count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == op {
			n++
		}
	}
	return n
}

// Released reports whether Release was called.
func (m *MockBackend) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

func (m *MockBackend) record(op string) {
	m.mu.Lock()
	m.calls = append(m.calls, op)
	m.mu.Unlock()
}

// Ones allocates a host tensor filled with ones.
func (m *MockBackend) Ones(shape Shape, dtype DataType) (*RawTensor, error) {
	m.record("ones")
	if m.OnesErr != nil {
		return nil, m.OnesErr
	}
	t, err := NewRaw(shape, dtype, m.device)
	if err != nil {
		return nil, err
	}
	t.Fill(1)
	return t, nil
}

// MatMul performs naive matrix multiplication.
func (m *MockBackend) MatMul(a, b *RawTensor) *RawTensor {
	m.record("matmul")

	if len(a.Shape()) != 2 || len(b.Shape()) != 2 {
		panic(fmt.Sprintf("mock: matmul requires 2D tensors, got %v and %v", a.Shape(), b.Shape()))
	}
	if a.Shape()[1] != b.Shape()[0] {
		panic(fmt.Sprintf("mock: matmul shape mismatch %v @ %v", a.Shape(), b.Shape()))
	}

	out, err := NewRaw(Shape{a.Shape()[0], b.Shape()[1]}, a.DType(), m.device)
	if err != nil {
		panic(err)
	}

	if m.device.Async() {
		m.mu.Lock()
		m.pending = append(m.pending, pendingProduct{out: out, a: a, b: b})
		m.mu.Unlock()
		return out
	}

	naiveMatMul(out, a, b)
	return out
}

// Synchronize completes deferred products.
func (m *MockBackend) Synchronize() error {
	m.record("sync")
	if m.SyncErr != nil {
		return m.SyncErr
	}

	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, p := range pending {
		// Released results have no host buffer left to write.
		if p.out.buffer.data != nil {
			naiveMatMul(p.out, p.a, p.b)
		}
	}
	return nil
}

// Release marks the backend released.
func (m *MockBackend) Release() {
	m.record("release")
	m.mu.Lock()
	m.released = true
	m.mu.Unlock()
}

func naiveMatMul(out, a, b *RawTensor) {
	mDim, k, n := a.Shape()[0], a.Shape()[1], b.Shape()[1]
	for i := 0; i < mDim; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			for p := 0; p < k; p++ {
				sum += a.At(i, p) * b.At(p, j)
			}
			switch out.dtype {
			case Float32:
				out.AsFloat32()[i*n+j] = float32(sum)
			case Float64:
				out.AsFloat64()[i*n+j] = sum
			}
		}
	}
}
