// Package cpu implements the CPU backend on top of gonum BLAS.
package cpu

import (
	"fmt"

	"github.com/born-ml/matbench/internal/tensor"
)

// Compile-time check that CPUBackend implements tensor.Backend.
var _ tensor.Backend = (*CPUBackend)(nil)

// CPUBackend implements tensor operations on the CPU. All operations complete
// before they return.
type CPUBackend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Ones allocates a host tensor filled with ones.
func (cpu *CPUBackend) Ones(shape tensor.Shape, dtype tensor.DataType) (*tensor.RawTensor, error) {
	t, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		return nil, fmt.Errorf("cpu: ones: %w", err)
	}
	t.Fill(1)
	return t, nil
}

// Synchronize is a no-op: CPU work is complete when the call returns.
func (cpu *CPUBackend) Synchronize() error {
	return nil
}

// Release is a no-op: host tensors are reclaimed by the garbage collector.
func (cpu *CPUBackend) Release() {}
