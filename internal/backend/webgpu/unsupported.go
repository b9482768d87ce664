//go:build !windows

package webgpu

import "github.com/born-ml/matbench/internal/tensor"

// IsAvailable reports whether WebGPU is available on this system.
// The native bindings are only loaded on Windows.
func IsAvailable() bool {
	return false
}

// Open returns ErrUnavailable on this platform.
func Open() (tensor.Backend, error) {
	return nil, ErrUnavailable
}
