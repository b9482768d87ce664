// Package webgpu implements the WebGPU backend for GPU-accelerated matrix
// multiplication. Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO
// WebGPU bindings.
package webgpu

import "errors"

// ErrUnavailable is returned when no WebGPU adapter can be opened.
var ErrUnavailable = errors.New("webgpu: not available")
