package tensor

// Backend defines the interface that compute backends implement.
//
// Implementations:
//   - CPU: gonum BLAS, synchronous
//   - WebGPU: WGSL compute shaders, asynchronous queue
//
// Operations that misuse shapes or dtypes, or hit a device fault, panic with
// a message prefixed by the backend name. Errors are returned only where the
// caller can act on them.
type Backend interface {
	// Ones allocates a tensor of the given shape on the backend's device
	// with every element set to 1.
	Ones(shape Shape, dtype DataType) (*RawTensor, error)

	// MatMul computes a @ b for 2D tensors [M, K] @ [K, N] -> [M, N].
	// On asynchronous devices the product may still be in flight on return.
	MatMul(a, b *RawTensor) *RawTensor

	// Synchronize blocks until all work submitted to the device has completed.
	Synchronize() error

	// Release frees device resources held by the backend.
	Release()

	// Metadata
	Name() string
	Device() Device
}
