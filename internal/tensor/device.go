package tensor

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	WebGPU
)

// String returns the device identifier printed by the benchmark.
func (d Device) String() string {
	switch d {
	case CPU:
		return "cpu"
	case WebGPU:
		return "webgpu"
	default:
		return "unknown"
	}
}

// Async reports whether work submitted to the device completes after the
// submitting call returns. Callers must Synchronize before reading results
// or timestamps that depend on such work.
func (d Device) Async() bool {
	return d == WebGPU
}
