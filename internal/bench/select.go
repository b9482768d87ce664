package bench

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/born-ml/matbench/internal/backend/cpu"
	"github.com/born-ml/matbench/internal/backend/webgpu"
	"github.com/born-ml/matbench/internal/tensor"
)

// Selector picks the backend a run executes on: the accelerator when the
// probe finds one, the CPU otherwise.
type Selector struct {
	Probe           func() bool
	OpenAccelerator func() (tensor.Backend, error)
	OpenCPU         func() tensor.Backend
	Log             zerolog.Logger
}

// DefaultSelector probes for a WebGPU adapter and falls back to the CPU
// backend.
func DefaultSelector(log zerolog.Logger) *Selector {
	return &Selector{
		Probe:           webgpu.IsAvailable,
		OpenAccelerator: webgpu.Open,
		OpenCPU:         func() tensor.Backend { return cpu.New() },
		Log:             log,
	}
}

// Select probes once and opens the chosen backend. A present accelerator
// that fails to open is an error, not a fallback.
func (s *Selector) Select() (tensor.Backend, error) {
	if !s.Probe() {
		s.Log.Info().Msg("no GPU adapter found, using CPU")
		return s.OpenCPU(), nil
	}

	backend, err := s.OpenAccelerator()
	if err != nil {
		return nil, fmt.Errorf("bench: open accelerator: %w", err)
	}
	s.Log.Debug().Str("backend", backend.Name()).Msg("using accelerator")
	return backend, nil
}
