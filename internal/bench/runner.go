package bench

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/born-ml/matbench/internal/tensor"
)

// Result is the outcome of a benchmark run.
type Result struct {
	Device     tensor.Device
	Backend    string
	Size       int
	Iterations int
	Duration   time.Duration
	GFLOPS     float64
	Syncs      int // Synchronization gates passed (0 on synchronous devices).
}

// Runner times matrix multiplications on a single backend.
type Runner struct {
	backend tensor.Backend
	cfg     Config
	log     zerolog.Logger
	now     func() time.Time
}

// NewRunner creates a runner for backend. The config is validated by Run.
func NewRunner(backend tensor.Backend, cfg Config, log zerolog.Logger) *Runner {
	return &Runner{
		backend: backend,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// Run allocates the operands, performs one untimed warm-up product and then
// times cfg.Iterations products. On asynchronous devices the backend is
// synchronized after the warm-up and again before the clock stops, so the
// measured window covers completed work only.
//
// Each product is released as soon as the next one is issued, so the window
// also contains iterations-1 Release calls. On the CPU that drops a slice
// reference; on WebGPU it returns the buffer to the pool. Both are constant
// time and do not touch the device.
//
// Backend misuse panics inside the backend and is not recovered here.
func (r *Runner) Run() (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	device := r.backend.Device()
	shape := tensor.Square(r.cfg.Size)
	log := r.log.With().
		Str("device", device.String()).
		Int("size", r.cfg.Size).
		Int("iterations", r.cfg.Iterations).
		Logger()

	a, err := r.backend.Ones(shape, r.cfg.DType)
	if err != nil {
		return nil, fmt.Errorf("bench: allocate a: %w", err)
	}
	defer a.Release()
	b, err := r.backend.Ones(shape, r.cfg.DType)
	if err != nil {
		return nil, fmt.Errorf("bench: allocate b: %w", err)
	}
	defer b.Release()

	syncs := 0
	gate := func(phase string) error {
		if !device.Async() {
			return nil
		}
		if err := r.backend.Synchronize(); err != nil {
			return fmt.Errorf("bench: synchronize after %s: %w", phase, err)
		}
		syncs++
		return nil
	}

	log.Debug().Msg("warm-up")
	r.backend.MatMul(a, b).Release()
	if err := gate("warm-up"); err != nil {
		return nil, err
	}

	log.Debug().Msg("timing")
	start := r.now()
	var last *tensor.RawTensor
	for i := 0; i < r.cfg.Iterations; i++ {
		if last != nil {
			last.Release()
		}
		last = r.backend.MatMul(a, b)
	}
	defer last.Release()
	if err := gate("timed loop"); err != nil {
		return nil, err
	}
	duration := max(r.now().Sub(start), 0)

	res := &Result{
		Device:     device,
		Backend:    r.backend.Name(),
		Size:       r.cfg.Size,
		Iterations: r.cfg.Iterations,
		Duration:   duration,
		GFLOPS:     GFLOPS(r.cfg.Size, r.cfg.Iterations, duration),
		Syncs:      syncs,
	}
	log.Debug().
		Dur("duration", res.Duration).
		Float64("gflops", res.GFLOPS).
		Int("syncs", res.Syncs).
		Msg("timed loop done")

	if r.cfg.Verify {
		if err := Verify(a, b, last, r.cfg.Size, r.cfg.Parallel); err != nil {
			return res, err
		}
		log.Debug().Msg("verified")
	}
	return res, nil
}
