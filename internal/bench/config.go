// Package bench times repeated square matrix multiplications on a tensor
// backend and reports the achieved throughput.
package bench

import (
	"errors"
	"fmt"

	"github.com/born-ml/matbench/internal/parallel"
	"github.com/born-ml/matbench/internal/tensor"
)

const (
	// DefaultSize is the side length of the square operands.
	DefaultSize = 500
	// DefaultIterations is the number of timed multiplications.
	DefaultIterations = 50
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("bench: invalid config")

// Config controls a benchmark run.
type Config struct {
	Size       int             // Side length of both operands.
	Iterations int             // Timed multiplications, warm-up excluded.
	DType      tensor.DataType // Element type of the operands.
	Verify     bool            // Check inputs and the last product after timing.
	Parallel   parallel.Config // Fan-out used by verification.
}

// DefaultConfig returns the fixed benchmark parameters.
func DefaultConfig() Config {
	return Config{
		Size:       DefaultSize,
		Iterations: DefaultIterations,
		DType:      tensor.Float32,
		Verify:     true,
		Parallel:   parallel.DefaultConfig(),
	}
}

// Validate reports whether the config can drive a run.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfig, c.Size)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidConfig, c.Iterations)
	}
	if !c.DType.Valid() {
		return fmt.Errorf("%w: unsupported dtype %s", ErrInvalidConfig, c.DType)
	}
	return nil
}
