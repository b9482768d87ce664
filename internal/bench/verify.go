package bench

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/matbench/internal/parallel"
	"github.com/born-ml/matbench/internal/tensor"
)

// ErrVerification is returned when operands or the product hold unexpected values.
var ErrVerification = errors.New("bench: verification failed")

// verifyTolerance is relative to the expected value.
const verifyTolerance = 1e-4

// Verify checks that a and b still hold only ones and that every element of
// product equals size.
func Verify(a, b, product *tensor.RawTensor, size int, cfg parallel.Config) error {
	for _, in := range []struct {
		name string
		t    *tensor.RawTensor
	}{{"a", a}, {"b", b}} {
		if bad := mismatches(in.t, 1, cfg); bad > 0 {
			return fmt.Errorf("%w: input %s has %d elements != 1", ErrVerification, in.name, bad)
		}
	}

	want := tensor.Square(size)
	if !product.Shape().Equal(want) {
		return fmt.Errorf("%w: product shape %v, want %v", ErrVerification, product.Shape(), want)
	}
	if bad := mismatches(product, float64(size), cfg); bad > 0 {
		return fmt.Errorf("%w: product has %d elements != %d", ErrVerification, bad, size)
	}
	return nil
}

// mismatches counts elements of t farther than the tolerance from want.
// NaN never matches.
// GPU-resident tensors are read back once before counting.
func mismatches(t *tensor.RawTensor, want float64, cfg parallel.Config) int {
	tol := verifyTolerance * math.Max(1, math.Abs(want))

	switch t.DType() {
	case tensor.Float32:
		data := t.AsFloat32()
		return parallel.Count(len(data), func(i int) bool {
			return !(math.Abs(float64(data[i])-want) <= tol)
		}, cfg)
	case tensor.Float64:
		data := t.AsFloat64()
		return parallel.Count(len(data), func(i int) bool {
			return !(math.Abs(data[i]-want) <= tol)
		}, cfg)
	default:
		return t.NumElements()
	}
}
