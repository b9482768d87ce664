package cpu

import (
	"fmt"
	"testing"

	"github.com/born-ml/matbench/internal/tensor"
)

// Helper to check float32 slices are equal within epsilon.
func float32SliceEqual(a, b []float32) bool {
	const epsilon = 1e-5
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > epsilon {
			return false
		}
	}
	return true
}

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	if backend == nil {
		t.Fatal("New() returned nil")
	}
	if backend.Name() != "CPU" {
		t.Errorf("Expected name 'CPU', got '%s'", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Expected device CPU, got %v", backend.Device())
	}
	if err := backend.Synchronize(); err != nil {
		t.Errorf("Synchronize() = %v, want nil", err)
	}
	backend.Release()
}

func TestCPUBackend_Ones(t *testing.T) {
	backend := New()

	for _, dtype := range []tensor.DataType{tensor.Float32, tensor.Float64} {
		ones, err := backend.Ones(tensor.Square(5), dtype)
		if err != nil {
			t.Fatalf("Ones(%s): %v", dtype, err)
		}
		if ones.Device() != tensor.CPU {
			t.Errorf("device = %v, want cpu", ones.Device())
		}
		for i := 0; i < 5; i++ {
			for j := 0; j < 5; j++ {
				if ones.At(i, j) != 1 {
					t.Fatalf("%s: At(%d,%d) = %v, want 1", dtype, i, j, ones.At(i, j))
				}
			}
		}
	}

	if _, err := backend.Ones(tensor.Shape{0, 3}, tensor.Float32); err == nil {
		t.Error("expected error for empty shape")
	}
}

// TestCPUBackend_MatMul tests matrix multiplication.
func TestCPUBackend_MatMul(t *testing.T) {
	backend := New()

	t.Run("Float32", func(t *testing.T) {
		a, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
		b, _ := tensor.NewRaw(tensor.Shape{3, 2}, tensor.Float32, tensor.CPU)
		copy(a.AsFloat32(), []float32{1, 2, 3, 4, 5, 6})
		copy(b.AsFloat32(), []float32{7, 8, 9, 10, 11, 12})

		result := backend.MatMul(a, b)

		if !result.Shape().Equal(tensor.Shape{2, 2}) {
			t.Fatalf("shape = %v, want [2 2]", result.Shape())
		}
		expected := []float32{58, 64, 139, 154}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("got %v, want %v", result.AsFloat32(), expected)
		}
	})

	t.Run("Float64", func(t *testing.T) {
		a, _ := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float64, tensor.CPU)
		b, _ := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float64, tensor.CPU)
		copy(a.AsFloat64(), []float64{1, 2, 3, 4})
		copy(b.AsFloat64(), []float64{5, 6, 7, 8})

		got := backend.MatMul(a, b).AsFloat64()
		expected := []float64{19, 22, 43, 50}
		for i := range expected {
			if got[i] != expected[i] {
				t.Fatalf("got %v, want %v", got, expected)
			}
		}
	})

	t.Run("OnesProductEqualsSide", func(t *testing.T) {
		a, _ := backend.Ones(tensor.Square(64), tensor.Float32)
		b, _ := backend.Ones(tensor.Square(64), tensor.Float32)

		result := backend.MatMul(a, b)
		for i, v := range result.AsFloat32() {
			if v != 64 {
				t.Fatalf("element %d = %v, want 64", i, v)
			}
		}
		// Inputs are not written by MatMul.
		for _, v := range a.AsFloat32() {
			if v != 1 {
				t.Fatal("input mutated by MatMul")
			}
		}
	})
}

func TestCPUBackend_MatMulPanics(t *testing.T) {
	backend := New()

	tests := []struct {
		name string
		a, b func() *tensor.RawTensor
	}{
		{
			name: "ShapeMismatch",
			a:    func() *tensor.RawTensor { r, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU); return r },
			b:    func() *tensor.RawTensor { r, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU); return r },
		},
		{
			name: "Not2D",
			a:    func() *tensor.RawTensor { r, _ := tensor.NewRaw(tensor.Shape{6}, tensor.Float32, tensor.CPU); return r },
			b:    func() *tensor.RawTensor { r, _ := tensor.NewRaw(tensor.Shape{6}, tensor.Float32, tensor.CPU); return r },
		},
		{
			name: "DTypeMismatch",
			a:    func() *tensor.RawTensor { r, _ := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float32, tensor.CPU); return r },
			b:    func() *tensor.RawTensor { r, _ := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float64, tensor.CPU); return r },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			_ = backend.MatMul(tt.a(), tt.b())
		})
	}
}

func BenchmarkCPUBackend_MatMul(b *testing.B) {
	backend := New()
	for _, size := range []int{64, 256, 500} {
		x, _ := backend.Ones(tensor.Square(size), tensor.Float32)
		y, _ := backend.Ones(tensor.Square(size), tensor.Float32)
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = backend.MatMul(x, y)
			}
		})
	}
}
