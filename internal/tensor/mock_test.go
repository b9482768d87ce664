package tensor

import (
	"errors"
	"testing"
)

func TestMockBackend_SyncMatMul(t *testing.T) {
	m := NewMockBackend()
	a, err := m.Ones(Square(4), Float32)
	if err != nil {
		t.Fatalf("Ones: %v", err)
	}

	out := m.MatMul(a, a)
	for _, v := range out.AsFloat32() {
		if v != 4 {
			t.Fatalf("got %v, want 4", v)
		}
	}
	if m.Count("matmul") != 1 || m.Count("ones") != 1 {
		t.Errorf("calls = %v", m.Calls())
	}
}

func TestMockBackend_AsyncDefersUntilSync(t *testing.T) {
	m := NewMockBackendOn(WebGPU)
	a, _ := m.Ones(Square(3), Float64)

	out := m.MatMul(a, a)
	if out.At(0, 0) != 0 {
		t.Fatal("async product completed before Synchronize")
	}

	if err := m.Synchronize(); err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if out.At(2, 1) != 3 {
		t.Errorf("got %v, want 3", out.At(2, 1))
	}

	want := []string{"ones", "matmul", "sync"}
	calls := m.Calls()
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
}

func TestMockBackend_ReleasedPendingResult(t *testing.T) {
	m := NewMockBackendOn(WebGPU)
	a, _ := m.Ones(Square(2), Float32)
	out := m.MatMul(a, a)
	out.Release()

	if err := m.Synchronize(); err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
}

func TestMockBackend_Errors(t *testing.T) {
	m := NewMockBackend()
	m.OnesErr = errors.New("out of memory")
	if _, err := m.Ones(Square(2), Float32); !errors.Is(err, m.OnesErr) {
		t.Errorf("Ones error = %v", err)
	}

	m.SyncErr = errors.New("device lost")
	if err := m.Synchronize(); !errors.Is(err, m.SyncErr) {
		t.Errorf("Synchronize error = %v", err)
	}

	m.Release()
	if !m.Released() {
		t.Error("Release not recorded")
	}
}

func TestMockBackend_MatMulShapeMismatch(t *testing.T) {
	m := NewMockBackend()
	a, _ := NewRaw(Shape{2, 3}, Float32, CPU)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	_ = m.MatMul(a, a)
}
