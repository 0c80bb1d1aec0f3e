package memory_test

import (
	"testing"

	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

func TestRelocatableCmp(t *testing.T) {
	a := memory.NewRelocatable(1, 2)
	b := memory.NewRelocatable(1, 3)
	c := memory.NewRelocatable(2, 0)

	if a.Cmp(b) >= 0 {
		t.Errorf("expected a < b")
	}
	if b.Cmp(c) >= 0 {
		t.Errorf("expected b < c")
	}
	if a.Cmp(a) != 0 {
		t.Errorf("expected a == a")
	}
}

func TestRelocatableAddUintOverflow(t *testing.T) {
	r := memory.NewRelocatable(0, ^uint64(0))
	if _, err := r.AddUint(1); err == nil {
		t.Errorf("expected overflow error")
	}
}

func TestRelocatableSubUintNegative(t *testing.T) {
	r := memory.NewRelocatable(0, 1)
	if _, err := r.SubUint(2); err == nil {
		t.Errorf("expected negative offset error")
	}
}

func TestRelocatableSubSameSegment(t *testing.T) {
	a := memory.NewRelocatable(3, 10)
	b := memory.NewRelocatable(3, 4)
	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if diff != 6 {
		t.Errorf("expected 6, got %d", diff)
	}
}

func TestRelocatableSubDifferentSegment(t *testing.T) {
	a := memory.NewRelocatable(3, 10)
	b := memory.NewRelocatable(4, 4)
	if _, err := a.Sub(b); err == nil {
		t.Errorf("expected segment mismatch error")
	}
}

func TestValueAddAddresses(t *testing.T) {
	a := memory.NewAddressValue(memory.NewRelocatable(1, 0))
	b := memory.NewAddressValue(memory.NewRelocatable(2, 0))
	if _, err := a.Add(b); err == nil {
		t.Errorf("expected error adding two addresses")
	}
}

func TestValueAddAddressFelt(t *testing.T) {
	a := memory.NewAddressValue(memory.NewRelocatable(1, 5))
	b := memory.NewFeltValue(lambdaworks.FeltFromUint64(3))
	result, err := a.Add(b)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	addr, ok := result.GetAddress()
	if !ok {
		t.Fatalf("expected address result")
	}
	if addr.Offset != 8 || addr.SegmentIndex != 1 {
		t.Errorf("expected 1:8, got %s", addr)
	}
}

func TestValueSubAddresses(t *testing.T) {
	a := memory.NewAddressValue(memory.NewRelocatable(1, 10))
	b := memory.NewAddressValue(memory.NewRelocatable(1, 4))
	result, err := a.Sub(b)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	f, ok := result.GetFelt()
	if !ok {
		t.Fatalf("expected felt result")
	}
	if !f.Equal(lambdaworks.FeltFromUint64(6)) {
		t.Errorf("expected 6, got %s", f)
	}
}

func TestValueSubFeltMinusAddress(t *testing.T) {
	a := memory.NewFeltValue(lambdaworks.FeltFromUint64(6))
	b := memory.NewAddressValue(memory.NewRelocatable(1, 4))
	if _, err := a.Sub(b); err == nil {
		t.Errorf("expected error subtracting address from felt")
	}
}

func TestValueOrderingAddressBeforeFelt(t *testing.T) {
	a := memory.NewAddressValue(memory.NewRelocatable(0, 0))
	b := memory.NewFeltValue(lambdaworks.FeltFromUint64(0))
	if a.Cmp(b) >= 0 {
		t.Errorf("expected every address to order before every felt")
	}
}

func TestValueIsZero(t *testing.T) {
	zero := memory.NewFeltValue(lambdaworks.FeltZero())
	if !zero.IsZero() {
		t.Errorf("expected felt zero to report IsZero")
	}
	addr := memory.NewAddressValue(memory.NewRelocatable(0, 0))
	if addr.IsZero() {
		t.Errorf("expected address to never report IsZero")
	}
}
