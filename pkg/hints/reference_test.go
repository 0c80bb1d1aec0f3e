package hints_test

import (
	"testing"

	"github.com/cairovm-core/cairovm/pkg/hints"
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

func TestResolveImmediate(t *testing.T) {
	ref := &hints.HintReference{Offset1: hints.ImmediateOffset(lambdaworks.FeltFromUint64(7))}
	mem := memory.NewMemory()
	ctx := hints.Context{Ap: memory.NewRelocatable(1, 0), Fp: memory.NewRelocatable(1, 0)}

	v, err := ref.Resolve(mem, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	f, ok := v.GetFelt()
	if !ok || !f.Equal(lambdaworks.FeltFromUint64(7)) {
		t.Errorf("expected felt 7, got %s", v)
	}
}

func TestResolveFpReferenceNoDeref(t *testing.T) {
	ref := &hints.HintReference{
		Offset1: hints.ReferenceOffset(hints.RegisterFP, -3, false),
	}
	mem := memory.NewMemory()
	ctx := hints.Context{Fp: memory.NewRelocatable(1, 10)}

	v, err := ref.Resolve(mem, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	addr, ok := v.GetAddress()
	if !ok || addr.Offset != 7 {
		t.Errorf("expected address 1:7, got %s", v)
	}
}

func TestResolveDereferencesThroughMemory(t *testing.T) {
	mem := memory.NewMemory()
	cellAddr := memory.NewRelocatable(1, 7)
	if err := mem.Insert(cellAddr, memory.NewFeltValue(lambdaworks.FeltFromUint64(99))); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	ref := &hints.HintReference{
		Offset1:     hints.ReferenceOffset(hints.RegisterFP, -3, false),
		Dereference: true,
	}
	ctx := hints.Context{Fp: memory.NewRelocatable(1, 10)}

	v, err := ref.Resolve(mem, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	f, ok := v.GetFelt()
	if !ok || !f.Equal(lambdaworks.FeltFromUint64(99)) {
		t.Errorf("expected felt 99, got %s", v)
	}
}

func TestResolveApTrackingMismatch(t *testing.T) {
	ref := &hints.HintReference{
		Offset1:    hints.ReferenceOffset(hints.RegisterAP, 0, false),
		ApTracking: hints.ApTracking{Group: 1, Offset: 0},
	}
	mem := memory.NewMemory()
	ctx := hints.Context{Ap: memory.NewRelocatable(1, 5), CurrentTracking: hints.ApTracking{Group: 2, Offset: 0}}

	if _, err := ref.Resolve(mem, ctx); err == nil {
		t.Errorf("expected non-resolvable error on ap-tracking group mismatch")
	}
}

func TestResolveApTrackingOffsetDelta(t *testing.T) {
	ref := &hints.HintReference{
		Offset1:    hints.ReferenceOffset(hints.RegisterAP, 0, false),
		ApTracking: hints.ApTracking{Group: 1, Offset: 2},
	}
	mem := memory.NewMemory()
	ctx := hints.Context{Ap: memory.NewRelocatable(1, 10), CurrentTracking: hints.ApTracking{Group: 1, Offset: 5}}

	v, err := ref.Resolve(mem, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	addr, ok := v.GetAddress()
	if !ok {
		t.Fatalf("expected address result")
	}
	// live_ap = current_ap(10) - (current.offset(5) - ref.offset(2)) = 10 - 3 = 7
	if addr.Offset != 7 {
		t.Errorf("expected offset 7, got %d", addr.Offset)
	}
}

func TestResolveOffset1PlusOffset2(t *testing.T) {
	o2 := hints.ValueOffset(3)
	ref := &hints.HintReference{
		Offset1: hints.ReferenceOffset(hints.RegisterFP, 0, false),
		Offset2: &o2,
	}
	mem := memory.NewMemory()
	ctx := hints.Context{Fp: memory.NewRelocatable(1, 4)}

	v, err := ref.Resolve(mem, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	addr, ok := v.GetAddress()
	if !ok || addr.Offset != 7 {
		t.Errorf("expected address 1:7, got %s", v)
	}
}
