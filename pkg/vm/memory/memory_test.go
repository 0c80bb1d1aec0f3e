package memory_test

import (
	"testing"

	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

func TestMemoryInsertAndGet(t *testing.T) {
	m := memory.NewMemory()
	addr := memory.NewRelocatable(0, 0)
	v := memory.NewFeltValue(lambdaworks.FeltFromUint64(42))

	if err := m.Insert(addr, v); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	got, ok := m.Get(addr)
	if !ok {
		t.Fatalf("expected value at %s", addr)
	}
	if !got.Equal(v) {
		t.Errorf("expected %s, got %s", v, got)
	}
}

func TestMemoryWriteOnceSameValueOk(t *testing.T) {
	m := memory.NewMemory()
	addr := memory.NewRelocatable(0, 0)
	v := memory.NewFeltValue(lambdaworks.FeltFromUint64(42))

	if err := m.Insert(addr, v); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := m.Insert(addr, v); err != nil {
		t.Errorf("re-inserting the same value should succeed, got: %s", err)
	}
}

func TestMemoryWriteOnceDifferentValueFails(t *testing.T) {
	m := memory.NewMemory()
	addr := memory.NewRelocatable(0, 0)

	if err := m.Insert(addr, memory.NewFeltValue(lambdaworks.FeltFromUint64(1))); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := m.Insert(addr, memory.NewFeltValue(lambdaworks.FeltFromUint64(2))); err == nil {
		t.Errorf("expected inconsistent memory error")
	}
}

func TestMemoryValidationRuleRunsOnInsert(t *testing.T) {
	m := memory.NewMemory()
	var seen []memory.Relocatable
	rule := func(mem *memory.Memory, addr memory.Relocatable) ([]memory.Relocatable, error) {
		seen = append(seen, addr)
		return []memory.Relocatable{addr}, nil
	}
	if err := m.AddValidationRule(0, rule); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	addr := memory.NewRelocatable(0, 3)
	if err := m.Insert(addr, memory.NewFeltValue(lambdaworks.FeltFromUint64(7))); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(seen) != 1 || seen[0] != addr {
		t.Errorf("expected validation rule to run once for %s, got %v", addr, seen)
	}
}

func TestMemoryRelocationRuleAndCycleDetection(t *testing.T) {
	m := memory.NewMemory()
	if err := m.AddRelocationRule(memory.NewRelocatable(-1, 0), memory.NewRelocatable(-2, 0)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := m.AddRelocationRule(memory.NewRelocatable(-2, 0), memory.NewRelocatable(-1, 0)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := m.Insert(memory.NewRelocatable(-1, 0), memory.NewFeltValue(lambdaworks.FeltFromUint64(1))); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := m.RelocateTemporarySegments(); err == nil {
		t.Errorf("expected relocation cycle error")
	}
}

func TestMemoryRelocationChainResolves(t *testing.T) {
	m := memory.NewMemory()
	// real segment 0 already exists conceptually; temp -1 relocates into it at offset 10.
	if err := m.AddRelocationRule(memory.NewRelocatable(-1, 0), memory.NewRelocatable(0, 10)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := m.Insert(memory.NewRelocatable(-1, 2), memory.NewFeltValue(lambdaworks.FeltFromUint64(99))); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := m.RelocateTemporarySegments(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	got, ok := m.Get(memory.NewRelocatable(0, 12))
	if !ok {
		t.Fatalf("expected relocated value at 0:12")
	}
	f, _ := got.GetFelt()
	if !f.Equal(lambdaworks.FeltFromUint64(99)) {
		t.Errorf("expected 99, got %s", f)
	}
}

func TestMemoryMissingRelocationRule(t *testing.T) {
	m := memory.NewMemory()
	if err := m.Insert(memory.NewRelocatable(-1, 0), memory.NewFeltValue(lambdaworks.FeltFromUint64(1))); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := m.RelocateTemporarySegments(); err == nil {
		t.Errorf("expected missing relocation rule error")
	}
}
