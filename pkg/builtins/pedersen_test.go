package builtins_test

import (
	"testing"

	"github.com/cairovm-core/cairovm/pkg/builtins"
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

func stubPedersenHash(a, b lambdaworks.Felt) lambdaworks.Felt {
	return a.Add(b)
}

func TestPedersenDeducesOutputCellFromInputs(t *testing.T) {
	segments := memory.NewSegmentManager()
	runner := builtins.NewPedersenBuiltinRunner(true, 8, stubPedersenHash)
	runner.InitializeSegments(segments)

	a := memory.NewRelocatable(runner.Base().SegmentIndex, 0)
	b := memory.NewRelocatable(runner.Base().SegmentIndex, 1)
	out := memory.NewRelocatable(runner.Base().SegmentIndex, 2)

	if err := segments.Memory.Insert(a, memory.NewFeltValue(lambdaworks.FeltFromUint64(3))); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := segments.Memory.Insert(b, memory.NewFeltValue(lambdaworks.FeltFromUint64(4))); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	value, err := runner.DeduceMemoryCell(out, segments.Memory)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if value == nil {
		t.Fatalf("expected a deduced value")
	}
	felt, _ := value.GetFelt()
	if !felt.Equal(lambdaworks.FeltFromUint64(7)) {
		t.Errorf("expected 7, got %s", felt)
	}
}

func TestPedersenDeducesNothingWithoutBothInputs(t *testing.T) {
	segments := memory.NewSegmentManager()
	runner := builtins.NewPedersenBuiltinRunner(true, 8, stubPedersenHash)
	runner.InitializeSegments(segments)

	out := memory.NewRelocatable(runner.Base().SegmentIndex, 2)
	value, err := runner.DeduceMemoryCell(out, segments.Memory)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if value != nil {
		t.Errorf("expected no deduced value, got %v", value)
	}
}
