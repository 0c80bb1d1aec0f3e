package builtins_test

import (
	"testing"

	"github.com/cairovm-core/cairovm/pkg/builtins"
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

func incrementPermutation(state [builtins.InputCellsPerKeccak]uint64) [builtins.InputCellsPerKeccak]uint64 {
	var out [builtins.InputCellsPerKeccak]uint64
	for i, w := range state {
		out[i] = w + 1
	}
	return out
}

func TestKeccakDeducesOutputLanesFromInputs(t *testing.T) {
	segments := memory.NewSegmentManager()
	runner := builtins.NewKeccakBuiltinRunner(true, 2048, incrementPermutation)
	runner.InitializeSegments(segments)

	base := runner.Base().SegmentIndex
	for i := 0; i < builtins.InputCellsPerKeccak; i++ {
		addr := memory.NewRelocatable(base, uint64(i))
		if err := segments.Memory.Insert(addr, memory.NewFeltValue(lambdaworks.FeltFromUint64(uint64(i)))); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}

	out := memory.NewRelocatable(base, builtins.InputCellsPerKeccak)
	value, err := runner.DeduceMemoryCell(out, segments.Memory)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if value == nil {
		t.Fatalf("expected a deduced value")
	}
	felt, _ := value.GetFelt()
	if !felt.Equal(lambdaworks.FeltFromUint64(1)) {
		t.Errorf("expected 1, got %s", felt)
	}
}
