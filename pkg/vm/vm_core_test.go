package vm_test

import (
	"testing"

	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

const biasedOffsetBase = int64(1) << 15

func encodeWord(off0, off1, off2 int64, flags uint64) lambdaworks.Felt {
	u := func(v int64) uint64 { return uint64(v + biasedOffsetBase) }
	word := u(off0) | u(off1)<<16 | u(off2)<<32 | flags<<48
	return lambdaworks.FeltFromUint64(word)
}

// TestStepAssertEqImmediate executes "[ap] = 7" (an AssertEq instruction
// whose op1 is the trailing immediate word) and checks that dst is
// deduced and written, and pc advances past both words.
func TestStepAssertEqImmediate(t *testing.T) {
	const op1Imm = uint64(1) << 2
	const opcodeAssertEq = uint64(1) << 14
	instructionWord := encodeWord(0, 0, 1, op1Imm|opcodeAssertEq)

	machine := vm.NewVirtualMachine()
	programSegment := machine.Segments.AddSegment()
	executionSegment := machine.Segments.AddSegment()

	if _, err := machine.Segments.LoadData(programSegment, []memory.Value{
		memory.NewFeltValue(instructionWord),
		memory.NewFeltValue(lambdaworks.FeltFromUint64(7)),
	}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	machine.RunContext.Pc = programSegment
	machine.RunContext.Ap = executionSegment
	machine.RunContext.Fp = executionSegment

	instruction, err := vm.DecodeInstruction(instructionWord)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if err := machine.Step(*instruction); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if machine.RunContext.Pc.Offset != 2 {
		t.Errorf("expected pc to advance to 2, got %d", machine.RunContext.Pc.Offset)
	}

	dst, ok := machine.Segments.Memory.Get(executionSegment)
	if !ok {
		t.Fatalf("expected dst to have been written")
	}
	felt, _ := dst.GetFelt()
	if !felt.Equal(lambdaworks.FeltFromUint64(7)) {
		t.Errorf("expected dst to be 7, got %s", felt)
	}

	if len(machine.Trace) != 1 {
		t.Errorf("expected one trace entry, got %d", len(machine.Trace))
	}
}

func TestDecodeInstructionRejectsOverflowingWord(t *testing.T) {
	huge, _ := lambdaworks.FeltFromDecString("36893488147419103232") // 2^65
	if _, err := vm.DecodeInstruction(huge); err == nil {
		t.Errorf("expected an invalid encoding error")
	}
}
