package cairo_run_test

import (
	"testing"

	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/parser"
	"github.com/cairovm-core/cairovm/pkg/vm/cairo_run"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

const biasedOffsetBase = int64(1) << 15

// encodeAssertEqImmediate builds the one-instruction program "[ap] = 7":
// an AssertEq opcode whose op1 is the trailing immediate word, matching
// the hand-encoded instruction pkg/vm's own step test exercises.
func encodeAssertEqImmediate(value uint64) []memory.Value {
	u := func(v int64) uint64 { return uint64(v + biasedOffsetBase) }
	const op1Imm = uint64(1) << 2
	const opcodeAssertEq = uint64(1) << 14
	word := u(0) | u(0)<<16 | u(1)<<32 | (op1Imm | opcodeAssertEq)
	return []memory.Value{
		memory.NewFeltValue(lambdaworks.FeltFromUint64(word)),
		memory.NewFeltValue(lambdaworks.FeltFromUint64(value)),
	}
}

// buildProgram assembles a minimal, fixture-free Program: no builtins, no
// hints, one instruction ending at the pc right after it.
func buildProgram(data []memory.Value) *parser.Program {
	main := 0
	end := len(data)
	return &parser.Program{
		Data: data,
		Main: &main,
		End:  &end,
	}
}

func TestRunAssignsImmediateToApAndHalts(t *testing.T) {
	program := buildProgram(encodeAssertEqImmediate(7))

	runner, err := cairo_run.NewCairoRunner(program, "plain")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := runner.Run(nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	executionBase := memory.NewRelocatable(1, 0)
	dstAddr, err := executionBase.AddUint(2)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	dst, ok := runner.Vm.Segments.Memory.Get(dstAddr)
	if !ok {
		t.Fatalf("expected dst cell to have been written")
	}
	felt, _ := dst.GetFelt()
	if !felt.Equal(lambdaworks.FeltFromUint64(7)) {
		t.Errorf("expected 7, got %s", felt)
	}

	if len(runner.Vm.Trace) != 1 {
		t.Errorf("expected one executed step, got %d", len(runner.Vm.Trace))
	}
}

func TestRunRejectsUnsupportedBuiltin(t *testing.T) {
	program := buildProgram(encodeAssertEqImmediate(1))
	program.Builtins = []parser.BuiltinName{parser.BuiltinKeccak}

	if _, err := cairo_run.NewCairoRunner(program, "small"); err == nil {
		t.Errorf("expected an error instantiating keccak under the small layout")
	}
}

func TestRunRequiresEndPc(t *testing.T) {
	program := buildProgram(encodeAssertEqImmediate(1))
	program.End = nil

	runner, err := cairo_run.NewCairoRunner(program, "plain")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := runner.Run(nil); err == nil {
		t.Errorf("expected a missing end pc error")
	}
}
