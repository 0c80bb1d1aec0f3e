package builtins_test

import (
	"testing"

	"github.com/cairovm-core/cairovm/pkg/builtins"
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

func TestEcOpDeducesResultPointFromScalarOne(t *testing.T) {
	segments := memory.NewSegmentManager()
	runner := builtins.NewEcOpBuiltinRunner(true, 256)
	runner.InitializeSegments(segments)

	// p is the Pedersen shift point and q the Starknet EC generator: two
	// distinct points on the curve, so p + 1*q is a single chord addition.
	px, _ := lambdaworks.FeltFromDecString("2089986280348253421170679821480865132823066470938446095505822317253594081284")
	py, _ := lambdaworks.FeltFromDecString("1713931329540660377023406109199410414810705867260802078187082345529207694986")
	qx, _ := lambdaworks.FeltFromDecString("874739451078007766457464989774322083649278607533249481151382481072868806602")
	qy, _ := lambdaworks.FeltFromDecString("152666792071518830868575557812948353041420400780739481342941381225525861407")

	base := runner.Base().SegmentIndex
	cells := []memory.Relocatable{
		memory.NewRelocatable(base, 0),
		memory.NewRelocatable(base, 1),
		memory.NewRelocatable(base, 2),
		memory.NewRelocatable(base, 3),
		memory.NewRelocatable(base, 4),
	}
	values := []lambdaworks.Felt{px, py, qx, qy, lambdaworks.FeltFromUint64(1)}
	for i, addr := range cells {
		if err := segments.Memory.Insert(addr, memory.NewFeltValue(values[i])); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}

	rx := memory.NewRelocatable(base, 5)
	value, err := runner.DeduceMemoryCell(rx, segments.Memory)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if value == nil {
		t.Fatalf("expected a deduced value")
	}
}

func TestEcOpRejectsPointNotOnCurve(t *testing.T) {
	segments := memory.NewSegmentManager()
	runner := builtins.NewEcOpBuiltinRunner(true, 256)
	runner.InitializeSegments(segments)

	base := runner.Base().SegmentIndex
	cells := []memory.Relocatable{
		memory.NewRelocatable(base, 0),
		memory.NewRelocatable(base, 1),
		memory.NewRelocatable(base, 2),
		memory.NewRelocatable(base, 3),
		memory.NewRelocatable(base, 4),
	}
	values := []lambdaworks.Felt{
		lambdaworks.FeltFromUint64(1), lambdaworks.FeltFromUint64(1),
		lambdaworks.FeltFromUint64(1), lambdaworks.FeltFromUint64(1),
		lambdaworks.FeltFromUint64(1),
	}
	for i, addr := range cells {
		if err := segments.Memory.Insert(addr, memory.NewFeltValue(values[i])); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}

	rx := memory.NewRelocatable(base, 5)
	_, err := runner.DeduceMemoryCell(rx, segments.Memory)
	if err == nil {
		t.Errorf("expected a point-not-on-curve error")
	}
}
