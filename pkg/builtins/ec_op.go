package builtins

import (
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

const EcOpName = "ec_op"
const CellsPerEcOp = 7
const InputCellsPerEcOp = 5
const ScalarBitsEcOp = 252

// starkCurveBeta is the Starknet short Weierstrass curve's beta
// coefficient: y^2 = x^3 + x + beta.
var starkCurveBeta = mustFelt("3141592653589793238462643383279502884197169399375105820974944592307816406665")

func mustFelt(s string) lambdaworks.Felt {
	f, err := lambdaworks.FeltFromDecString(s)
	if err != nil {
		panic(err)
	}
	return f
}

type ecPoint struct {
	x, y lambdaworks.Felt
}

func ecAdd(p, q ecPoint) (ecPoint, error) {
	if p.x.Equal(q.x) {
		return ecPoint{}, &EcOpPointsError{}
	}
	slope := q.y.Sub(p.y).Div(q.x.Sub(p.x))
	x := slope.Mul(slope).Sub(p.x).Sub(q.x)
	y := slope.Mul(p.x.Sub(x)).Sub(p.y)
	return ecPoint{x: x, y: y}, nil
}

func ecDouble(p ecPoint) ecPoint {
	two := lambdaworks.FeltFromUint64(2)
	three := lambdaworks.FeltFromUint64(3)
	slope := three.Mul(p.x).Mul(p.x).Add(lambdaworks.FeltOne()).Div(two.Mul(p.y))
	x := slope.Mul(slope).Sub(two.Mul(p.x))
	y := slope.Mul(p.x.Sub(x)).Sub(p.y)
	return ecPoint{x: x, y: y}
}

// ecOpImpl computes p + m*q via double-and-add, rejecting any
// intermediate step whose two addends share an x coordinate.
func ecOpImpl(p, q ecPoint, m lambdaworks.Felt) (ecPoint, error) {
	result := p
	addend := q
	remaining := m.ToBigInt()
	for bit := 0; bit < ScalarBitsEcOp; bit++ {
		if remaining.Bit(bit) == 1 {
			sum, err := ecAdd(result, addend)
			if err != nil {
				return ecPoint{}, err
			}
			result = sum
		}
		addend = ecDouble(addend)
	}
	return result, nil
}

// EcOpPointsError is returned when an EC-op addition step would add a
// point to itself (or its negation) via the chord formula.
type EcOpPointsError struct{}

func (e *EcOpPointsError) Error() string { return "ec_op: attempted to add a point to itself" }

// EcOpPointNotOnCurveError is returned when a supplied (x, y) pair does
// not satisfy y^2 = x^3 + x + beta.
type EcOpPointNotOnCurveError struct{}

func (e *EcOpPointNotOnCurveError) Error() string { return "ec_op: point is not on the curve" }

func isOnCurve(p ecPoint) bool {
	lhs := p.y.Mul(p.y)
	rhs := p.x.Mul(p.x).Mul(p.x).Add(p.x).Add(starkCurveBeta)
	return lhs.Equal(rhs)
}

// EcOpBuiltinRunner owns the ec_op segment: seven-cell groups of
// (p.x, p.y, q.x, q.y, m, r.x, r.y) where r = p + m*q is deduced once the
// five inputs are present.
type EcOpBuiltinRunner struct {
	base     memory.Relocatable
	included bool
	ratio    int
}

func NewEcOpBuiltinRunner(included bool, ratio int) *EcOpBuiltinRunner {
	return &EcOpBuiltinRunner{included: included, ratio: ratio}
}

func (e *EcOpBuiltinRunner) Name() string                { return EcOpName }
func (e *EcOpBuiltinRunner) Base() memory.Relocatable     { return e.base }
func (e *EcOpBuiltinRunner) Ratio() int                   { return e.ratio }
func (e *EcOpBuiltinRunner) CellsPerInvocation() int      { return CellsPerEcOp }
func (e *EcOpBuiltinRunner) InputCellsPerInvocation() int { return InputCellsPerEcOp }

func (e *EcOpBuiltinRunner) InitializeSegments(segments *memory.SegmentManager) {
	e.base = segments.AddSegment()
}

func (e *EcOpBuiltinRunner) InitialStack() []memory.Value {
	if !e.included {
		return nil
	}
	return []memory.Value{memory.NewAddressValue(e.base)}
}

func (e *EcOpBuiltinRunner) DeduceMemoryCell(address memory.Relocatable, mem *memory.Memory) (*memory.Value, error) {
	groupOffset := address.Offset % CellsPerEcOp
	if groupOffset != 5 && groupOffset != 6 {
		return nil, nil
	}

	base := address.Offset - groupOffset
	cell := func(i uint64) (lambdaworks.Felt, error) {
		v, err := mem.GetFelt(memory.NewRelocatable(address.SegmentIndex, base+i))
		if err != nil {
			return lambdaworks.Felt{}, err
		}
		f, _ := v.GetFelt()
		return f, nil
	}

	px, err := cell(0)
	if err != nil {
		return nil, nil
	}
	py, err := cell(1)
	if err != nil {
		return nil, nil
	}
	qx, err := cell(2)
	if err != nil {
		return nil, nil
	}
	qy, err := cell(3)
	if err != nil {
		return nil, nil
	}
	m, err := cell(4)
	if err != nil {
		return nil, nil
	}

	p := ecPoint{x: px, y: py}
	q := ecPoint{x: qx, y: qy}
	if !isOnCurve(p) || !isOnCurve(q) {
		return nil, &EcOpPointNotOnCurveError{}
	}

	r, err := ecOpImpl(p, q, m)
	if err != nil {
		return nil, err
	}

	var result lambdaworks.Felt
	if groupOffset == 5 {
		result = r.x
	} else {
		result = r.y
	}
	value := memory.NewFeltValue(result)
	return &value, nil
}

func (e *EcOpBuiltinRunner) AddValidationRule(*memory.Memory) error { return nil }

func (e *EcOpBuiltinRunner) GetUsedInstances(segments *memory.SegmentManager) int {
	return usedInstancesFromSegment(segments, e.base, CellsPerEcOp)
}

func (e *EcOpBuiltinRunner) GetAllocatedMemoryUnits(steps int) (int, error) {
	if e.ratio == 0 {
		return 0, nil
	}
	return ceilDiv(steps, e.ratio), nil
}
