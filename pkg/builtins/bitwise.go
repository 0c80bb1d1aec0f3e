package builtins

import (
	"math/big"

	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

const BitwiseName = "bitwise"
const CellsPerBitwise = 5
const InputCellsPerBitwise = 2
const TotalNBitsBitwise = 251

// BitwiseBuiltinRunner owns the bitwise segment: each group of five cells
// holds (x, y, x&y, x^y, x|y); the last three are deduced from the first
// two once both are present.
type BitwiseBuiltinRunner struct {
	base     memory.Relocatable
	included bool
	ratio    int
}

func NewBitwiseBuiltinRunner(included bool, ratio int) *BitwiseBuiltinRunner {
	return &BitwiseBuiltinRunner{included: included, ratio: ratio}
}

func (b *BitwiseBuiltinRunner) Name() string                { return BitwiseName }
func (b *BitwiseBuiltinRunner) Base() memory.Relocatable     { return b.base }
func (b *BitwiseBuiltinRunner) Ratio() int                   { return b.ratio }
func (b *BitwiseBuiltinRunner) CellsPerInvocation() int      { return CellsPerBitwise }
func (b *BitwiseBuiltinRunner) InputCellsPerInvocation() int { return InputCellsPerBitwise }

func (b *BitwiseBuiltinRunner) InitializeSegments(segments *memory.SegmentManager) {
	b.base = segments.AddSegment()
}

func (b *BitwiseBuiltinRunner) InitialStack() []memory.Value {
	if !b.included {
		return nil
	}
	return []memory.Value{memory.NewAddressValue(b.base)}
}

// DeduceMemoryCell fills in and(x,y), xor(x,y), or(x,y) once x and y are
// both written, offsets 2, 3 and 4 within the five-cell group.
func (b *BitwiseBuiltinRunner) DeduceMemoryCell(address memory.Relocatable, mem *memory.Memory) (*memory.Value, error) {
	groupOffset := address.Offset % CellsPerBitwise
	if groupOffset < InputCellsPerBitwise {
		return nil, nil
	}

	base := address.Offset - groupOffset
	xAddr := memory.NewRelocatable(address.SegmentIndex, base)
	yAddr := memory.NewRelocatable(address.SegmentIndex, base+1)

	xVal, err := mem.GetFelt(xAddr)
	if err != nil {
		return nil, nil
	}
	yVal, err := mem.GetFelt(yAddr)
	if err != nil {
		return nil, nil
	}
	x, _ := xVal.GetFelt()
	y, _ := yVal.GetFelt()

	if x.Bits() > TotalNBitsBitwise || y.Bits() > TotalNBitsBitwise {
		return nil, &OutsideRangeCheckBoundsError{Felt: x}
	}

	xBig, yBig := x.ToBigInt(), y.ToBigInt()
	var result *big.Int
	switch groupOffset {
	case 2:
		result = new(big.Int).And(xBig, yBig)
	case 3:
		result = new(big.Int).Xor(xBig, yBig)
	case 4:
		result = new(big.Int).Or(xBig, yBig)
	default:
		return nil, nil
	}

	value := memory.NewFeltValue(lambdaworks.FeltFromBigInt(result))
	return &value, nil
}

func (b *BitwiseBuiltinRunner) AddValidationRule(*memory.Memory) error { return nil }

func (b *BitwiseBuiltinRunner) GetUsedInstances(segments *memory.SegmentManager) int {
	return usedInstancesFromSegment(segments, b.base, CellsPerBitwise)
}

func (b *BitwiseBuiltinRunner) GetAllocatedMemoryUnits(steps int) (int, error) {
	if b.ratio == 0 {
		return 0, nil
	}
	return ceilDiv(steps, b.ratio), nil
}
