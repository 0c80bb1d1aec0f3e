package builtins

import (
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
	"github.com/pkg/errors"
)

const RangeCheckName = "range_check"
const InnerRangeCheckBoundShift = 16
const CellsPerRangeCheck = 1
const RangeCheckNParts = 8

// OutsideRangeCheckBoundsError is returned by the range-check validation
// rule when a written felt exceeds the builtin's configured bit width.
type OutsideRangeCheckBoundsError struct {
	Felt lambdaworks.Felt
}

func (e *OutsideRangeCheckBoundsError) Error() string {
	return errors.Errorf("value %s is out of range-check bounds", e.Felt).Error()
}

// RangeCheckBuiltinRunner owns the range-check segment: every cell must
// hold a felt whose canonical value fits in nParts*16 bits; the builtin
// deduces nothing, it only validates.
type RangeCheckBuiltinRunner struct {
	base     memory.Relocatable
	included bool
	ratio    int
	nParts   int
}

func NewRangeCheckBuiltinRunner(included bool, ratio, nParts int) *RangeCheckBuiltinRunner {
	if nParts == 0 {
		nParts = RangeCheckNParts
	}
	return &RangeCheckBuiltinRunner{included: included, ratio: ratio, nParts: nParts}
}

func (r *RangeCheckBuiltinRunner) Name() string                { return RangeCheckName }
func (r *RangeCheckBuiltinRunner) Base() memory.Relocatable     { return r.base }
func (r *RangeCheckBuiltinRunner) Ratio() int                   { return r.ratio }
func (r *RangeCheckBuiltinRunner) CellsPerInvocation() int      { return CellsPerRangeCheck }
func (r *RangeCheckBuiltinRunner) InputCellsPerInvocation() int { return CellsPerRangeCheck }

func (r *RangeCheckBuiltinRunner) InitializeSegments(segments *memory.SegmentManager) {
	r.base = segments.AddSegment()
}

func (r *RangeCheckBuiltinRunner) InitialStack() []memory.Value {
	if !r.included {
		return nil
	}
	return []memory.Value{memory.NewAddressValue(r.base)}
}

func (r *RangeCheckBuiltinRunner) DeduceMemoryCell(memory.Relocatable, *memory.Memory) (*memory.Value, error) {
	return nil, nil
}

// rangeCheckValidationRule is installed against this builtin's segment
// and rejects any felt wider than nParts*InnerRangeCheckBoundShift bits.
func (r *RangeCheckBuiltinRunner) rangeCheckValidationRule(mem *memory.Memory, address memory.Relocatable) ([]memory.Relocatable, error) {
	value, err := mem.GetFelt(address)
	if err != nil {
		return nil, err
	}
	felt, _ := value.GetFelt()
	if felt.Bits() > uint(r.nParts*InnerRangeCheckBoundShift) {
		return nil, &OutsideRangeCheckBoundsError{Felt: felt}
	}
	return []memory.Relocatable{address}, nil
}

func (r *RangeCheckBuiltinRunner) AddValidationRule(mem *memory.Memory) error {
	return mem.AddValidationRule(r.base.SegmentIndex, r.rangeCheckValidationRule)
}

func (r *RangeCheckBuiltinRunner) GetUsedInstances(segments *memory.SegmentManager) int {
	return usedInstancesFromSegment(segments, r.base, CellsPerRangeCheck)
}

func (r *RangeCheckBuiltinRunner) GetAllocatedMemoryUnits(steps int) (int, error) {
	if r.ratio == 0 {
		return 0, nil
	}
	return ceilDiv(steps, r.ratio), nil
}
