package builtins

import (
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

const PoseidonName = "poseidon"
const CellsPerPoseidon = 6
const InputCellsPerPoseidon = 3

// PoseidonPermutationFunc is the injectable collaborator a
// PoseidonBuiltinRunner delegates its three-element state permutation
// to.
type PoseidonPermutationFunc func(state [InputCellsPerPoseidon]lambdaworks.Felt) [InputCellsPerPoseidon]lambdaworks.Felt

// PoseidonBuiltinRunner owns the poseidon segment: six-cell groups where
// the last three cells are the permutation of the first three.
type PoseidonBuiltinRunner struct {
	base        memory.Relocatable
	included    bool
	ratio       int
	permutation PoseidonPermutationFunc
}

func NewPoseidonBuiltinRunner(included bool, ratio int, permutation PoseidonPermutationFunc) *PoseidonBuiltinRunner {
	return &PoseidonBuiltinRunner{included: included, ratio: ratio, permutation: permutation}
}

func (p *PoseidonBuiltinRunner) Name() string                { return PoseidonName }
func (p *PoseidonBuiltinRunner) Base() memory.Relocatable     { return p.base }
func (p *PoseidonBuiltinRunner) Ratio() int                   { return p.ratio }
func (p *PoseidonBuiltinRunner) CellsPerInvocation() int      { return CellsPerPoseidon }
func (p *PoseidonBuiltinRunner) InputCellsPerInvocation() int { return InputCellsPerPoseidon }

func (p *PoseidonBuiltinRunner) InitializeSegments(segments *memory.SegmentManager) {
	p.base = segments.AddSegment()
}

func (p *PoseidonBuiltinRunner) InitialStack() []memory.Value {
	if !p.included {
		return nil
	}
	return []memory.Value{memory.NewAddressValue(p.base)}
}

func (p *PoseidonBuiltinRunner) DeduceMemoryCell(address memory.Relocatable, mem *memory.Memory) (*memory.Value, error) {
	groupOffset := address.Offset % CellsPerPoseidon
	if groupOffset < InputCellsPerPoseidon {
		return nil, nil
	}
	base := address.Offset - groupOffset

	var state [InputCellsPerPoseidon]lambdaworks.Felt
	for i := 0; i < InputCellsPerPoseidon; i++ {
		v, err := mem.GetFelt(memory.NewRelocatable(address.SegmentIndex, base+uint64(i)))
		if err != nil {
			return nil, nil
		}
		state[i], _ = v.GetFelt()
	}

	output := p.permutation(state)
	value := memory.NewFeltValue(output[groupOffset-InputCellsPerPoseidon])
	return &value, nil
}

func (p *PoseidonBuiltinRunner) AddValidationRule(*memory.Memory) error { return nil }

func (p *PoseidonBuiltinRunner) GetUsedInstances(segments *memory.SegmentManager) int {
	return usedInstancesFromSegment(segments, p.base, CellsPerPoseidon)
}

func (p *PoseidonBuiltinRunner) GetAllocatedMemoryUnits(steps int) (int, error) {
	if p.ratio == 0 {
		return 0, nil
	}
	return ceilDiv(steps, p.ratio), nil
}
