package builtins

import (
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

const PedersenName = "pedersen"
const CellsPerPedersen = 3
const InputCellsPerPedersen = 2

// PedersenHashFunc is the injectable collaborator a PedersenBuiltinRunner
// delegates its hash computation to. Production callers wire in the real
// Starknet pedersen hash; tests can wire in a stub.
type PedersenHashFunc func(a, b lambdaworks.Felt) lambdaworks.Felt

// PedersenBuiltinRunner owns the pedersen segment: every third cell, once
// its two inputs are written, is deduced as hash(a, b).
type PedersenBuiltinRunner struct {
	base     memory.Relocatable
	included bool
	ratio    int
	hash     PedersenHashFunc

	verified map[uint64]bool
}

func NewPedersenBuiltinRunner(included bool, ratio int, hash PedersenHashFunc) *PedersenBuiltinRunner {
	return &PedersenBuiltinRunner{included: included, ratio: ratio, hash: hash, verified: make(map[uint64]bool)}
}

func (p *PedersenBuiltinRunner) Name() string                { return PedersenName }
func (p *PedersenBuiltinRunner) Base() memory.Relocatable     { return p.base }
func (p *PedersenBuiltinRunner) Ratio() int                   { return p.ratio }
func (p *PedersenBuiltinRunner) CellsPerInvocation() int      { return CellsPerPedersen }
func (p *PedersenBuiltinRunner) InputCellsPerInvocation() int { return InputCellsPerPedersen }

func (p *PedersenBuiltinRunner) InitializeSegments(segments *memory.SegmentManager) {
	p.base = segments.AddSegment()
}

func (p *PedersenBuiltinRunner) InitialStack() []memory.Value {
	if !p.included {
		return nil
	}
	return []memory.Value{memory.NewAddressValue(p.base)}
}

// DeduceMemoryCell fills in the output cell of a pedersen instance once
// both input cells are present; every other cell is left to the caller.
func (p *PedersenBuiltinRunner) DeduceMemoryCell(address memory.Relocatable, mem *memory.Memory) (*memory.Value, error) {
	if address.Offset%CellsPerPedersen != 2 || p.verified[address.Offset] {
		return nil, nil
	}

	inputA := memory.NewRelocatable(address.SegmentIndex, address.Offset-1)
	inputB := memory.NewRelocatable(address.SegmentIndex, address.Offset-2)

	a, err := mem.GetFelt(inputA)
	if err != nil {
		return nil, nil
	}
	b, err := mem.GetFelt(inputB)
	if err != nil {
		return nil, nil
	}

	feltA, _ := a.GetFelt()
	feltB, _ := b.GetFelt()

	p.verified[address.Offset] = true
	result := memory.NewFeltValue(p.hash(feltA, feltB))
	return &result, nil
}

func (p *PedersenBuiltinRunner) AddValidationRule(*memory.Memory) error { return nil }

func (p *PedersenBuiltinRunner) GetUsedInstances(segments *memory.SegmentManager) int {
	return usedInstancesFromSegment(segments, p.base, CellsPerPedersen)
}

func (p *PedersenBuiltinRunner) GetAllocatedMemoryUnits(steps int) (int, error) {
	if p.ratio == 0 {
		return 0, nil
	}
	return ceilDiv(steps, p.ratio), nil
}
