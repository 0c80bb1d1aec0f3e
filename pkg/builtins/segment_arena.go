package builtins

import (
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

const SegmentArenaName = "segment_arena"
const CellsPerSegmentArena = 3

// SegmentArenaBuiltinRunner owns the segment_arena segment used by
// dynamically-allocated Cairo 1 segments: three cells per instance
// (the info segment's base, the number of segments allocated, and the
// number finalized). It deduces nothing; the runtime library writes all
// three explicitly.
type SegmentArenaBuiltinRunner struct {
	base     memory.Relocatable
	included bool
}

func NewSegmentArenaBuiltinRunner(included bool) *SegmentArenaBuiltinRunner {
	return &SegmentArenaBuiltinRunner{included: included}
}

func (s *SegmentArenaBuiltinRunner) Name() string                { return SegmentArenaName }
func (s *SegmentArenaBuiltinRunner) Base() memory.Relocatable     { return s.base }
func (s *SegmentArenaBuiltinRunner) Ratio() int                   { return 1 }
func (s *SegmentArenaBuiltinRunner) CellsPerInvocation() int      { return CellsPerSegmentArena }
func (s *SegmentArenaBuiltinRunner) InputCellsPerInvocation() int { return CellsPerSegmentArena }

func (s *SegmentArenaBuiltinRunner) InitializeSegments(segments *memory.SegmentManager) {
	s.base = segments.AddSegment()
	infoSegment := segments.AddSegment()
	zero := memory.NewFeltValue(lambdaworks.FeltZero())
	_, _ = segments.LoadData(s.base, []memory.Value{
		memory.NewAddressValue(infoSegment), zero, zero,
	})
}

func (s *SegmentArenaBuiltinRunner) InitialStack() []memory.Value {
	if !s.included {
		return nil
	}
	return []memory.Value{memory.NewAddressValue(s.base)}
}

func (s *SegmentArenaBuiltinRunner) DeduceMemoryCell(memory.Relocatable, *memory.Memory) (*memory.Value, error) {
	return nil, nil
}

func (s *SegmentArenaBuiltinRunner) AddValidationRule(*memory.Memory) error { return nil }

func (s *SegmentArenaBuiltinRunner) GetUsedInstances(segments *memory.SegmentManager) int {
	return usedInstancesFromSegment(segments, s.base, CellsPerSegmentArena)
}

func (s *SegmentArenaBuiltinRunner) GetAllocatedMemoryUnits(steps int) (int, error) {
	return ceilDiv(steps, 1), nil
}
