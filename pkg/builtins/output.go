package builtins

import "github.com/cairovm-core/cairovm/pkg/vm/memory"

const OutputName = "output"

// OutputBuiltinRunner owns the segment a Cairo program writes its public
// output to. It deduces nothing: every cell is written explicitly by the
// program.
type OutputBuiltinRunner struct {
	base     memory.Relocatable
	included bool
}

func NewOutputBuiltinRunner(included bool) *OutputBuiltinRunner {
	return &OutputBuiltinRunner{included: included}
}

func (b *OutputBuiltinRunner) Name() string                   { return OutputName }
func (b *OutputBuiltinRunner) Base() memory.Relocatable        { return b.base }
func (b *OutputBuiltinRunner) Ratio() int                      { return 0 }
func (b *OutputBuiltinRunner) CellsPerInvocation() int         { return 1 }
func (b *OutputBuiltinRunner) InputCellsPerInvocation() int    { return 1 }

func (b *OutputBuiltinRunner) InitializeSegments(segments *memory.SegmentManager) {
	b.base = segments.AddSegment()
}

func (b *OutputBuiltinRunner) InitialStack() []memory.Value {
	if !b.included {
		return nil
	}
	return []memory.Value{memory.NewAddressValue(b.base)}
}

func (b *OutputBuiltinRunner) DeduceMemoryCell(memory.Relocatable, *memory.Memory) (*memory.Value, error) {
	return nil, nil
}

func (b *OutputBuiltinRunner) AddValidationRule(*memory.Memory) error { return nil }

func (b *OutputBuiltinRunner) GetUsedInstances(segments *memory.SegmentManager) int {
	return int(segments.GetSegmentUsedSize(b.base.SegmentIndex))
}

func (b *OutputBuiltinRunner) GetAllocatedMemoryUnits(steps int) (int, error) {
	return 0, nil
}
