// Package builtins implements the per-builtin runners: each owns one
// memory segment and knows how to deduce unwritten cells, validate
// writes, and report its own footprint once a run completes.
package builtins

import (
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

// BuiltinRunner is the common surface every builtin exposes to the
// runner that drives execution. The shape follows the fuller interface
// sketched out (then left commented as a roadmap) in the upstream
// project's builtin_runner.go, completed here since SPEC_FULL.md's
// runner actually exercises it.
type BuiltinRunner interface {
	Name() string
	Base() memory.Relocatable
	Ratio() int
	CellsPerInvocation() int
	InputCellsPerInvocation() int

	InitializeSegments(segments *memory.SegmentManager)
	InitialStack() []memory.Value

	// DeduceMemoryCell computes the value that belongs at address if the
	// builtin can infer it from already-written cells, or (nil, nil) if
	// it cannot (the writer must supply the value itself).
	DeduceMemoryCell(address memory.Relocatable, mem *memory.Memory) (*memory.Value, error)

	// AddValidationRule installs this builtin's validation rule (if any)
	// on its own segment.
	AddValidationRule(mem *memory.Memory) error

	// GetUsedInstances reports how many invocations the segment's used
	// size implies, given segments.
	GetUsedInstances(segments *memory.SegmentManager) int

	// GetAllocatedMemoryUnits reports how many instances of this builtin
	// the given number of executed CPU steps allows: steps divided by its
	// ratio, rounded up (0 for a builtin without a ratio). The count is
	// not multiplied by CellsPerInvocation.
	GetAllocatedMemoryUnits(steps int) (int, error)
}

// RatioError describes a step count that is not compatible with a
// builtin's ratio. No GetAllocatedMemoryUnits implementation in this
// package returns it; they round the instance count up instead.
type RatioError struct {
	Builtin string
	Steps   int
	Ratio   int
}

func (e *RatioError) Error() string {
	return "step count is not compatible with builtin ratio"
}

// ceilDiv divides a by b, rounding up; used by GetAllocatedMemoryUnits
// implementations.
func ceilDiv(a, b int) int {
	if a == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// usedInstancesFromSegment derives an instance count from a segment's
// used size and the builtin's fixed cells-per-invocation, rounding up so
// a partially-filled final instance still counts.
func usedInstancesFromSegment(segments *memory.SegmentManager, base memory.Relocatable, cellsPerInvocation int) int {
	used := segments.GetSegmentUsedSize(base.SegmentIndex)
	if cellsPerInvocation == 0 {
		return 0
	}
	return ceilDiv(int(used), cellsPerInvocation)
}
