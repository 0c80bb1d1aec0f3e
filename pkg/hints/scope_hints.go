package hints

import (
	"github.com/cairovm-core/cairovm/pkg/types"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

// vmEnterScope implements vm_enter_scope(): pushes a fresh child scope
// with no inherited variables.
func vmEnterScope(scopes *types.ExecutionScopes) error {
	scopes.EnterScope(nil)
	return nil
}

// vmExitScope implements vm_exit_scope(): pops back to the parent scope.
func vmExitScope(scopes *types.ExecutionScopes) error {
	return scopes.ExitScope()
}

// addSegment implements `memory[ap] = segments.add()`: allocates a fresh
// segment and writes its base pointer to [ap].
func addSegment(mem *memory.Memory, segments *memory.SegmentManager, ctx Context) error {
	base := segments.AddSegment()
	return mem.Insert(ctx.Ap, memory.NewAddressValue(base))
}
