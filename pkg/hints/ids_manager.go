package hints

import (
	"fmt"

	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

// VariableNotFoundError is returned when a hint refers to an ids.<name>
// that has no entry in its own reference set.
type VariableNotFoundError struct {
	Name string
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("ids.%s is not accessible from this hint", e.Name)
}

// IdsManager resolves a hint's `ids.<name>` accesses against its own
// by-name HintReference set and the VM state active when the hint runs.
type IdsManager struct {
	references map[string]*HintReference
}

// NewIdsManager builds an IdsManager over a hint's accessible
// references, keyed by their local (non-scope-qualified) name.
func NewIdsManager(references map[string]*HintReference) IdsManager {
	return IdsManager{references: references}
}

// Get resolves name to its live value.
func (m IdsManager) Get(name string, mem *memory.Memory, ctx Context) (memory.Value, error) {
	ref, ok := m.references[name]
	if !ok {
		return memory.Value{}, &VariableNotFoundError{Name: name}
	}
	return ref.Resolve(mem, ctx)
}

// GetFelt resolves name and requires it to be a felt.
func (m IdsManager) GetFelt(name string, mem *memory.Memory, ctx Context) (lambdaworks.Felt, error) {
	v, err := m.Get(name, mem, ctx)
	if err != nil {
		return lambdaworks.Felt{}, err
	}
	return v.TryIntoFelt()
}

// GetAddress resolves name and requires it to be an address.
func (m IdsManager) GetAddress(name string, mem *memory.Memory, ctx Context) (memory.Relocatable, error) {
	v, err := m.Get(name, mem, ctx)
	if err != nil {
		return memory.Relocatable{}, err
	}
	return v.TryIntoAddress()
}

// GetStructFieldAddress resolves name to a pointer value and returns the
// address offset cells further into the struct it points to, for hints
// that reach into a multi-field ids struct (e.g. ids.keccak_state.end_ptr).
func (m IdsManager) GetStructFieldAddress(name string, offset uint64, mem *memory.Memory, ctx Context) (memory.Relocatable, error) {
	base, err := m.GetAddress(name, mem, ctx)
	if err != nil {
		return memory.Relocatable{}, err
	}
	return base.AddUint(offset)
}

// Insert writes value to the memory cell name's reference addresses,
// without the reference's own final dereference (i.e. name is an
// output variable, not read back through).
func (m IdsManager) Insert(name string, value memory.Value, mem *memory.Memory, ctx Context) error {
	ref, ok := m.references[name]
	if !ok {
		return &VariableNotFoundError{Name: name}
	}
	addr, err := ref.GetAddress(mem, ctx)
	if err != nil {
		return err
	}
	return mem.Insert(addr, value)
}
