package types

import (
	"fmt"

	"github.com/cairovm-core/cairovm/pkg/hints/dict_manager"
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

// hintTypeKind discriminates the HintType union.
type hintTypeKind uint8

const (
	hintFelt hintTypeKind = iota
	hintU64
	hintU64List
	hintFeltToU64ListMap
	hintValueMap
	hintDictManager
)

// HintType is the closed union of values an ExecutionScopes entry may
// hold. Every variant except DictManager is exclusively owned by the
// scope entry; DictManager is a shared Rc handle.
type HintType struct {
	kind        hintTypeKind
	felt        lambdaworks.Felt
	u64         uint64
	u64List     []uint64
	feltMap     map[lambdaworks.Felt][]uint64
	valueMap    map[memory.Value]memory.Value
	dictManager Rc[*dict_manager.DictManager]
}

func NewFeltHint(f lambdaworks.Felt) HintType { return HintType{kind: hintFelt, felt: f} }
func NewU64Hint(v uint64) HintType            { return HintType{kind: hintU64, u64: v} }
func NewU64ListHint(v []uint64) HintType       { return HintType{kind: hintU64List, u64List: v} }
func NewFeltToU64ListMapHint(m map[lambdaworks.Felt][]uint64) HintType {
	return HintType{kind: hintFeltToU64ListMap, feltMap: m}
}
func NewValueMapHint(m map[memory.Value]memory.Value) HintType {
	return HintType{kind: hintValueMap, valueMap: m}
}
func NewDictManagerHint(handle Rc[*dict_manager.DictManager]) HintType {
	return HintType{kind: hintDictManager, dictManager: handle}
}

// AsFelt coerces, widening a U64 variant as §4.F's get_felt specifies.
func (h HintType) AsFelt() (lambdaworks.Felt, bool) {
	switch h.kind {
	case hintFelt:
		return h.felt, true
	case hintU64:
		return lambdaworks.FeltFromUint64(h.u64), true
	default:
		return lambdaworks.Felt{}, false
	}
}

func (h HintType) AsU64() (uint64, bool) {
	if h.kind != hintU64 {
		return 0, false
	}
	return h.u64, true
}

func (h HintType) AsU64List() ([]uint64, bool) {
	if h.kind != hintU64List {
		return nil, false
	}
	return h.u64List, true
}

func (h HintType) AsFeltToU64ListMap() (map[lambdaworks.Felt][]uint64, bool) {
	if h.kind != hintFeltToU64ListMap {
		return nil, false
	}
	return h.feltMap, true
}

func (h HintType) AsValueMap() (map[memory.Value]memory.Value, bool) {
	if h.kind != hintValueMap {
		return nil, false
	}
	return h.valueMap, true
}

func (h HintType) AsDictManager() (Rc[*dict_manager.DictManager], bool) {
	if h.kind != hintDictManager {
		return Rc[*dict_manager.DictManager]{}, false
	}
	return h.dictManager, true
}

// release drops the scope entry's hold on a shared handle when the
// owning scope is popped; every other variant needs no action since Go
// is garbage collected.
func (h HintType) release() {
	if h.kind == hintDictManager {
		h.dictManager.Drop()
	}
}

// ExitMainScopeError is returned by ExitScope when called with only the
// root scope remaining on the stack.
type ExitMainScopeError struct{}

func (e *ExitMainScopeError) Error() string { return "cannot exit the main (root) scope" }

// VariableNotInScopeError is returned by Get, GetFelt, GetDictManager and
// Delete when name is absent from the top scope (GetFelt and
// GetDictManager also return it when the entry holds another variant).
type VariableNotInScopeError struct {
	Name string
}

func (e *VariableNotInScopeError) Error() string {
	return fmt.Sprintf("variable %q not in scope", e.Name)
}

// ExecutionScopes is an ordered, non-empty stack of named-variable
// dictionaries: hints read and write their working state here, and
// enter/exit a fresh scope around nested control flow (loop bodies,
// dict-tracking sections, ...).
type ExecutionScopes struct {
	stack []map[string]HintType
}

// NewExecutionScopes builds a stack with a single root scope containing
// initialVars (may be nil/empty).
func NewExecutionScopes(initialVars map[string]HintType) *ExecutionScopes {
	if initialVars == nil {
		initialVars = map[string]HintType{}
	}
	return &ExecutionScopes{stack: []map[string]HintType{initialVars}}
}

// EnterScope pushes a new scope on top, seeded with initialVars.
func (s *ExecutionScopes) EnterScope(initialVars map[string]HintType) {
	if initialVars == nil {
		initialVars = map[string]HintType{}
	}
	s.stack = append(s.stack, initialVars)
}

// ExitScope pops the top scope, releasing any shared handles it held.
// Popping the last (root) scope is prohibited.
func (s *ExecutionScopes) ExitScope() error {
	if len(s.stack) <= 1 {
		return &ExitMainScopeError{}
	}
	top := s.stack[len(s.stack)-1]
	for _, v := range top {
		v.release()
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

func (s *ExecutionScopes) top() map[string]HintType {
	return s.stack[len(s.stack)-1]
}

// Get looks up name in the top scope only.
func (s *ExecutionScopes) Get(name string) (HintType, error) {
	v, ok := s.top()[name]
	if !ok {
		return HintType{}, &VariableNotInScopeError{Name: name}
	}
	return v, nil
}

// GetFelt looks up name and coerces it to a felt, widening U64 as §4.F
// specifies.
func (s *ExecutionScopes) GetFelt(name string) (lambdaworks.Felt, error) {
	v, err := s.Get(name)
	if err != nil {
		return lambdaworks.Felt{}, err
	}
	f, ok := v.AsFelt()
	if !ok {
		return lambdaworks.Felt{}, &VariableNotInScopeError{Name: name}
	}
	return f, nil
}

// AssignOrUpdate sets name to value in the top scope, overwriting any
// existing binding (releasing it first if it held a shared handle).
func (s *ExecutionScopes) AssignOrUpdate(name string, value HintType) {
	top := s.top()
	if old, ok := top[name]; ok {
		old.release()
	}
	top[name] = value
}

// Delete removes name from the top scope, releasing any shared handle it
// held. Missing names are a VariableNotInScope error.
func (s *ExecutionScopes) Delete(name string) error {
	top := s.top()
	v, ok := top[name]
	if !ok {
		return &VariableNotInScopeError{Name: name}
	}
	v.release()
	delete(top, name)
	return nil
}

// GetDictManager returns a cloned (strong-count-incremented) handle to
// the shared DictManager stored under name.
func (s *ExecutionScopes) GetDictManager(name string) (Rc[*dict_manager.DictManager], error) {
	v, err := s.Get(name)
	if err != nil {
		return Rc[*dict_manager.DictManager]{}, err
	}
	handle, ok := v.AsDictManager()
	if !ok {
		return Rc[*dict_manager.DictManager]{}, &VariableNotInScopeError{Name: name}
	}
	return handle.Clone(), nil
}

// Depth reports how many scopes are currently on the stack (always >= 1).
func (s *ExecutionScopes) Depth() int {
	return len(s.stack)
}
