package hints

import (
	"github.com/cairovm-core/cairovm/pkg/hints/dict_manager"
	"github.com/cairovm-core/cairovm/pkg/types"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
	"github.com/pkg/errors"
)

// DictAccessSize is the cell width of one DictAccess{key, prev_value,
// new_value} entry a dict hint appends to its segment.
const DictAccessSize = 3

// dictManagerScopeName is the scope variable every dict hint shares the
// manager under, matching the common/dict.cairo convention.
const dictManagerScopeName = "__dict_manager"

// fetchDictManager returns the DictManager shared through the current
// scope stack.
func fetchDictManager(scopes *types.ExecutionScopes) (*dict_manager.DictManager, error) {
	handle, err := scopes.GetDictManager(dictManagerScopeName)
	if err != nil {
		return nil, err
	}
	return handle.Get(), nil
}

// defaultDictNew implements DEFAULT_DICT_NEW: lazily creates the shared
// DictManager on first use, allocates a fresh default-valued dict, and
// writes its base pointer to [ap].
func defaultDictNew(ids IdsManager, scopes *types.ExecutionScopes, mem *memory.Memory, segments *memory.SegmentManager, ctx Context) error {
	defaultValue, err := ids.Get("default_value", mem, ctx)
	if err != nil {
		return err
	}
	manager, err := fetchDictManager(scopes)
	if err != nil {
		manager = dict_manager.NewDictManager()
		scopes.AssignOrUpdate(dictManagerScopeName, types.NewDictManagerHint(types.NewRc(manager)))
	}
	base := manager.NewDefaultDictionaryIn(segments, defaultValue)
	return mem.Insert(ctx.Ap, memory.NewAddressValue(base))
}

// dictRead implements DICT_READ: looks up ids.key in the tracked dict at
// ids.dict_ptr and writes it to ids.value, advancing the tracker's
// current pointer past the new DictAccess entry.
func dictRead(ids IdsManager, scopes *types.ExecutionScopes, mem *memory.Memory, ctx Context) error {
	manager, err := fetchDictManager(scopes)
	if err != nil {
		return err
	}
	dictPtr, err := ids.GetAddress("dict_ptr", mem, ctx)
	if err != nil {
		return err
	}
	key, err := ids.Get("key", mem, ctx)
	if err != nil {
		return err
	}
	tracker, err := manager.GetTracker(dictPtr)
	if err != nil {
		return err
	}
	value, ok := tracker.Data.Get(key)
	if !ok {
		return errors.Errorf("key %s not found in dict", key)
	}
	if err := tracker.AdvanceCurrentPtr(DictAccessSize); err != nil {
		return err
	}
	return ids.Insert("value", value, mem, ctx)
}

// dictWrite implements DICT_WRITE: records ids.key's previous value under
// ids.prev_value, then overwrites it with ids.new_value.
func dictWrite(ids IdsManager, scopes *types.ExecutionScopes, mem *memory.Memory, ctx Context) error {
	manager, err := fetchDictManager(scopes)
	if err != nil {
		return err
	}
	dictPtr, err := ids.GetAddress("dict_ptr", mem, ctx)
	if err != nil {
		return err
	}
	key, err := ids.Get("key", mem, ctx)
	if err != nil {
		return err
	}
	newValue, err := ids.Get("new_value", mem, ctx)
	if err != nil {
		return err
	}
	tracker, err := manager.GetTracker(dictPtr)
	if err != nil {
		return err
	}
	prevValue, ok := tracker.Data.Get(key)
	if !ok {
		return errors.Errorf("key %s not found in dict", key)
	}
	if err := ids.Insert("prev_value", prevValue, mem, ctx); err != nil {
		return err
	}
	tracker.Data.Insert(key, newValue)
	return tracker.AdvanceCurrentPtr(DictAccessSize)
}

// dictUpdate implements DICT_UPDATE: asserts ids.prev_value matches the
// dict's live value for ids.key before overwriting it with ids.new_value,
// catching a caller that forged a stale squash.
func dictUpdate(ids IdsManager, scopes *types.ExecutionScopes, mem *memory.Memory, ctx Context) error {
	manager, err := fetchDictManager(scopes)
	if err != nil {
		return err
	}
	dictPtr, err := ids.GetAddress("dict_ptr", mem, ctx)
	if err != nil {
		return err
	}
	key, err := ids.Get("key", mem, ctx)
	if err != nil {
		return err
	}
	newValue, err := ids.Get("new_value", mem, ctx)
	if err != nil {
		return err
	}
	prevValue, err := ids.Get("prev_value", mem, ctx)
	if err != nil {
		return err
	}
	tracker, err := manager.GetTracker(dictPtr)
	if err != nil {
		return err
	}
	currentValue, ok := tracker.Data.Get(key)
	if !ok {
		return errors.Errorf("key %s not found in dict", key)
	}
	if !currentValue.Equal(prevValue) {
		return errors.Errorf("wrong previous value in dict: got %s, expected %s", prevValue, currentValue)
	}
	tracker.Data.Insert(key, newValue)
	return tracker.AdvanceCurrentPtr(DictAccessSize)
}
