// Package dict_manager implements the concrete dictionary store backing
// the HintType.DictManager scope variable: a Cairo dict hint allocates a
// fresh segment to represent the dictionary and tracks key/value pairs
// in an ordinary Go map keyed by segment index.
package dict_manager

import (
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
	"github.com/pkg/errors"
)

// Dictionary is the Go-side backing store for one Cairo dict: a map from
// Value to Value, with an optional default returned for unseen keys
// (used by __default_dict__ programs).
type Dictionary struct {
	entries      map[memory.Value]memory.Value
	defaultValue *memory.Value
}

// NewDictionary builds an empty dictionary with no default value; a
// missing-key lookup returns ok=false.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[memory.Value]memory.Value)}
}

// NewDefaultDictionary builds a dictionary that returns defaultValue
// (and implicitly inserts it) for any key not yet written.
func NewDefaultDictionary(defaultValue memory.Value) *Dictionary {
	return &Dictionary{entries: make(map[memory.Value]memory.Value), defaultValue: &defaultValue}
}

// Get looks up key, falling back to and recording the default value if
// one was configured.
func (d *Dictionary) Get(key memory.Value) (memory.Value, bool) {
	if v, ok := d.entries[key]; ok {
		return v, true
	}
	if d.defaultValue != nil {
		d.entries[key] = *d.defaultValue
		return *d.defaultValue, true
	}
	return memory.Value{}, false
}

// Insert writes key -> value, overwriting any previous entry.
func (d *Dictionary) Insert(key, value memory.Value) {
	d.entries[key] = value
}

// Copy returns a shallow copy of the dictionary's contents.
func (d *Dictionary) Copy() map[memory.Value]memory.Value {
	out := make(map[memory.Value]memory.Value, len(d.entries))
	for k, v := range d.entries {
		out[k] = v
	}
	return out
}

// DictTracker pairs a Dictionary with the segment it was allocated in
// and the pointer to its first unused cell, mirroring how dict hints
// advance currentPtr as entries are appended to the segment.
type DictTracker struct {
	Data       *Dictionary
	Base       memory.Relocatable
	CurrentPtr memory.Relocatable
}

// DictManager maps a dict's base segment index to its tracker. One
// instance is shared (via the reference-counted handle in pkg/types)
// across every scope that can see a given set of Cairo dicts.
type DictManager struct {
	trackers map[int]*DictTracker
}

// NewDictManager builds an empty manager.
func NewDictManager() *DictManager {
	return &DictManager{trackers: make(map[int]*DictTracker)}
}

// NewDictionaryIn allocates a fresh segment via segments, registers an
// empty dictionary tracker for it, and returns the new dict's base
// address.
func (m *DictManager) NewDictionaryIn(segments *memory.SegmentManager) memory.Relocatable {
	base := segments.AddSegment()
	m.trackers[base.SegmentIndex] = &DictTracker{Data: NewDictionary(), Base: base, CurrentPtr: base}
	return base
}

// NewDefaultDictionaryIn is NewDictionaryIn for a dict with a default
// value.
func (m *DictManager) NewDefaultDictionaryIn(segments *memory.SegmentManager, defaultValue memory.Value) memory.Relocatable {
	base := segments.AddSegment()
	m.trackers[base.SegmentIndex] = &DictTracker{Data: NewDefaultDictionary(defaultValue), Base: base, CurrentPtr: base}
	return base
}

// GetTracker returns the tracker owning dictPtr's segment, validating
// that dictPtr is exactly the tracker's live current pointer (the usual
// Cairo dict-access idiom passes the up-to-date pointer each time).
func (m *DictManager) GetTracker(dictPtr memory.Relocatable) (*DictTracker, error) {
	tracker, ok := m.trackers[dictPtr.SegmentIndex]
	if !ok {
		return nil, errors.Errorf("no dict tracker for segment %d", dictPtr.SegmentIndex)
	}
	if !tracker.CurrentPtr.Equal(dictPtr) {
		return nil, errors.Errorf("stale dict pointer: got %s, tracker is at %s", dictPtr, tracker.CurrentPtr)
	}
	return tracker, nil
}

// AdvanceCurrentPtr moves tracker's current pointer forward by n cells,
// called after a dict-access hint appends new (key, prev, new) entries
// to the dict's segment.
func (t *DictTracker) AdvanceCurrentPtr(n uint64) error {
	next, err := t.CurrentPtr.AddUint(n)
	if err != nil {
		return err
	}
	t.CurrentPtr = next
	return nil
}
