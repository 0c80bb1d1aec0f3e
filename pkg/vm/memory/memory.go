package memory

// ValidationRule inspects a freshly written cell and returns the set of
// addresses that should be considered validated as a consequence (usually
// just the written address itself, but builtins like range-check may
// validate a whole run of cells at once).
type ValidationRule func(mem *Memory, addr Relocatable) ([]Relocatable, error)

// Cell is one memory slot: a value plus whether the VM has marked it as
// read (MarkAccessed). SegmentManager's size computations do not look at
// this flag.
type Cell struct {
	Value    Value
	Accessed bool
}

// Memory is the write-once, segmented address space shared by every
// Cairo run. Segments with a negative index are temporary: they exist so
// that a runner can stage data before knowing which real segment it will
// ultimately belong to, and must be resolved via a relocation rule before
// a run's final Relocate.
type Memory struct {
	data               map[Relocatable]*Cell
	numSegments        int
	numTempSegments    int
	validationRules    map[int][]ValidationRule
	validatedAddresses map[Relocatable]bool
	relocationRules    map[int]Relocatable
}

// NewMemory builds an empty memory with no segments yet.
func NewMemory() *Memory {
	return &Memory{
		data:               make(map[Relocatable]*Cell),
		validationRules:    make(map[int][]ValidationRule),
		validatedAddresses: make(map[Relocatable]bool),
		relocationRules:    make(map[int]Relocatable),
	}
}

// Insert writes a value at addr. Memory is write-once: writing a
// different value to an already-written cell is an InconsistentMemoryError,
// but re-writing the same value is a no-op success (spec's "repeated but
// equal write" decision, see DESIGN.md).
func (m *Memory) Insert(addr Relocatable, value Value) error {
	if existing, ok := m.data[addr]; ok {
		if !existing.Value.Equal(value) {
			return &InconsistentMemoryError{Address: addr, Existing: existing.Value, New: value}
		}
		return nil
	}
	m.data[addr] = &Cell{Value: value}
	if err := m.validateAddress(addr); err != nil {
		return err
	}
	return nil
}

// Get reads the value at addr, if any.
func (m *Memory) Get(addr Relocatable) (Value, bool) {
	cell, ok := m.data[addr]
	if !ok {
		return Value{}, false
	}
	return cell.Value, true
}

// GetFelt reads the value at addr and requires it to be a felt.
func (m *Memory) GetFelt(addr Relocatable) (Value, error) {
	v, ok := m.Get(addr)
	if !ok {
		return Value{}, &NoValueError{Address: addr}
	}
	if !v.IsFelt() {
		return Value{}, &ExpectedFeltError{Address: addr}
	}
	return v, nil
}

// GetAddress reads the value at addr and requires it to be an address.
func (m *Memory) GetAddress(addr Relocatable) (Value, error) {
	v, ok := m.Get(addr)
	if !ok {
		return Value{}, &NoValueError{Address: addr}
	}
	if !v.IsAddress() {
		return Value{}, &ExpectedAddressError{Address: addr}
	}
	return v, nil
}

// MarkAccessed flags addr as having been read by the VM, independent of
// whether a value is present.
func (m *Memory) MarkAccessed(addr Relocatable) {
	if cell, ok := m.data[addr]; ok {
		cell.Accessed = true
	}
}

// IsAccessed reports whether addr has been read.
func (m *Memory) IsAccessed(addr Relocatable) (bool, error) {
	cell, ok := m.data[addr]
	if !ok {
		return false, &NoValueError{Address: addr}
	}
	return cell.Accessed, nil
}

// AddValidationRule registers rule to run whenever a cell in segment is
// written. Existing cells in the segment are re-checked immediately, as
// in the teacher's ValidateExistingMemory.
func (m *Memory) AddValidationRule(segment int, rule ValidationRule) error {
	m.validationRules[segment] = append(m.validationRules[segment], rule)
	for addr := range m.data {
		if addr.SegmentIndex == segment {
			if err := m.runRule(rule, addr); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Memory) validateAddress(addr Relocatable) error {
	if addr.SegmentIndex < 0 || m.validatedAddresses[addr] {
		return nil
	}
	rules := m.validationRules[addr.SegmentIndex]
	for _, rule := range rules {
		if err := m.runRule(rule, addr); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) runRule(rule ValidationRule, addr Relocatable) error {
	validated, err := rule(m, addr)
	if err != nil {
		return err
	}
	for _, a := range validated {
		m.validatedAddresses[a] = true
	}
	return nil
}

// ValidateExistingMemory re-runs every registered validation rule over
// every currently written cell; used once all builtin segments have
// their rules installed but earlier writes may predate that.
func (m *Memory) ValidateExistingMemory() error {
	for addr := range m.data {
		if err := m.validateAddress(addr); err != nil {
			return err
		}
	}
	return nil
}

// AddRelocationRule registers that every address in src's temporary
// segment relocates to dst. src must name a temporary segment at offset
// zero: a relocation rule retargets a whole segment, not a single cell.
func (m *Memory) AddRelocationRule(src, dst Relocatable) error {
	if src.SegmentIndex >= 0 {
		return &AddressNotInTemporarySegmentError{Segment: src.SegmentIndex}
	}
	if src.Offset != 0 {
		return &NonZeroOffsetError{Address: src}
	}
	if _, exists := m.relocationRules[src.SegmentIndex]; exists {
		return &DuplicatedRelocationError{Segment: src.SegmentIndex}
	}
	m.relocationRules[src.SegmentIndex] = dst
	return nil
}

// resolveRelocationTarget follows relocation rules transitively starting
// from a temporary segment index, detecting cycles, until it reaches a
// real segment or exhausts the chain.
func (m *Memory) resolveRelocationTarget(tempSegment int) (Relocatable, error) {
	visited := map[int]bool{}
	seg := tempSegment
	offset := uint64(0)
	chain := []int{}
	for {
		if visited[seg] {
			return Relocatable{}, &RelocationCycleError{Segments: chain}
		}
		visited[seg] = true
		chain = append(chain, seg)
		dst, ok := m.relocationRules[seg]
		if !ok {
			return Relocatable{}, &MissingRelocationRuleError{Segment: seg}
		}
		newOffset := offset + dst.Offset
		if dst.SegmentIndex >= 0 {
			return NewRelocatable(dst.SegmentIndex, newOffset), nil
		}
		seg = dst.SegmentIndex
		offset = newOffset
	}
}

// relocateAddressFully maps any address (real or chained-temporary) down
// to a real address, following relocation rules as needed.
func (m *Memory) relocateAddressFully(addr Relocatable) (Relocatable, error) {
	if addr.SegmentIndex >= 0 {
		return addr, nil
	}
	base, err := m.resolveRelocationTarget(addr.SegmentIndex)
	if err != nil {
		return Relocatable{}, err
	}
	return base.AddUint(addr.Offset)
}

// RelocateTemporarySegments rewrites every stored value that lives in or
// points into a temporary segment to its real-segment equivalent,
// draining the temporary data into the destination segments. This must
// run before SegmentManager computes the final relocation table.
func (m *Memory) RelocateTemporarySegments() error {
	resolved := make(map[Relocatable]Value, len(m.data))
	for addr, cell := range m.data {
		newAddr, err := m.relocateAddressFully(addr)
		if err != nil {
			return err
		}
		newValue := cell.Value
		if av, ok := cell.Value.GetAddress(); ok && av.SegmentIndex < 0 {
			relocated, err := m.relocateAddressFully(av)
			if err != nil {
				return err
			}
			newValue = NewAddressValue(relocated)
		}
		resolved[newAddr] = newValue
	}
	newData := make(map[Relocatable]*Cell, len(resolved))
	for addr, v := range resolved {
		newData[addr] = &Cell{Value: v}
	}
	m.data = newData
	m.relocationRules = make(map[int]Relocatable)
	return nil
}

// ComputeRelocationTable assigns each real segment a flat base offset:
// table[i] is the first flat address of segment i. sizes must have one
// entry per real segment, typically from SegmentManager.ComputeEffectiveSizes.
func ComputeRelocationTable(sizes []uint64) []uint64 {
	table := make([]uint64, len(sizes)+1)
	table[0] = 1 // Cairo reserves flat address 0
	for i, size := range sizes {
		table[i+1] = table[i] + size
	}
	return table[:len(sizes)+1]
}

// Data exposes the raw store for callers (e.g. SegmentManager) that need
// to iterate every cell; the returned map must not be mutated directly.
func (m *Memory) Data() map[Relocatable]*Cell {
	return m.data
}
