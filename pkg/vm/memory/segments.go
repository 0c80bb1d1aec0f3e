package memory

import "github.com/cairovm-core/cairovm/pkg/lambdaworks"

// SegmentManager owns segment allocation on top of a Memory: it hands out
// fresh real or temporary segment indices, bulk-loads data into them, and
// at the end of a run computes how large each segment turned out to be.
type SegmentManager struct {
	Memory       *Memory
	segmentSizes map[int]uint64
	publicOffset map[int][]int
}

// NewSegmentManager builds a manager over a fresh Memory.
func NewSegmentManager() *SegmentManager {
	return &SegmentManager{
		Memory:       NewMemory(),
		segmentSizes: make(map[int]uint64),
		publicOffset: make(map[int][]int),
	}
}

// AddSegment allocates a new, empty real segment and returns its base
// address (offset 0).
func (s *SegmentManager) AddSegment() Relocatable {
	index := s.Memory.numSegments
	s.Memory.numSegments++
	return NewRelocatable(index, 0)
}

// AddTempSegment allocates a new temporary segment (negative index,
// starting at -1 and counting down) and returns its base address.
func (s *SegmentManager) AddTempSegment() Relocatable {
	s.Memory.numTempSegments++
	index := -s.Memory.numTempSegments
	return NewRelocatable(index, 0)
}

// LoadData writes a consecutive run of values starting at ptr and
// returns the address immediately following the last one written.
// Cells are written from last to first so that a validation failure
// partway through never leaves a lower-offset cell written without the
// higher-offset cells it logically follows.
func (s *SegmentManager) LoadData(ptr Relocatable, data []Value) (Relocatable, error) {
	end, err := ptr.AddUint(uint64(len(data)))
	if err != nil {
		return Relocatable{}, err
	}
	for i := len(data) - 1; i >= 0; i-- {
		cursor, err := ptr.AddUint(uint64(i))
		if err != nil {
			return Relocatable{}, err
		}
		if err := s.Memory.Insert(cursor, data[i]); err != nil {
			return Relocatable{}, err
		}
	}
	return end, nil
}

// GetSegmentUsedSize returns one plus the highest offset written in a
// segment (0 if nothing was written), i.e. its footprint with holes
// counted, before any padding to a power-of-two or other layout-driven
// size.
func (s *SegmentManager) GetSegmentUsedSize(segment int) uint64 {
	var maxOffset uint64
	seen := false
	for addr := range s.Memory.data {
		if addr.SegmentIndex == segment {
			seen = true
			if addr.Offset+1 > maxOffset {
				maxOffset = addr.Offset + 1
			}
		}
	}
	if !seen {
		return 0
	}
	return maxOffset
}

// SetSegmentSize records an explicit size for a segment, overriding what
// GetSegmentUsedSize would infer; builtins that pad to a ratio-derived
// size use this.
func (s *SegmentManager) SetSegmentSize(segment int, size uint64) {
	s.segmentSizes[segment] = size
}

// GetSegmentSize returns an explicitly-set size if present, else the used
// size.
func (s *SegmentManager) GetSegmentSize(segment int) uint64 {
	if size, ok := s.segmentSizes[segment]; ok {
		return size
	}
	return s.GetSegmentUsedSize(segment)
}

// ComputeEffectiveSizes returns the size of every real segment, indexed
// by segment number: the explicit size where one was set, else the used
// size.
func (s *SegmentManager) ComputeEffectiveSizes() []uint64 {
	sizes := make([]uint64, s.Memory.numSegments)
	for i := range sizes {
		sizes[i] = s.GetSegmentSize(i)
	}
	return sizes
}

// Relocate finalizes the address space: temporary segments are folded
// into their target real segments via registered relocation rules, and a
// flat relocation table is computed from the resulting real-segment
// sizes.
func (s *SegmentManager) Relocate() ([]uint64, error) {
	if err := s.Memory.RelocateTemporarySegments(); err != nil {
		return nil, err
	}
	sizes := s.ComputeEffectiveSizes()
	return ComputeRelocationTable(sizes), nil
}

// RelocateMemory produces the flat felt-indexed view of memory used for
// trace output, applying the relocation table to every stored value.
func (s *SegmentManager) RelocateMemory(table []uint64) (map[uint64]lambdaworks.Felt, error) {
	out := make(map[uint64]lambdaworks.Felt, len(s.Memory.data))
	for addr, cell := range s.Memory.data {
		flatAddr, err := addr.RelocateAddress(table)
		if err != nil {
			return nil, err
		}
		flatValue, err := cell.Value.RelocateValue(table)
		if err != nil {
			return nil, err
		}
		out[flatAddr] = flatValue
	}
	return out, nil
}

// IsValidMemoryValue reports whether value is well-formed to be stored:
// addresses must reference a segment that has actually been allocated
// (real, up to numSegments, or temporary, up to numTempSegments).
func (s *SegmentManager) IsValidMemoryValue(value Value) bool {
	addr, ok := value.GetAddress()
	if !ok {
		return true
	}
	if addr.SegmentIndex >= 0 {
		return addr.SegmentIndex < s.Memory.numSegments
	}
	return -addr.SegmentIndex <= s.Memory.numTempSegments
}

// PublicMemoryOffsets returns the offsets within segment that a runner
// has marked as belonging to the program's public memory (used by proof
// mode); segments not marked return nil.
func (s *SegmentManager) PublicMemoryOffsets(segment int) []int {
	return s.publicOffset[segment]
}

// SetPublicMemoryOffsets records which offsets of segment are public.
func (s *SegmentManager) SetPublicMemoryOffsets(segment int, offsets []int) {
	s.publicOffset[segment] = offsets
}

// NumSegments reports how many real segments have been allocated.
func (s *SegmentManager) NumSegments() int {
	return s.Memory.numSegments
}

// NumTempSegments reports how many temporary segments have been
// allocated.
func (s *SegmentManager) NumTempSegments() int {
	return s.Memory.numTempSegments
}
