package builtins

import (
	"encoding/binary"

	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

const KeccakName = "keccak"
const CellsPerKeccak = 16
const InputCellsPerKeccak = 8

// KeccakPermutationFunc is the injectable collaborator a
// KeccakBuiltinRunner delegates its state permutation to: it takes the
// eight 64-bit input lanes and returns the eight output lanes.
type KeccakPermutationFunc func(state [InputCellsPerKeccak]uint64) [InputCellsPerKeccak]uint64

// KeccakBuiltinRunner owns the keccak segment: sixteen-cell groups where
// the last eight cells are the permutation of the first eight.
type KeccakBuiltinRunner struct {
	base        memory.Relocatable
	included    bool
	ratio       int
	permutation KeccakPermutationFunc
}

func NewKeccakBuiltinRunner(included bool, ratio int, permutation KeccakPermutationFunc) *KeccakBuiltinRunner {
	return &KeccakBuiltinRunner{included: included, ratio: ratio, permutation: permutation}
}

func (k *KeccakBuiltinRunner) Name() string                { return KeccakName }
func (k *KeccakBuiltinRunner) Base() memory.Relocatable     { return k.base }
func (k *KeccakBuiltinRunner) Ratio() int                   { return k.ratio }
func (k *KeccakBuiltinRunner) CellsPerInvocation() int      { return CellsPerKeccak }
func (k *KeccakBuiltinRunner) InputCellsPerInvocation() int { return InputCellsPerKeccak }

func (k *KeccakBuiltinRunner) InitializeSegments(segments *memory.SegmentManager) {
	k.base = segments.AddSegment()
}

func (k *KeccakBuiltinRunner) InitialStack() []memory.Value {
	if !k.included {
		return nil
	}
	return []memory.Value{memory.NewAddressValue(k.base)}
}

// KeccakWordTooWideError is returned when an input lane does not fit in
// a 64-bit word.
type KeccakWordTooWideError struct {
	Offset uint64
}

func (e *KeccakWordTooWideError) Error() string { return "keccak: input word exceeds 64 bits" }

func (k *KeccakBuiltinRunner) DeduceMemoryCell(address memory.Relocatable, mem *memory.Memory) (*memory.Value, error) {
	groupOffset := address.Offset % CellsPerKeccak
	if groupOffset < InputCellsPerKeccak {
		return nil, nil
	}
	base := address.Offset - groupOffset

	var state [InputCellsPerKeccak]uint64
	for i := 0; i < InputCellsPerKeccak; i++ {
		cellAddr := memory.NewRelocatable(address.SegmentIndex, base+uint64(i))
		v, err := mem.GetFelt(cellAddr)
		if err != nil {
			return nil, nil
		}
		f, _ := v.GetFelt()
		word, err := f.ToU64()
		if err != nil {
			return nil, &KeccakWordTooWideError{Offset: cellAddr.Offset}
		}
		state[i] = word
	}

	output := k.permutation(state)
	outIndex := groupOffset - InputCellsPerKeccak
	value := memory.NewFeltValue(lambdaworks.FeltFromUint64(output[outIndex]))
	return &value, nil
}

func (k *KeccakBuiltinRunner) AddValidationRule(*memory.Memory) error { return nil }

func (k *KeccakBuiltinRunner) GetUsedInstances(segments *memory.SegmentManager) int {
	return usedInstancesFromSegment(segments, k.base, CellsPerKeccak)
}

func (k *KeccakBuiltinRunner) GetAllocatedMemoryUnits(steps int) (int, error) {
	if k.ratio == 0 {
		return 0, nil
	}
	return ceilDiv(steps, k.ratio), nil
}

// DefaultKeccakPermutation packs the eight input lanes into 64
// little-endian bytes, hashes them with hashLanes, and reads the output
// lanes back as consecutive little-endian 8-byte slices of the digest.
// Lanes past the end of the digest stay zero: a 32-byte digest fills
// only the first four. The result is a hash of the lanes, not the
// Keccak-f permutation of them.
func DefaultKeccakPermutation(hashLanes func([]byte) []byte) KeccakPermutationFunc {
	return func(state [InputCellsPerKeccak]uint64) [InputCellsPerKeccak]uint64 {
		buf := make([]byte, 0, InputCellsPerKeccak*8)
		for _, word := range state {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], word)
			buf = append(buf, b[:]...)
		}
		digest := hashLanes(buf)
		var out [InputCellsPerKeccak]uint64
		for i := 0; i < InputCellsPerKeccak && (i+1)*8 <= len(digest); i++ {
			out[i] = binary.LittleEndian.Uint64(digest[i*8 : (i+1)*8])
		}
		return out
	}
}
