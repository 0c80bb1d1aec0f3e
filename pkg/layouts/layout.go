// Package layouts builds the named Layout configurations that select
// which builtins a Cairo run supports and how its trace is sized.
package layouts

import "fmt"

// DilutedPool configures the diluted-check column shared by bitwise and
// keccak.
type DilutedPool struct {
	UnitsPerStep int
	Spacing      int
	NBits        int
}

// BuiltinConfig is the per-builtin knob bundle a layout may enable; a
// disabled builtin is simply absent from Layout.Builtins.
type BuiltinConfig struct {
	Ratio int

	// Pedersen
	Repetitions  int
	ElementHeight int
	ElementBits  int
	NInputs      int
	HashLimit    string

	// Range check
	NParts int

	// ECDSA
	Height    int
	NHashBits int

	// Bitwise
	TotalNBits int

	// EC op
	ScalarHeight int
	ScalarBits   int

	// Keccak
	InstancePerComponent int
	StateRep             []int
}

// Layout is the full parameter bundle for a run: which builtins are
// enabled (and how), plus the sizing constants governing trace layout.
type Layout struct {
	Name                 string
	CpuComponentStep     int
	RcUnits              int
	PublicMemoryFraction int
	MemoryUnitsPerStep   int
	NTraceColumns        int
	Builtins             map[string]BuiltinConfig
	DilutedPool          *DilutedPool
}

func basePedersen(ratio int) BuiltinConfig {
	return BuiltinConfig{Ratio: ratio, Repetitions: 4, ElementHeight: 256, ElementBits: 252, NInputs: 2, HashLimit: "stark_prime"}
}

func baseRangeCheck(ratio int) BuiltinConfig {
	return BuiltinConfig{Ratio: ratio, NParts: 8}
}

func baseEcdsa(ratio int) BuiltinConfig {
	return BuiltinConfig{Ratio: ratio, Repetitions: 1, Height: 256, NHashBits: 251}
}

func baseBitwise(ratio int) BuiltinConfig {
	return BuiltinConfig{Ratio: ratio, TotalNBits: 251}
}

func baseEcOp(ratio int) BuiltinConfig {
	return BuiltinConfig{Ratio: ratio, ScalarHeight: 256, ScalarBits: 252}
}

func baseKeccak(ratio int) BuiltinConfig {
	return BuiltinConfig{Ratio: ratio, InstancePerComponent: 16, StateRep: []int{200, 200, 200, 200, 200, 200, 200, 200}}
}

func basePoseidon(ratio int) BuiltinConfig {
	return BuiltinConfig{Ratio: ratio}
}

func baseSegmentArena() BuiltinConfig {
	return BuiltinConfig{Ratio: 1}
}

// UnsupportedLayoutError is returned by NewLayout for an unrecognized
// name.
type UnsupportedLayoutError struct {
	Name string
}

func (e *UnsupportedLayoutError) Error() string {
	return fmt.Sprintf("unsupported layout %q", e.Name)
}

// NewLayout builds one of the fixed named layouts. name must be one of
// plain, small, dex, recursive, starknet, starknet_with_keccak,
// recursive_large_output, all_cairo, all_solidity, dynamic.
func NewLayout(name string) (*Layout, error) {
	switch name {
	case "plain":
		return &Layout{
			Name: name, CpuComponentStep: 1, RcUnits: 16, PublicMemoryFraction: 4,
			MemoryUnitsPerStep: 8, NTraceColumns: 8, Builtins: map[string]BuiltinConfig{},
		}, nil
	case "small":
		return &Layout{
			Name: name, CpuComponentStep: 1, RcUnits: 16, PublicMemoryFraction: 4,
			MemoryUnitsPerStep: 8, NTraceColumns: 10,
			Builtins: map[string]BuiltinConfig{
				"output":      {},
				"pedersen":    basePedersen(8),
				"range_check": baseRangeCheck(8),
				"ecdsa":       baseEcdsa(512),
			},
		}, nil
	case "dex":
		return &Layout{
			Name: name, CpuComponentStep: 1, RcUnits: 4, PublicMemoryFraction: 4,
			MemoryUnitsPerStep: 8, NTraceColumns: 10,
			Builtins: map[string]BuiltinConfig{
				"output":      {},
				"pedersen":    basePedersen(8),
				"range_check": baseRangeCheck(8),
				"ecdsa":       baseEcdsa(512),
			},
		}, nil
	case "recursive":
		return &Layout{
			Name: name, CpuComponentStep: 1, RcUnits: 4, PublicMemoryFraction: 8,
			MemoryUnitsPerStep: 8, NTraceColumns: 10,
			Builtins: map[string]BuiltinConfig{
				"output":      {},
				"pedersen":    basePedersen(128),
				"range_check": baseRangeCheck(8),
				"bitwise":     baseBitwise(8),
			},
			DilutedPool: &DilutedPool{UnitsPerStep: 4, Spacing: 4, NBits: 16},
		}, nil
	case "starknet":
		return &Layout{
			Name: name, CpuComponentStep: 1, RcUnits: 4, PublicMemoryFraction: 8,
			MemoryUnitsPerStep: 8, NTraceColumns: 10,
			Builtins: map[string]BuiltinConfig{
				"output":      {},
				"pedersen":    basePedersen(32),
				"range_check": baseRangeCheck(16),
				"ecdsa":       baseEcdsa(2048),
				"bitwise":     baseBitwise(64),
				"ec_op":       baseEcOp(1024),
				"poseidon":    basePoseidon(32),
			},
			DilutedPool: &DilutedPool{UnitsPerStep: 2, Spacing: 4, NBits: 16},
		}, nil
	case "starknet_with_keccak":
		layout, _ := NewLayout("starknet")
		layout.Name = name
		layout.Builtins["keccak"] = baseKeccak(2048)
		layout.Builtins["segment_arena"] = baseSegmentArena()
		return layout, nil
	case "recursive_large_output":
		return &Layout{
			Name: name, CpuComponentStep: 1, RcUnits: 4, PublicMemoryFraction: 8,
			MemoryUnitsPerStep: 8, NTraceColumns: 10,
			Builtins: map[string]BuiltinConfig{
				"output":      {},
				"pedersen":    basePedersen(128),
				"range_check": baseRangeCheck(8),
				"bitwise":     baseBitwise(8),
				"poseidon":    basePoseidon(8),
			},
			DilutedPool: &DilutedPool{UnitsPerStep: 4, Spacing: 4, NBits: 16},
		}, nil
	case "all_cairo":
		return &Layout{
			Name: name, CpuComponentStep: 1, RcUnits: 4, PublicMemoryFraction: 8,
			MemoryUnitsPerStep: 8, NTraceColumns: 11,
			Builtins: map[string]BuiltinConfig{
				"output":        {},
				"pedersen":      basePedersen(256),
				"range_check":   baseRangeCheck(8),
				"ecdsa":         baseEcdsa(2048),
				"bitwise":       baseBitwise(16),
				"ec_op":         baseEcOp(256),
				"keccak":        baseKeccak(2048),
				"poseidon":      basePoseidon(256),
				"segment_arena": baseSegmentArena(),
			},
			DilutedPool: &DilutedPool{UnitsPerStep: 4, Spacing: 4, NBits: 16},
		}, nil
	case "all_solidity":
		return &Layout{
			Name: name, CpuComponentStep: 1, RcUnits: 8, PublicMemoryFraction: 8,
			MemoryUnitsPerStep: 8, NTraceColumns: 27,
			Builtins: map[string]BuiltinConfig{
				"output":      {},
				"pedersen":    basePedersen(8),
				"range_check": baseRangeCheck(8),
				"ecdsa":       baseEcdsa(512),
				"bitwise":     baseBitwise(8),
				"ec_op":       baseEcOp(256),
			},
			DilutedPool: &DilutedPool{UnitsPerStep: 16, Spacing: 4, NBits: 16},
		}, nil
	case "dynamic":
		return &Layout{
			Name: name, CpuComponentStep: 1, RcUnits: 16, PublicMemoryFraction: 4,
			MemoryUnitsPerStep: 8, NTraceColumns: 73,
			Builtins: map[string]BuiltinConfig{
				"output":        {},
				"pedersen":      basePedersen(8),
				"range_check":   baseRangeCheck(8),
				"ecdsa":         baseEcdsa(512),
				"bitwise":       baseBitwise(8),
				"ec_op":         baseEcOp(256),
				"keccak":        baseKeccak(2048),
				"poseidon":      basePoseidon(8),
				"segment_arena": baseSegmentArena(),
			},
			DilutedPool: &DilutedPool{UnitsPerStep: 2, Spacing: 4, NBits: 16},
		}, nil
	default:
		return nil, &UnsupportedLayoutError{Name: name}
	}
}

// CellsPerInvocation returns the fixed cells-per-invocation constant for
// a builtin name, independent of any layout (§4.J/K: "fixed constants to
// reproduce").
func CellsPerInvocation(name string) (cells, input int, ok bool) {
	switch name {
	case "bitwise":
		return 5, 2, true
	case "ec_op":
		return 7, 5, true
	case "pedersen":
		return 3, 2, true
	case "poseidon":
		return 6, 3, true
	case "ecdsa":
		return 2, 2, true
	case "range_check":
		return 1, 1, true
	case "keccak":
		return 2 * 8, 8, true // 2 * |state_rep| for the default 8-word state
	default:
		return 0, 0, false
	}
}
