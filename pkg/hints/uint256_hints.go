package hints

import (
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

// uint256Shift is 2**128, the SHIFT the uint256 hints compare a limb sum
// against to decide whether it overflowed into a carry bit. Uint256's
// {low, high} layout is fixed by the common library's struct definition,
// not carried in this module's program metadata, so it is hardcoded here
// exactly as the struct offsets below are.
var uint256Shift = mustFeltFromDecString("340282366920938463463374607431768211456")

func mustFeltFromDecString(s string) lambdaworks.Felt {
	f, err := lambdaworks.FeltFromDecString(s)
	if err != nil {
		panic(err)
	}
	return f
}

// readFeltField reads the felt stored at the struct field of name at
// fieldOffset (0 for low, 1 for high).
func readFeltField(ids IdsManager, mem *memory.Memory, ctx Context, name string, fieldOffset uint64) (lambdaworks.Felt, error) {
	addr, err := ids.GetStructFieldAddress(name, fieldOffset, mem, ctx)
	if err != nil {
		return lambdaworks.Felt{}, err
	}
	v, err := mem.GetFelt(addr)
	if err != nil {
		return lambdaworks.Felt{}, err
	}
	f, _ := v.GetFelt()
	return f, nil
}

// addLimbWithCarry adds two limbs and reports whether the sum reached
// uint256Shift.
func addLimbWithCarry(a, b lambdaworks.Felt) (lambdaworks.Felt, lambdaworks.Felt) {
	sum := a.Add(b)
	if sum.Cmp(uint256Shift) >= 0 {
		return sum, lambdaworks.FeltOne()
	}
	return sum, lambdaworks.FeltZero()
}

// uint256AddLow implements the UINT256_ADD_LOW hint: adds the low limbs
// of ids.a and ids.b and writes the carry bit to ids.carry_low.
func uint256AddLow(ids IdsManager, mem *memory.Memory, ctx Context) error {
	aLow, err := readFeltField(ids, mem, ctx, "a", 0)
	if err != nil {
		return err
	}
	bLow, err := readFeltField(ids, mem, ctx, "b", 0)
	if err != nil {
		return err
	}
	_, carryLow := addLimbWithCarry(aLow, bLow)
	return ids.Insert("carry_low", memory.NewFeltValue(carryLow), mem, ctx)
}

// uint256Add implements the UINT256_ADD hint: adds both limbs of ids.a
// and ids.b, carrying the low limb's overflow into the high limb's sum,
// and writes both carry bits to ids.carry_low/ids.carry_high.
func uint256Add(ids IdsManager, mem *memory.Memory, ctx Context) error {
	aLow, err := readFeltField(ids, mem, ctx, "a", 0)
	if err != nil {
		return err
	}
	bLow, err := readFeltField(ids, mem, ctx, "b", 0)
	if err != nil {
		return err
	}
	_, carryLow := addLimbWithCarry(aLow, bLow)
	if err := ids.Insert("carry_low", memory.NewFeltValue(carryLow), mem, ctx); err != nil {
		return err
	}

	aHigh, err := readFeltField(ids, mem, ctx, "a", 1)
	if err != nil {
		return err
	}
	bHigh, err := readFeltField(ids, mem, ctx, "b", 1)
	if err != nil {
		return err
	}
	_, carryHigh := addLimbWithCarry(aHigh.Add(bHigh), carryLow)
	return ids.Insert("carry_high", memory.NewFeltValue(carryHigh), mem, ctx)
}
