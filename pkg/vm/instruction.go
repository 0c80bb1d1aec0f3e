package vm

import (
	"fmt"
	"math/big"

	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
)

type Register int

const (
	AP Register = iota
	FP
)

type Opcode int

const (
	NoOp Opcode = iota
	AssertEq
	Call
	Ret
)

type PcUpdate int

const (
	PcUpdateRegular PcUpdate = iota
	PcUpdateJump
	PcUpdateJumpRel
	PcUpdateJnz
)

type ApUpdate int

const (
	ApUpdateRegular ApUpdate = iota
	ApUpdateAdd
	ApUpdateAdd1
	ApUpdateAdd2
)

type FpUpdate int

const (
	FpUpdateRegular FpUpdate = iota
	FpUpdateAPPlus2
	FpUpdateDst
)

type ResLogic int

const (
	ResOp1 ResLogic = iota
	ResAdd
	ResMul
	ResUnconstrained
)

// Instruction is a single decoded Cairo bytecode word: three biased
// 16-bit offsets plus the flag bits that select register sources,
// opcode behavior, and register updates.
type Instruction struct {
	Off0, Off1, Off2 int64
	DstRegister      Register
	Op0Register      Register
	Op1Addr          Op1Addr
	ResLogic         ResLogic
	PcUpdate         PcUpdate
	ApUpdate         ApUpdate
	FpUpdate         FpUpdate
	Opcode           Opcode
}

type Op1Addr int

const (
	Op1AddrOp0 Op1Addr = iota
	Op1AddrImm
	Op1AddrFp
	Op1AddrAp
)

// Size is 2 words when Op1 reads an immediate trailing the instruction
// word, 1 word otherwise.
func (i Instruction) Size() uint64 {
	if i.Op1Addr == Op1AddrImm {
		return 2
	}
	return 1
}

// InvalidInstructionEncodingError is returned when a felt does not
// decode to a well-formed Cairo instruction (non-zero high bits, or an
// opcode/update combination the architecture forbids).
type InvalidInstructionEncodingError struct {
	Encoded lambdaworks.Felt
}

func (e *InvalidInstructionEncodingError) Error() string {
	return fmt.Sprintf("invalid instruction encoding: %s", e.Encoded)
}

const offsetBits = 16
const biasedOffsetBase = int64(1) << (offsetBits - 1)

func decodeOffset(word *big.Int, shift uint) int64 {
	mask := big.NewInt(1<<offsetBits - 1)
	chunk := new(big.Int).Rsh(word, shift)
	chunk.And(chunk, mask)
	return chunk.Int64() - biasedOffsetBase
}

// DecodeInstruction decodes one 63-bit Cairo instruction word: bits
// 0..15/16..31/32..47 are the biased dst/op0/op1 offsets, bits 48..62
// are the flag bits (dst_reg, op0_reg, op1_src[3], res_logic[2],
// pc_update[3], ap_update[2], opcode[3]).
func DecodeInstruction(encoded lambdaworks.Felt) (*Instruction, error) {
	word := encoded.ToBigInt()
	if word.BitLen() > 63 {
		return nil, &InvalidInstructionEncodingError{Encoded: encoded}
	}

	off0 := decodeOffset(word, 0)
	off1 := decodeOffset(word, offsetBits)
	off2 := decodeOffset(word, 2*offsetBits)

	flags := new(big.Int).Rsh(word, 3*offsetBits)
	bit := func(n uint) bool { return flags.Bit(int(n)) == 1 }

	inst := Instruction{Off0: off0, Off1: off1, Off2: off2}

	if bit(0) {
		inst.DstRegister = FP
	} else {
		inst.DstRegister = AP
	}
	if bit(1) {
		inst.Op0Register = FP
	} else {
		inst.Op0Register = AP
	}

	switch {
	case bit(2):
		inst.Op1Addr = Op1AddrImm
	case bit(3):
		inst.Op1Addr = Op1AddrAp
	case bit(4):
		inst.Op1Addr = Op1AddrFp
	default:
		inst.Op1Addr = Op1AddrOp0
	}

	switch {
	case bit(5):
		inst.ResLogic = ResAdd
	case bit(6):
		inst.ResLogic = ResMul
	default:
		inst.ResLogic = ResOp1
	}
	if bit(5) && bit(6) {
		return nil, &InvalidInstructionEncodingError{Encoded: encoded}
	}

	switch {
	case bit(7):
		inst.PcUpdate = PcUpdateJump
	case bit(8):
		inst.PcUpdate = PcUpdateJumpRel
	case bit(9):
		inst.PcUpdate = PcUpdateJnz
	default:
		inst.PcUpdate = PcUpdateRegular
	}

	switch {
	case bit(10):
		inst.ApUpdate = ApUpdateAdd
	case bit(11):
		inst.ApUpdate = ApUpdateAdd1
	default:
		inst.ApUpdate = ApUpdateRegular
	}

	switch {
	case bit(12):
		inst.Opcode = Call
		inst.ApUpdate = ApUpdateAdd2
		inst.FpUpdate = FpUpdateAPPlus2
	case bit(13):
		inst.Opcode = Ret
		inst.FpUpdate = FpUpdateDst
	case bit(14):
		inst.Opcode = AssertEq
	default:
		inst.Opcode = NoOp
	}
	if inst.PcUpdate == PcUpdateJnz && inst.ResLogic != ResUnconstrained && !bit(5) && !bit(6) {
		inst.ResLogic = ResUnconstrained
	}

	return &inst, nil
}
