package vm

import "github.com/cairovm-core/cairovm/pkg/vm/memory"

// RunContext holds the three Cairo registers: the program counter and
// the two frame pointers used to address the execution segment.
type RunContext struct {
	Pc memory.Relocatable
	Ap memory.Relocatable
	Fp memory.Relocatable
}

func (r *RunContext) register(reg Register) memory.Relocatable {
	if reg == FP {
		return r.Fp
	}
	return r.Ap
}

// ComputeDstAddr returns the address the instruction's dst operand
// reads from: off0 applied to ap or fp depending on DstRegister.
func (r *RunContext) ComputeDstAddr(instruction Instruction) (memory.Relocatable, error) {
	return r.register(instruction.DstRegister).AddInt(instruction.Off0)
}

// ComputeOp0Addr returns the address the instruction's op0 operand
// reads from: off1 applied to ap or fp depending on Op0Register.
func (r *RunContext) ComputeOp0Addr(instruction Instruction) (memory.Relocatable, error) {
	return r.register(instruction.Op0Register).AddInt(instruction.Off1)
}

// ComputeOp1Addr returns the address the instruction's op1 operand
// reads from, depending on its addressing mode: relative to op0, the
// instruction's own pc (for an immediate trailing word), fp, or ap.
func (r *RunContext) ComputeOp1Addr(instruction Instruction, op0 *memory.Value) (memory.Relocatable, error) {
	switch instruction.Op1Addr {
	case Op1AddrOp0:
		if op0 == nil {
			return memory.Relocatable{}, &NoOp0ForOp1AddrError{}
		}
		addr, ok := op0.GetAddress()
		if !ok {
			return memory.Relocatable{}, &NoOp0ForOp1AddrError{}
		}
		return addr.AddInt(instruction.Off2)
	case Op1AddrImm:
		return r.Pc.AddInt(instruction.Off2)
	case Op1AddrFp:
		return r.Fp.AddInt(instruction.Off2)
	default:
		return r.Ap.AddInt(instruction.Off2)
	}
}

// NoOp0ForOp1AddrError is returned when op1's addressing mode is
// relative to op0 but op0 has not been resolved yet.
type NoOp0ForOp1AddrError struct{}

func (e *NoOp0ForOp1AddrError) Error() string {
	return "cannot compute op1 address relative to an unresolved op0"
}
