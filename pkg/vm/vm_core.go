// Package vm implements the Cairo VM's instruction execution loop: it
// decodes one instruction per step, resolves its two operands and
// result (consulting builtin runners when memory alone can't), checks
// the opcode's own assertions, and advances the three registers.
package vm

import (
	"fmt"

	"github.com/cairovm-core/cairovm/pkg/builtins"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

type VirtualMachineError struct {
	Msg string
}

func (e *VirtualMachineError) Error() string { return e.Msg }

// VirtualMachine runs Cairo bytecode over a segmented Memory and
// produces an execution trace.
type VirtualMachine struct {
	RunContext     RunContext
	CurrentStep    uint64
	Segments       *memory.SegmentManager
	BuiltinRunners []builtins.BuiltinRunner
	Trace          []TraceEntry
	RelocatedTrace []RelocatedTraceEntry
}

func NewVirtualMachine() *VirtualMachine {
	return &VirtualMachine{
		Segments:       memory.NewSegmentManager(),
		BuiltinRunners: make([]builtins.BuiltinRunner, 0, 9),
	}
}

// RelocateTrace turns every trace entry's relocatable registers into
// flat addresses using a relocation table already computed for memory.
func (vm *VirtualMachine) RelocateTrace(table []uint64) error {
	if len(table) < 2 {
		return &VirtualMachineError{"no relocation table computed for the execution segment"}
	}
	for _, entry := range vm.Trace {
		pc, err := entry.Pc.RelocateAddress(table)
		if err != nil {
			return err
		}
		ap, err := entry.Ap.RelocateAddress(table)
		if err != nil {
			return err
		}
		fp, err := entry.Fp.RelocateAddress(table)
		if err != nil {
			return err
		}
		vm.RelocatedTrace = append(vm.RelocatedTrace, RelocatedTraceEntry{Pc: pc, Ap: ap, Fp: fp})
	}
	return nil
}

// Relocate finalizes the run's address space and trace: temporary
// segments are resolved, a flat relocation table is computed, and the
// trace is relocated against it.
func (vm *VirtualMachine) Relocate() error {
	table, err := vm.Segments.Relocate()
	if err != nil {
		return err
	}
	if len(vm.Trace) == 0 {
		return nil
	}
	return vm.RelocateTrace(table)
}

// Operands is the resolved dst/op0/op1/res for one executed step.
type Operands struct {
	Dst memory.Value
	Op0 memory.Value
	Op1 memory.Value
	Res *memory.Value
}

// OpcodeAssertions checks the invariants an opcode imposes on its
// operands: AssertEq requires dst == res, Call requires the pushed
// return address and frame pointer to match what the callee will see.
func (vm *VirtualMachine) OpcodeAssertions(instruction Instruction, operands Operands) error {
	switch instruction.Opcode {
	case AssertEq:
		if operands.Res == nil {
			return &VirtualMachineError{"unconstrained res cannot be used with AssertEq"}
		}
		if !operands.Res.Equal(operands.Dst) {
			return &VirtualMachineError{"AssertEq operand mismatch"}
		}
	case Call:
		returnPc, err := vm.RunContext.Pc.AddUint(instruction.Size())
		if err != nil {
			return err
		}
		if !operands.Op0.Equal(memory.NewAddressValue(returnPc)) {
			return &VirtualMachineError{"call could not write the return pc"}
		}
		dstAddr, ok := operands.Dst.GetAddress()
		if !ok || !dstAddr.Equal(vm.RunContext.Fp) {
			return &VirtualMachineError{"call could not write the return fp"}
		}
	}
	return nil
}

// DeduceDst infers dst when the opcode constrains it without requiring
// a memory read: AssertEq's dst is always res, Call's dst is always the
// caller's fp.
func (vm *VirtualMachine) DeduceDst(instruction Instruction, res *memory.Value) *memory.Value {
	switch instruction.Opcode {
	case AssertEq:
		return res
	case Call:
		v := memory.NewAddressValue(vm.RunContext.Fp)
		return &v
	}
	return nil
}

// DeduceOp0 infers op0 from dst and op1 when the instruction's own
// semantics determine it (Call always knows its return address; an
// AssertEq of ResAdd/ResMul can be inverted).
func (vm *VirtualMachine) DeduceOp0(instruction Instruction, dst, op1 *memory.Value) (*memory.Value, *memory.Value, error) {
	switch instruction.Opcode {
	case Call:
		next, err := vm.RunContext.Pc.AddUint(instruction.Size())
		if err != nil {
			return nil, nil, err
		}
		v := memory.NewAddressValue(next)
		return &v, nil, nil
	case AssertEq:
		if dst == nil || op1 == nil {
			return nil, nil, nil
		}
		switch instruction.ResLogic {
		case ResAdd:
			deduced, err := dst.Sub(*op1)
			if err != nil {
				return nil, nil, nil
			}
			return &deduced, dst, nil
		case ResMul:
			dstFelt, dstOk := dst.GetFelt()
			op1Felt, op1Ok := op1.GetFelt()
			if dstOk && op1Ok && !op1Felt.IsZero() {
				v := memory.NewFeltValue(dstFelt.Div(op1Felt))
				return &v, dst, nil
			}
		}
	}
	return nil, nil, nil
}

// op0Required reports whether op0's concrete value is needed even
// though it could not be deduced: either op1's own address is computed
// relative to it, or res computation reads it directly.
func op0Required(instruction Instruction) bool {
	if instruction.Op1Addr == Op1AddrOp0 {
		return true
	}
	return instruction.ResLogic == ResAdd || instruction.ResLogic == ResMul
}

// DeduceOp1 infers op1 from dst and op0 symmetrically to DeduceOp0.
func (vm *VirtualMachine) DeduceOp1(instruction Instruction, dst, op0 *memory.Value) (*memory.Value, *memory.Value, error) {
	if instruction.Opcode != AssertEq || dst == nil {
		return nil, nil, nil
	}
	switch instruction.ResLogic {
	case ResOp1:
		return dst, dst, nil
	case ResAdd:
		if op0 == nil {
			return nil, nil, nil
		}
		deduced, err := dst.Sub(*op0)
		if err != nil {
			return nil, nil, nil
		}
		return &deduced, dst, nil
	case ResMul:
		if op0 == nil {
			return nil, nil, nil
		}
		dstFelt, dstOk := dst.GetFelt()
		op0Felt, op0Ok := op0.GetFelt()
		if dstOk && op0Ok && !op0Felt.IsZero() {
			v := memory.NewFeltValue(dstFelt.Div(op0Felt))
			return &v, dst, nil
		}
	}
	return nil, nil, nil
}

// ComputeRes combines op0 and op1 per the instruction's result logic.
func (vm *VirtualMachine) ComputeRes(instruction Instruction, op0, op1 memory.Value) (*memory.Value, error) {
	switch instruction.ResLogic {
	case ResOp1:
		return &op1, nil
	case ResAdd:
		sum, err := op0.Add(op1)
		if err != nil {
			return nil, err
		}
		return &sum, nil
	case ResMul:
		product, err := op0.Mul(op1)
		if err != nil {
			return nil, err
		}
		return &product, nil
	case ResUnconstrained:
		return nil, nil
	}
	return nil, nil
}

// deduceMemoryCell asks every builtin runner in turn whether it can
// supply the value at address; the first to answer wins.
func (vm *VirtualMachine) deduceMemoryCell(address memory.Relocatable) (*memory.Value, error) {
	for _, runner := range vm.BuiltinRunners {
		if runner.Base().SegmentIndex != address.SegmentIndex {
			continue
		}
		return runner.DeduceMemoryCell(address, vm.Segments.Memory)
	}
	return nil, nil
}

func (vm *VirtualMachine) resolveOperand(address memory.Relocatable) (memory.Value, error) {
	if value, ok := vm.Segments.Memory.Get(address); ok {
		return value, nil
	}
	deduced, err := vm.deduceMemoryCell(address)
	if err != nil {
		return memory.Value{}, err
	}
	if deduced == nil {
		return memory.Value{}, &VirtualMachineError{fmt.Sprintf("no value at %s and it could not be deduced", address)}
	}
	if err := vm.Segments.Memory.Insert(address, *deduced); err != nil {
		return memory.Value{}, err
	}
	return *deduced, nil
}

// ComputeOperands resolves dst, op0, op1 and res for one step, filling
// in any operand that memory doesn't yet hold via deduction, and
// writing deduced values back to memory.
func (vm *VirtualMachine) ComputeOperands(instruction Instruction) (Operands, error) {
	dstAddr, err := vm.RunContext.ComputeDstAddr(instruction)
	if err != nil {
		return Operands{}, err
	}
	op0Addr, err := vm.RunContext.ComputeOp0Addr(instruction)
	if err != nil {
		return Operands{}, err
	}

	op0Val, op0Present := vm.Segments.Memory.Get(op0Addr)
	var op0Ptr *memory.Value
	if op0Present {
		op0Ptr = &op0Val
	}

	op1Addr, err := vm.RunContext.ComputeOp1Addr(instruction, op0Ptr)
	if err != nil {
		return Operands{}, err
	}
	op1Val, op1Present := vm.Segments.Memory.Get(op1Addr)
	var op1Ptr *memory.Value
	if op1Present {
		op1Ptr = &op1Val
	}

	dstVal, dstPresent := vm.Segments.Memory.Get(dstAddr)
	var dstPtr *memory.Value
	if dstPresent {
		dstPtr = &dstVal
	}

	var res *memory.Value
	if op0Present && op1Present {
		res, err = vm.ComputeRes(instruction, op0Val, op1Val)
		if err != nil {
			return Operands{}, err
		}
	}

	if !op0Present {
		deducedOp0, deducedRes, err := vm.DeduceOp0(instruction, dstPtr, op1Ptr)
		if err != nil {
			return Operands{}, err
		}
		switch {
		case deducedOp0 != nil:
			op0Val = *deducedOp0
			if err := vm.Segments.Memory.Insert(op0Addr, op0Val); err != nil {
				return Operands{}, err
			}
			if res == nil {
				res = deducedRes
			}
			op0Ptr = &op0Val
		case op0Required(instruction):
			op0Val, err = vm.resolveOperand(op0Addr)
			if err != nil {
				return Operands{}, err
			}
			op0Ptr = &op0Val
		}
	}

	if !op1Present {
		op1Addr, err = vm.RunContext.ComputeOp1Addr(instruction, op0Ptr)
		if err != nil {
			return Operands{}, err
		}
		deducedOp1, deducedRes, err := vm.DeduceOp1(instruction, dstPtr, op0Ptr)
		if err != nil {
			return Operands{}, err
		}
		if deducedOp1 == nil {
			op1Val, err = vm.resolveOperand(op1Addr)
			if err != nil {
				return Operands{}, err
			}
		} else {
			op1Val = *deducedOp1
			if err := vm.Segments.Memory.Insert(op1Addr, op1Val); err != nil {
				return Operands{}, err
			}
			if res == nil {
				res = deducedRes
			}
		}
	}

	if res == nil {
		res, err = vm.ComputeRes(instruction, op0Val, op1Val)
		if err != nil {
			return Operands{}, err
		}
	}

	if !dstPresent {
		deduced := vm.DeduceDst(instruction, res)
		if deduced == nil {
			return Operands{}, &VirtualMachineError{"could not deduce dst"}
		}
		dstVal = *deduced
		if err := vm.Segments.Memory.Insert(dstAddr, dstVal); err != nil {
			return Operands{}, err
		}
	}

	return Operands{Dst: dstVal, Op0: op0Val, Op1: op1Val, Res: res}, nil
}

// UpdateRegisters advances fp, ap and pc per the instruction's update
// rules, in that order (fp and ap both read the pre-update registers).
func (vm *VirtualMachine) UpdateRegisters(instruction Instruction, operands Operands) error {
	if err := vm.updateFp(instruction, operands); err != nil {
		return err
	}
	if err := vm.updateAp(instruction, operands); err != nil {
		return err
	}
	return vm.updatePc(instruction, operands)
}

func (vm *VirtualMachine) updatePc(instruction Instruction, operands Operands) error {
	switch instruction.PcUpdate {
	case PcUpdateRegular:
		next, err := vm.RunContext.Pc.AddUint(instruction.Size())
		if err != nil {
			return err
		}
		vm.RunContext.Pc = next
	case PcUpdateJump:
		if operands.Res == nil {
			return &VirtualMachineError{"unconstrained res cannot be used with an absolute jump"}
		}
		target, ok := operands.Res.GetAddress()
		if !ok {
			return &VirtualMachineError{"a felt res cannot be used with an absolute jump"}
		}
		vm.RunContext.Pc = target
	case PcUpdateJumpRel:
		if operands.Res == nil {
			return &VirtualMachineError{"unconstrained res cannot be used with a relative jump"}
		}
		delta, ok := operands.Res.GetFelt()
		if !ok {
			return &VirtualMachineError{"an address res cannot be used with a relative jump"}
		}
		next, err := vm.RunContext.Pc.AddFelt(delta)
		if err != nil {
			return err
		}
		vm.RunContext.Pc = next
	case PcUpdateJnz:
		if operands.Dst.IsZero() {
			next, err := vm.RunContext.Pc.AddUint(instruction.Size())
			if err != nil {
				return err
			}
			vm.RunContext.Pc = next
		} else {
			felt, ok := operands.Op1.GetFelt()
			if !ok {
				return &VirtualMachineError{"jnz step must be a felt"}
			}
			updated, err := vm.RunContext.Pc.AddFelt(felt)
			if err != nil {
				return err
			}
			vm.RunContext.Pc = updated
		}
	}
	return nil
}

func (vm *VirtualMachine) updateAp(instruction Instruction, operands Operands) error {
	switch instruction.ApUpdate {
	case ApUpdateAdd:
		if operands.Res == nil {
			return &VirtualMachineError{"unconstrained res cannot be used with ap += res"}
		}
		felt, ok := operands.Res.GetFelt()
		if !ok {
			return &VirtualMachineError{"ap += res requires a felt result"}
		}
		next, err := vm.RunContext.Ap.AddFelt(felt)
		if err != nil {
			return err
		}
		vm.RunContext.Ap = next
	case ApUpdateAdd1:
		next, _ := vm.RunContext.Ap.AddUint(1)
		vm.RunContext.Ap = next
	case ApUpdateAdd2:
		next, _ := vm.RunContext.Ap.AddUint(2)
		vm.RunContext.Ap = next
	}
	return nil
}

func (vm *VirtualMachine) updateFp(instruction Instruction, operands Operands) error {
	switch instruction.FpUpdate {
	case FpUpdateAPPlus2:
		next, _ := vm.RunContext.Ap.AddUint(2)
		vm.RunContext.Fp = next
	case FpUpdateDst:
		if addr, ok := operands.Dst.GetAddress(); ok {
			vm.RunContext.Fp = addr
		} else if felt, ok := operands.Dst.GetFelt(); ok {
			next, err := vm.RunContext.Fp.AddFelt(felt)
			if err != nil {
				return err
			}
			vm.RunContext.Fp = next
		}
	}
	return nil
}

// Step executes exactly one already-decoded instruction at the current
// pc, recording the pre-execution registers to the trace.
func (vm *VirtualMachine) Step(instruction Instruction) error {
	vm.Trace = append(vm.Trace, TraceEntry{Pc: vm.RunContext.Pc, Ap: vm.RunContext.Ap, Fp: vm.RunContext.Fp})

	operands, err := vm.ComputeOperands(instruction)
	if err != nil {
		return err
	}
	if err := vm.OpcodeAssertions(instruction, operands); err != nil {
		return err
	}
	if err := vm.UpdateRegisters(instruction, operands); err != nil {
		return err
	}
	vm.CurrentStep++
	return nil
}
