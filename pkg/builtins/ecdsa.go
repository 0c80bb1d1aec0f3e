package builtins

import (
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

const EcdsaName = "ecdsa"
const CellsPerEcdsa = 2
const InputCellsPerEcdsa = 2

// EcdsaSignature is a signature registered out-of-band (typically by a
// hint) against the pubkey cell of one ecdsa instance.
type EcdsaSignature struct {
	R, S lambdaworks.Felt
}

// EcdsaVerifyFunc is the injectable collaborator an EcdsaBuiltinRunner
// delegates signature verification to.
type EcdsaVerifyFunc func(pubkey, message lambdaworks.Felt, sig EcdsaSignature) bool

// EcdsaBuiltinRunner owns the ecdsa segment: two-cell groups of
// (pubkey, message); a write to the message cell is checked against a
// signature registered for the matching instance's base address.
type EcdsaBuiltinRunner struct {
	base       memory.Relocatable
	included   bool
	ratio      int
	verify     EcdsaVerifyFunc
	signatures map[uint64]EcdsaSignature
}

func NewEcdsaBuiltinRunner(included bool, ratio int, verify EcdsaVerifyFunc) *EcdsaBuiltinRunner {
	return &EcdsaBuiltinRunner{included: included, ratio: ratio, verify: verify, signatures: make(map[uint64]EcdsaSignature)}
}

func (e *EcdsaBuiltinRunner) Name() string                { return EcdsaName }
func (e *EcdsaBuiltinRunner) Base() memory.Relocatable     { return e.base }
func (e *EcdsaBuiltinRunner) Ratio() int                   { return e.ratio }
func (e *EcdsaBuiltinRunner) CellsPerInvocation() int      { return CellsPerEcdsa }
func (e *EcdsaBuiltinRunner) InputCellsPerInvocation() int { return InputCellsPerEcdsa }

func (e *EcdsaBuiltinRunner) InitializeSegments(segments *memory.SegmentManager) {
	e.base = segments.AddSegment()
}

func (e *EcdsaBuiltinRunner) InitialStack() []memory.Value {
	if !e.included {
		return nil
	}
	return []memory.Value{memory.NewAddressValue(e.base)}
}

// AddSignature registers a signature against the instance whose pubkey
// cell is at pubkeyAddr, as a hint does before the cell is read.
func (e *EcdsaBuiltinRunner) AddSignature(pubkeyAddr memory.Relocatable, sig EcdsaSignature) {
	e.signatures[pubkeyAddr.Offset] = sig
}

func (e *EcdsaBuiltinRunner) DeduceMemoryCell(memory.Relocatable, *memory.Memory) (*memory.Value, error) {
	return nil, nil
}

// EcdsaSignatureMissingError is returned when a message cell is read
// without a signature having been registered for its instance.
type EcdsaSignatureMissingError struct {
	Address memory.Relocatable
}

func (e *EcdsaSignatureMissingError) Error() string { return "ecdsa: missing signature for instance" }

// EcdsaInvalidSignatureError is returned when a registered signature
// fails verification against the written pubkey and message.
type EcdsaInvalidSignatureError struct{}

func (e *EcdsaInvalidSignatureError) Error() string { return "ecdsa: invalid signature" }

func (e *EcdsaBuiltinRunner) ecdsaValidationRule(mem *memory.Memory, address memory.Relocatable) ([]memory.Relocatable, error) {
	groupOffset := address.Offset % CellsPerEcdsa
	if groupOffset != 1 {
		return []memory.Relocatable{address}, nil
	}

	pubkeyAddr := memory.NewRelocatable(address.SegmentIndex, address.Offset-1)
	sig, ok := e.signatures[pubkeyAddr.Offset]
	if !ok {
		return nil, &EcdsaSignatureMissingError{Address: pubkeyAddr}
	}

	pubkeyVal, err := mem.GetFelt(pubkeyAddr)
	if err != nil {
		return nil, err
	}
	messageVal, err := mem.GetFelt(address)
	if err != nil {
		return nil, err
	}
	pubkey, _ := pubkeyVal.GetFelt()
	message, _ := messageVal.GetFelt()

	if !e.verify(pubkey, message, sig) {
		return nil, &EcdsaInvalidSignatureError{}
	}
	return []memory.Relocatable{address}, nil
}

func (e *EcdsaBuiltinRunner) AddValidationRule(mem *memory.Memory) error {
	return mem.AddValidationRule(e.base.SegmentIndex, e.ecdsaValidationRule)
}

func (e *EcdsaBuiltinRunner) GetUsedInstances(segments *memory.SegmentManager) int {
	return usedInstancesFromSegment(segments, e.base, CellsPerEcdsa)
}

func (e *EcdsaBuiltinRunner) GetAllocatedMemoryUnits(steps int) (int, error) {
	if e.ratio == 0 {
		return 0, nil
	}
	return ceilDiv(steps, e.ratio), nil
}
