// Package parser loads a compiled Cairo v0 program artifact (JSON) into
// an immutable in-memory Program, and implements the small
// recursive-descent grammar used to turn a reference-manager entry's
// source expression into a HintReference.
package parser

import (
	"fmt"

	"github.com/cairovm-core/cairovm/pkg/hints"
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

// BuiltinName enumerates the fixed set of builtins a program may
// declare.
type BuiltinName string

const (
	BuiltinOutput       BuiltinName = "output"
	BuiltinPedersen     BuiltinName = "pedersen"
	BuiltinRangeCheck   BuiltinName = "range_check"
	BuiltinEcdsa        BuiltinName = "ecdsa"
	BuiltinKeccak       BuiltinName = "keccak"
	BuiltinBitwise      BuiltinName = "bitwise"
	BuiltinEcOp         BuiltinName = "ec_op"
	BuiltinPoseidon     BuiltinName = "poseidon"
	BuiltinSegmentArena BuiltinName = "segment_arena"
)

var validBuiltins = map[BuiltinName]bool{
	BuiltinOutput: true, BuiltinPedersen: true, BuiltinRangeCheck: true,
	BuiltinEcdsa: true, BuiltinKeccak: true, BuiltinBitwise: true,
	BuiltinEcOp: true, BuiltinPoseidon: true, BuiltinSegmentArena: true,
}

// Attribute is a single program-level attribute, of which only
// "error_message" entries are retained by the parser (as error_attributes).
type Attribute struct {
	Name          string
	Value         string
	Start, End    int
	Flow          []int
}

// InstructionLocation records debug-info source positions for a PC; kept
// opaque since the core never inspects it beyond carrying it through.
type InstructionLocation struct {
	Pc  int
	Raw map[string]any
}

// Identifier mirrors the compiled artifact's per-name identifier record.
type Identifier struct {
	Pc          *int
	Type        string
	Destination string
	Decorators  []string
	Value       *lambdaworks.Felt
	Size        *int
	FullName    string
	References  []int
	Members     map[string]Identifier
	CairoType   string
}

// Program is the immutable, fully-loaded Cairo program: everything a
// runner needs to construct the initial memory image and index hints.
type Program struct {
	Data                  []memory.Value
	Hints                 *hints.HintCollection
	Main                  *int
	Start                 *int
	End                   *int
	ErrorAttributes       []Attribute
	InstructionLocations  map[int]InstructionLocation
	Identifiers           map[string]Identifier
	References            []*hints.HintReference
	Constants             map[string]lambdaworks.Felt
	Builtins              []BuiltinName
}

// PrimeDiffersError is returned when the artifact's prime field does not
// match the prime the core is built for.
type PrimeDiffersError struct {
	Got string
}

func (e *PrimeDiffersError) Error() string {
	return fmt.Sprintf("program prime %q does not match the expected Stark prime", e.Got)
}

// EntrypointNotFoundError is returned when an explicitly requested
// entrypoint name has no matching "__main__.<name>" identifier.
type EntrypointNotFoundError struct {
	Name string
}

func (e *EntrypointNotFoundError) Error() string {
	return fmt.Sprintf("entrypoint %q not found", e.Name)
}

// ConstWithoutValueError is returned when a "const"-typed identifier has
// no value.
type ConstWithoutValueError struct {
	Name string
}

func (e *ConstWithoutValueError) Error() string {
	return fmt.Sprintf("const identifier %q has no value", e.Name)
}

// UnsupportedBuiltinError is returned when builtins names an unknown
// builtin.
type UnsupportedBuiltinError struct {
	Name string
}

func (e *UnsupportedBuiltinError) Error() string {
	return fmt.Sprintf("unsupported builtin %q", e.Name)
}

// ExpectedStarkPrime is the literal prime every program artifact must
// declare.
const ExpectedStarkPrime = "0x800000000000011000000000000000000000000000000000000000000000001"
