// Package hints implements the symbolic HintReference description used to
// resolve VM-side data from within a hint, and the HintCollection index
// that maps program counters to the hint parameters attached there.
package hints

import (
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

// Register names one of the two registers a reference may be relative
// to.
type Register int

const (
	RegisterAP Register = iota
	RegisterFP
)

// offsetKind discriminates OffsetValue.
type offsetKind uint8

const (
	offsetImmediate offsetKind = iota
	offsetValue
	offsetReference
)

// OffsetValue is one of offset1/offset2 in a HintReference: either a
// literal felt, a literal signed integer, or a register-relative cell
// reference that may itself be dereferenced.
type OffsetValue struct {
	kind      offsetKind
	immediate lambdaworks.Felt
	value     int64
	register  Register
	offset    int64
	deref     bool
}

// ImmediateOffset builds an Immediate(felt) offset.
func ImmediateOffset(f lambdaworks.Felt) OffsetValue {
	return OffsetValue{kind: offsetImmediate, immediate: f}
}

// ValueOffset builds a Value(int) offset.
func ValueOffset(v int64) OffsetValue {
	return OffsetValue{kind: offsetValue, value: v}
}

// ReferenceOffset builds a Reference(register, offset, deref) offset.
func ReferenceOffset(reg Register, offset int64, deref bool) OffsetValue {
	return OffsetValue{kind: offsetReference, register: reg, offset: offset, deref: deref}
}

// AsImmediate reports whether ov is an Immediate offset and its payload.
func (ov OffsetValue) AsImmediate() (lambdaworks.Felt, bool) {
	if ov.kind != offsetImmediate {
		return lambdaworks.Felt{}, false
	}
	return ov.immediate, true
}

// AsValue reports whether ov is a Value(int) offset and its payload.
func (ov OffsetValue) AsValue() (int64, bool) {
	if ov.kind != offsetValue {
		return 0, false
	}
	return ov.value, true
}

// AsReference reports whether ov is a Reference offset and its
// register/offset (ignoring any deref flag, which the caller already
// knows it's stripping by wrapping in one more dereference).
func (ov OffsetValue) AsReference() (Register, int64, bool) {
	if ov.kind != offsetReference {
		return 0, 0, false
	}
	return ov.register, ov.offset, true
}

// ApTracking records the AP-register bookkeeping group/offset pair a
// reference was captured under.
type ApTracking struct {
	Group  int
	Offset int
}

// HintReference describes how to compute a value from the live VM state
// at the point a hint executes.
type HintReference struct {
	Offset1      OffsetValue
	Offset2      *OffsetValue
	Dereference  bool
	ApTracking   ApTracking
	CairoType    string
}

// NonResolvableError is returned when a reference's ap_tracking group
// does not match the VM's current group: the captured offset cannot be
// translated into a live one, so the reference cannot be resolved at
// this point in execution.
type NonResolvableError struct{}

func (e *NonResolvableError) Error() string {
	return "hint reference is not resolvable at the current ap-tracking group"
}

// MalformedReferenceExpressionError is raised by the reference-expression
// parser (see pkg/parser) and re-exported here since HintReference
// resolution shares the same error taxonomy entry.
type MalformedReferenceExpressionError struct {
	Expression string
	Position   int
	Reason     string
}

func (e *MalformedReferenceExpressionError) Error() string {
	return "malformed reference expression " + e.Expression
}

// Context is the minimal live-register view resolution needs: the VM's
// current AP, FP, and the ap-tracking group/offset the runner has
// accumulated for the currently executing instruction.
type Context struct {
	Ap             memory.Relocatable
	Fp             memory.Relocatable
	CurrentTracking ApTracking
}

// liveAp computes the reference's view of AP translated to the current
// point in execution, per §4.E step 1.
func (c Context) liveAp(ref ApTracking) (memory.Relocatable, error) {
	if c.CurrentTracking.Group != ref.Group {
		return memory.Relocatable{}, &NonResolvableError{}
	}
	delta := c.CurrentTracking.Offset - ref.Offset
	return c.Ap.AddInt(int64(-delta))
}

// resolveOffset evaluates a single OffsetValue against mem and ctx,
// returning an address-or-felt Value per §4.E step 2.
func resolveOffset(mem *memory.Memory, ctx Context, ref ApTracking, ov OffsetValue) (memory.Value, error) {
	switch ov.kind {
	case offsetImmediate:
		return memory.NewFeltValue(ov.immediate), nil
	case offsetValue:
		return memory.NewFeltValue(lambdaworks.FeltFromSigned(ov.value)), nil
	case offsetReference:
		var base memory.Relocatable
		var err error
		switch ov.register {
		case RegisterAP:
			base, err = ctx.liveAp(ref)
		case RegisterFP:
			base = ctx.Fp
		}
		if err != nil {
			return memory.Value{}, err
		}
		addr, err := base.AddInt(ov.offset)
		if err != nil {
			return memory.Value{}, err
		}
		if !ov.deref {
			return memory.NewAddressValue(addr), nil
		}
		v, ok := mem.Get(addr)
		if !ok {
			return memory.Value{}, &memory.NoValueError{Address: addr}
		}
		return v, nil
	default:
		return memory.Value{}, &NonResolvableError{}
	}
}

// Resolve evaluates a HintReference against the live VM state, per the
// three-step algorithm in §4.E: evaluate offset1 (and offset2, if
// present, adding it to offset1), then dereference once if the
// reference's Dereference flag is set.
func (r *HintReference) Resolve(mem *memory.Memory, ctx Context) (memory.Value, error) {
	v1, err := resolveOffset(mem, ctx, r.ApTracking, r.Offset1)
	if err != nil {
		return memory.Value{}, err
	}
	composed := v1
	if r.Offset2 != nil {
		v2, err := resolveOffset(mem, ctx, r.ApTracking, *r.Offset2)
		if err != nil {
			return memory.Value{}, err
		}
		composed, err = composed.Add(v2)
		if err != nil {
			return memory.Value{}, err
		}
	}
	if !r.Dereference {
		return composed, nil
	}
	addr, err := composed.TryIntoAddress()
	if err != nil {
		return memory.Value{}, err
	}
	v, ok := mem.Get(addr)
	if !ok {
		return memory.Value{}, &memory.NoValueError{Address: addr}
	}
	return v, nil
}

// GetAddress returns the composed address (offset1 [+ offset2]) without
// the final dereference, for callers that need the cell's location
// rather than its contents (e.g. writing to an `ids` output variable).
func (r *HintReference) GetAddress(mem *memory.Memory, ctx Context) (memory.Relocatable, error) {
	v1, err := resolveOffset(mem, ctx, r.ApTracking, r.Offset1)
	if err != nil {
		return memory.Relocatable{}, err
	}
	composed := v1
	if r.Offset2 != nil {
		v2, err := resolveOffset(mem, ctx, r.ApTracking, *r.Offset2)
		if err != nil {
			return memory.Relocatable{}, err
		}
		composed, err = composed.Add(v2)
		if err != nil {
			return memory.Relocatable{}, err
		}
	}
	return composed.TryIntoAddress()
}
