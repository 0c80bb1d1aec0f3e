package memory

import (
	"fmt"

	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/pkg/errors"
)

// Relocatable is an address into the VM's segmented memory: a pair
// (segment_index, offset). Segments with a negative index are temporary
// and must be resolved through a relocation rule before the run ends.
type Relocatable struct {
	SegmentIndex int
	Offset       uint64
}

// NewRelocatable builds an Address from its two components.
func NewRelocatable(segmentIndex int, offset uint64) Relocatable {
	return Relocatable{SegmentIndex: segmentIndex, Offset: offset}
}

// IsTemporary reports whether this address belongs to a temporary segment.
func (r Relocatable) IsTemporary() bool {
	return r.SegmentIndex < 0
}

// Equal reports equality of both components.
func (r Relocatable) Equal(other Relocatable) bool {
	return r.SegmentIndex == other.SegmentIndex && r.Offset == other.Offset
}

// Cmp orders addresses lexicographically on (segment_index, offset).
func (r Relocatable) Cmp(other Relocatable) int {
	if r.SegmentIndex != other.SegmentIndex {
		if r.SegmentIndex < other.SegmentIndex {
			return -1
		}
		return 1
	}
	switch {
	case r.Offset < other.Offset:
		return -1
	case r.Offset > other.Offset:
		return 1
	default:
		return 0
	}
}

func (r Relocatable) String() string {
	return fmt.Sprintf("%d:%d", r.SegmentIndex, r.Offset)
}

// AddUint extends the offset by an unsigned amount. Errors on overflow.
func (r Relocatable) AddUint(u uint64) (Relocatable, error) {
	newOffset := r.Offset + u
	if newOffset < r.Offset {
		return Relocatable{}, &ValueTooLargeError{}
	}
	return NewRelocatable(r.SegmentIndex, newOffset), nil
}

// SubUint shrinks the offset by an unsigned amount. Errors if it would go
// negative.
func (r Relocatable) SubUint(u uint64) (Relocatable, error) {
	if u > r.Offset {
		return Relocatable{}, &NegativeOffsetError{}
	}
	return NewRelocatable(r.SegmentIndex, r.Offset-u), nil
}

// AddInt routes to AddUint/SubUint depending on the sign of i.
func (r Relocatable) AddInt(i int64) (Relocatable, error) {
	if i >= 0 {
		return r.AddUint(uint64(i))
	}
	return r.SubUint(uint64(-i))
}

// AddFelt converts a Felt's offset to its u64 value and extends this
// address by it; fails with ValueTooLargeError if the felt does not fit
// in a u64.
func (r Relocatable) AddFelt(f lambdaworks.Felt) (Relocatable, error) {
	u, err := f.ToU64()
	if err != nil {
		return Relocatable{}, &ValueTooLargeError{}
	}
	return r.AddUint(u)
}

// Sub computes the distance between two addresses in the same segment.
func (r Relocatable) Sub(other Relocatable) (uint64, error) {
	if r.SegmentIndex != other.SegmentIndex {
		return 0, &SegmentMismatchError{LHS: r, RHS: other}
	}
	if r.Offset < other.Offset {
		return 0, &NegativeOffsetError{}
	}
	return r.Offset - other.Offset, nil
}

// RelocateAddress maps this address to a flat index using a relocation
// table computed by ComputeRelocationTable (via SegmentManager.Relocate): table[seg] is
// the base offset assigned to segment seg.
func (r Relocatable) RelocateAddress(table []uint64) (uint64, error) {
	if r.SegmentIndex < 0 {
		return 0, &TemporarySegmentInRelocationError{Segment: r.SegmentIndex}
	}
	if r.SegmentIndex >= len(table) {
		return 0, &RelocationError{Segment: r.SegmentIndex}
	}
	return table[r.SegmentIndex] + r.Offset, nil
}

// valueKind discriminates the Value union.
type valueKind uint8

const (
	kindFelt valueKind = iota
	kindAddr
)

// Value is the tagged union of values a memory cell may hold: either a
// field element or an address into some segment.
type Value struct {
	kind valueKind
	felt lambdaworks.Felt
	addr Relocatable
}

// NewFeltValue wraps a field element.
func NewFeltValue(f lambdaworks.Felt) Value {
	return Value{kind: kindFelt, felt: f}
}

// NewAddressValue wraps an address.
func NewAddressValue(a Relocatable) Value {
	return Value{kind: kindAddr, addr: a}
}

// IsFelt reports whether the value holds a field element.
func (v Value) IsFelt() bool { return v.kind == kindFelt }

// IsAddress reports whether the value holds an address.
func (v Value) IsAddress() bool { return v.kind == kindAddr }

// GetFelt returns the wrapped felt and true, or the zero value and false.
func (v Value) GetFelt() (lambdaworks.Felt, bool) {
	if v.kind != kindFelt {
		return lambdaworks.Felt{}, false
	}
	return v.felt, true
}

// GetAddress returns the wrapped address and true, or the zero value and
// false.
func (v Value) GetAddress() (Relocatable, bool) {
	if v.kind != kindAddr {
		return Relocatable{}, false
	}
	return v.addr, true
}

// TryIntoFelt coerces, failing with TypeMismatchError otherwise.
func (v Value) TryIntoFelt() (lambdaworks.Felt, error) {
	f, ok := v.GetFelt()
	if !ok {
		return lambdaworks.Felt{}, &TypeMismatchError{Expected: "felt", Value: v}
	}
	return f, nil
}

// TryIntoAddress coerces, failing with TypeMismatchError otherwise.
func (v Value) TryIntoAddress() (Relocatable, error) {
	a, ok := v.GetAddress()
	if !ok {
		return Relocatable{}, &TypeMismatchError{Expected: "address", Value: v}
	}
	return a, nil
}

// TryIntoU64 coerces through a felt.
func (v Value) TryIntoU64() (uint64, error) {
	f, err := v.TryIntoFelt()
	if err != nil {
		return 0, err
	}
	u, err := f.ToU64()
	if err != nil {
		return 0, &ValueTooLargeError{}
	}
	return u, nil
}

// IsZero is false for addresses, delegated to the felt otherwise.
func (v Value) IsZero() bool {
	if v.kind == kindAddr {
		return false
	}
	return v.felt.IsZero()
}

// Equal compares like-kinded values; values of different kinds are never
// equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.kind == kindFelt {
		return v.felt.Equal(other.felt)
	}
	return v.addr.Equal(other.addr)
}

// Cmp gives the total order used by some builtins: all addresses compare
// less than all felts; within a kind the native order applies.
func (v Value) Cmp(other Value) int {
	if v.kind != other.kind {
		if v.kind == kindAddr {
			return -1
		}
		return 1
	}
	if v.kind == kindFelt {
		return v.felt.Cmp(other.felt)
	}
	return v.addr.Cmp(other.addr)
}

// Add implements the four-case Value addition table from §3.2.
func (v Value) Add(other Value) (Value, error) {
	switch {
	case v.IsAddress() && other.IsAddress():
		return Value{}, &RelocatableAddError{}
	case v.IsAddress() && other.IsFelt():
		addr, err := v.addr.AddFelt(other.felt)
		if err != nil {
			return Value{}, err
		}
		return NewAddressValue(addr), nil
	case v.IsFelt() && other.IsAddress():
		addr, err := other.addr.AddFelt(v.felt)
		if err != nil {
			return Value{}, err
		}
		return NewAddressValue(addr), nil
	default:
		return NewFeltValue(v.felt.Add(other.felt)), nil
	}
}

// Sub implements the four-case Value subtraction table from §3.2.
func (v Value) Sub(other Value) (Value, error) {
	switch {
	case v.IsAddress() && other.IsAddress():
		offset, err := v.addr.Sub(other.addr)
		if err != nil {
			return Value{}, err
		}
		return NewFeltValue(lambdaworks.FeltFromInt(offset)), nil
	case v.IsAddress() && other.IsFelt():
		u, err := other.felt.ToU64()
		if err != nil {
			return Value{}, &ValueTooLargeError{}
		}
		addr, err := v.addr.SubUint(u)
		if err != nil {
			return Value{}, err
		}
		return NewAddressValue(addr), nil
	case v.IsFelt() && other.IsAddress():
		return Value{}, &SubAddrFromFeltError{}
	default:
		return NewFeltValue(v.felt.Sub(other.felt)), nil
	}
}

// Mul multiplies two felt values; multiplying an address is a type error.
func (v Value) Mul(other Value) (Value, error) {
	a, err := v.TryIntoFelt()
	if err != nil {
		return Value{}, errors.Wrap(err, "lhs of multiplication")
	}
	b, err := other.TryIntoFelt()
	if err != nil {
		return Value{}, errors.Wrap(err, "rhs of multiplication")
	}
	return NewFeltValue(a.Mul(b)), nil
}

// RelocateValue turns a value into the flat felt it corresponds to after
// relocation: felts pass through unchanged, addresses are relocated via
// the table and reinterpreted as a felt offset.
func (v Value) RelocateValue(table []uint64) (lambdaworks.Felt, error) {
	if v.IsFelt() {
		return v.felt, nil
	}
	flat, err := v.addr.RelocateAddress(table)
	if err != nil {
		return lambdaworks.Felt{}, err
	}
	return lambdaworks.FeltFromInt(flat), nil
}

func (v Value) String() string {
	if v.IsAddress() {
		return v.addr.String()
	}
	return v.felt.String()
}
