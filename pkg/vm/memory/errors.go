package memory

import "fmt"

// NegativeOffsetError is returned whenever an address or cell offset
// computation would go below zero.
type NegativeOffsetError struct{}

func (e *NegativeOffsetError) Error() string {
	return "address offset cannot be negative"
}

// SegmentMismatchError is returned when subtracting two addresses that
// live in different segments.
type SegmentMismatchError struct {
	LHS, RHS Relocatable
}

func (e *SegmentMismatchError) Error() string {
	return fmt.Sprintf("cannot subtract addresses from different segments: %s, %s", e.LHS, e.RHS)
}

// ValueTooLargeError is returned when a felt does not fit in the target
// integer width (e.g. a u64 offset).
type ValueTooLargeError struct{}

func (e *ValueTooLargeError) Error() string {
	return "value does not fit in the required width"
}

// TypeMismatchError is returned when a Value coercion is attempted
// against the wrong tag.
type TypeMismatchError struct {
	Expected string
	Value    Value
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Value)
}

// RelocatableAddError is returned when two addresses are added together,
// which is never a meaningful operation.
type RelocatableAddError struct{}

func (e *RelocatableAddError) Error() string {
	return "cannot add two relocatable addresses"
}

// SubAddrFromFeltError is returned when subtracting an address from a
// felt, which has no meaning (the reverse, felt-from-address, is fine).
type SubAddrFromFeltError struct{}

func (e *SubAddrFromFeltError) Error() string {
	return "cannot subtract a relocatable address from a felt"
}

// TemporarySegmentInRelocationError is returned when relocation is
// attempted on an address that still points into a temporary segment.
type TemporarySegmentInRelocationError struct {
	Segment int
}

func (e *TemporarySegmentInRelocationError) Error() string {
	return fmt.Sprintf("address in temporary segment %d cannot be relocated directly", e.Segment)
}

// RelocationError is a catch-all for relocation-table lookups that run
// outside the table built by SegmentManager.
type RelocationError struct {
	Segment int
}

func (e *RelocationError) Error() string {
	return fmt.Sprintf("no relocation entry for segment %d", e.Segment)
}

// InconsistentMemoryError is returned by Memory.Insert when a cell that
// already holds a value is overwritten with a different one: memory is
// write-once.
type InconsistentMemoryError struct {
	Address       Relocatable
	Existing, New Value
}

func (e *InconsistentMemoryError) Error() string {
	return fmt.Sprintf("inconsistent write at %s: existing %s, new %s", e.Address, e.Existing, e.New)
}

// AddressNotInTemporarySegmentError is returned when a relocation rule is
// registered against a non-temporary (real) segment.
type AddressNotInTemporarySegmentError struct {
	Segment int
}

func (e *AddressNotInTemporarySegmentError) Error() string {
	return fmt.Sprintf("segment %d is not a temporary segment", e.Segment)
}

// NonZeroOffsetError is returned when a relocation rule is registered
// against a temporary address whose offset isn't zero: rules relocate
// whole segments, not individual cells.
type NonZeroOffsetError struct {
	Address Relocatable
}

func (e *NonZeroOffsetError) Error() string {
	return fmt.Sprintf("relocation rule target %s must have offset zero", e.Address)
}

// DuplicatedRelocationError is returned when a second relocation rule is
// registered for a temporary segment that already has one.
type DuplicatedRelocationError struct {
	Segment int
}

func (e *DuplicatedRelocationError) Error() string {
	return fmt.Sprintf("segment %d already has a relocation rule", e.Segment)
}

// MissingRelocationRuleError is returned when final relocation encounters
// a temporary address with no rule registered for its segment.
type MissingRelocationRuleError struct {
	Segment int
}

func (e *MissingRelocationRuleError) Error() string {
	return fmt.Sprintf("no relocation rule registered for temporary segment %d", e.Segment)
}

// RelocationCycleError is returned when following relocation rules for a
// chain of temporary segments never reaches a real segment.
type RelocationCycleError struct {
	Segments []int
}

func (e *RelocationCycleError) Error() string {
	return fmt.Sprintf("cycle detected while resolving relocation rules: %v", e.Segments)
}

// ExpectedFeltError is returned by Memory.GetFelt when the cell at an
// address holds an address instead.
type ExpectedFeltError struct {
	Address Relocatable
}

func (e *ExpectedFeltError) Error() string {
	return fmt.Sprintf("expected a felt at %s", e.Address)
}

// ExpectedAddressError is returned by Memory.GetAddress when the cell at
// an address holds a felt instead.
type ExpectedAddressError struct {
	Address Relocatable
}

func (e *ExpectedAddressError) Error() string {
	return fmt.Sprintf("expected an address at %s", e.Address)
}

// NoValueError is returned when reading an address that has never been
// written.
type NoValueError struct {
	Address Relocatable
}

func (e *NoValueError) Error() string {
	return fmt.Sprintf("no value at %s", e.Address)
}
