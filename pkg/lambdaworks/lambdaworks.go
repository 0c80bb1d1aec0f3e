// Package lambdaworks provides the Felt type: a 252-bit prime field
// element in the Stark field, used throughout the VM core as the only
// scalar type memory cells can hold.
//
// The core treats this field as an external collaborator (it only
// assumes a prime-field trait); this package binds that trait to
// github.com/consensys/gnark-crypto's Stark-curve base field, which is
// the same prime the Cairo compiler's program artifacts are defined
// over.
package lambdaworks

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Felt is a 252-bit prime field element (Montgomery form internally).
type Felt struct {
	inner fp.Element
}

// FeltFromUint64 builds a Felt representing value.
func FeltFromUint64(value uint64) Felt {
	var f Felt
	f.inner.SetUint64(value)
	return f
}

// FeltFromBigInt reduces a big.Int modulo the field's prime.
func FeltFromBigInt(value *big.Int) Felt {
	var f Felt
	f.inner.SetBigInt(value)
	return f
}

// FeltFromInt builds a Felt from any sized integer type, dispatching to
// the signed or unsigned 64-bit constructor; callers in the memory and
// relocation layers carry segment offsets and flat addresses in whatever
// concrete integer type their own arithmetic produces.
func FeltFromInt[T constraints.Integer](value T) Felt {
	if value < 0 {
		return FeltFromSigned(int64(value))
	}
	return FeltFromUint64(uint64(value))
}

// FeltFromSigned reduces a signed 64-bit integer modulo the field's prime.
func FeltFromSigned(value int64) Felt {
	if value >= 0 {
		return FeltFromUint64(uint64(value))
	}
	var f Felt
	f.inner.SetUint64(uint64(-value))
	f.inner.Neg(&f.inner)
	return f
}

// FeltFromDecString parses a base-10 string.
func FeltFromDecString(value string) (Felt, error) {
	var f Felt
	if _, ok := f.inner.SetString(value); !ok {
		return Felt{}, errors.Errorf("invalid decimal felt literal: %q", value)
	}
	return f, nil
}

// FeltFromHex parses a "0x"-prefixed hex string, as found in compiled
// program artifacts' data and identifier values.
func FeltFromHex(value string) (Felt, error) {
	trimmed := strings.TrimPrefix(value, "0x")
	trimmed = strings.TrimPrefix(trimmed, "0X")
	if trimmed == "" {
		trimmed = "0"
	}
	if len(trimmed)%2 != 0 {
		trimmed = "0" + trimmed
	}
	bytes, err := hex.DecodeString(trimmed)
	if err != nil {
		return Felt{}, errors.Wrapf(err, "invalid hex felt literal %q", value)
	}
	return FeltFromBeBytesSlice(bytes), nil
}

// FeltFromBeBytesSlice reduces an arbitrary-length big-endian byte slice
// modulo the field's prime.
func FeltFromBeBytesSlice(b []byte) Felt {
	var f Felt
	f.inner.SetBytes(b)
	return f
}

// FeltFromBeBytes reduces a fixed 32-byte big-endian encoding.
func FeltFromBeBytes(b *[32]byte) Felt {
	var f Felt
	f.inner.SetBytes(b[:])
	return f
}

// FeltZero is the additive identity.
func FeltZero() Felt { return Felt{} }

// FeltOne is the multiplicative identity.
func FeltOne() Felt {
	var f Felt
	f.inner.SetOne()
	return f
}

// Add returns a+b.
func (a Felt) Add(b Felt) Felt {
	var r Felt
	r.inner.Add(&a.inner, &b.inner)
	return r
}

// Sub returns a-b.
func (a Felt) Sub(b Felt) Felt {
	var r Felt
	r.inner.Sub(&a.inner, &b.inner)
	return r
}

// Mul returns a*b.
func (a Felt) Mul(b Felt) Felt {
	var r Felt
	r.inner.Mul(&a.inner, &b.inner)
	return r
}

// Div returns a/b. It does not panic on a zero b: gnark-crypto's
// fp.Element.Div inverts zero to zero, so a/0 yields zero; callers that
// must distinguish should check IsZero first.
func (a Felt) Div(b Felt) Felt {
	var r Felt
	r.inner.Div(&a.inner, &b.inner)
	return r
}

// Neg returns -a.
func (a Felt) Neg() Felt {
	var r Felt
	r.inner.Neg(&a.inner)
	return r
}

// IsZero reports whether a is the additive identity.
func (a Felt) IsZero() bool {
	return a.inner.IsZero()
}

// Equal reports bitwise (canonical) equality.
func (a Felt) Equal(b Felt) bool {
	return a.inner.Equal(&b.inner)
}

// Cmp gives a total order over field elements, comparing canonical
// (non-Montgomery) representations.
func (a Felt) Cmp(b Felt) int {
	return a.inner.Cmp(&b.inner)
}

// ToU64 extracts the value as a uint64, failing if it doesn't fit.
func (a Felt) ToU64() (uint64, error) {
	if !a.inner.IsUint64() {
		return 0, errors.Errorf("felt %s does not fit in a uint64", a.inner.Text(10))
	}
	return a.inner.Uint64(), nil
}

// Bits returns the number of bits of the canonical representation.
func (a Felt) Bits() uint {
	big := a.ToBigInt()
	return uint(big.BitLen())
}

// ToBigInt returns the canonical (reduced) value as a big.Int.
func (a Felt) ToBigInt() *big.Int {
	var out big.Int
	a.inner.BigInt(&out)
	return &out
}

// ToBeBytes encodes the canonical value as 32 big-endian bytes.
func (a Felt) ToBeBytes() *[32]byte {
	bytes := a.inner.Bytes()
	return &bytes
}

// ToLeBytes encodes the canonical value as 32 little-endian bytes.
func (a Felt) ToLeBytes() *[32]byte {
	be := a.inner.Bytes()
	var le [32]byte
	for i, b := range be {
		le[31-i] = b
	}
	return &le
}

// ToHexString renders the canonical value with a 0x prefix.
func (a Felt) ToHexString() string {
	return "0x" + a.inner.Text(16)
}

// String implements fmt.Stringer for use in error messages and tests.
func (a Felt) String() string {
	return a.inner.Text(10)
}
