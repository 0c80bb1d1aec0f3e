package lambdaworks_test

import (
	"reflect"
	"testing"

	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
)

func TestFromHex(t *testing.T) {
	expected := lambdaworks.FeltFromUint64(26)

	result, err := lambdaworks.FeltFromHex("0x1a")
	if err != nil {
		t.Fatalf("FeltFromHex error: %s", err)
	}
	if !result.Equal(expected) {
		t.Errorf("TestFromHex failed. Expected: %v, Got: %v", expected, result)
	}
}

func TestFromDecString(t *testing.T) {
	expected := lambdaworks.FeltFromUint64(435)

	result, err := lambdaworks.FeltFromDecString("435")
	if err != nil {
		t.Fatalf("FeltFromDecString error: %s", err)
	}
	if !result.Equal(expected) {
		t.Errorf("TestFromDecString failed. Expected: %v, Got: %v", expected, result)
	}
}

func TestFromNegDecString(t *testing.T) {
	expected, err := lambdaworks.FeltFromHex("0x800000000000011000000000000000000000000000000000000000000000000")
	if err != nil {
		t.Fatalf("FeltFromHex error: %s", err)
	}

	result, err := lambdaworks.FeltFromDecString("-1")
	if err != nil {
		t.Fatalf("FeltFromDecString error: %s", err)
	}
	if !result.Equal(expected) {
		t.Errorf("TestFromNegDecString failed. Expected: %v, Got: %v", expected, result)
	}
}

func TestToLeBytes(t *testing.T) {
	expected := [32]uint8{
		1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
	actual := *lambdaworks.FeltOne().ToLeBytes()

	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("TestToLeBytes failed. Expected: %v, Got: %v", expected, actual)
	}
}

func TestToBeBytes(t *testing.T) {
	expected := [32]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1,
	}
	actual := *lambdaworks.FeltOne().ToBeBytes()

	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("TestToBeBytes failed. Expected: %v, Got: %v", expected, actual)
	}
}

func TestFromBeBytes(t *testing.T) {
	bytes := [32]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1,
	}
	feltFromBytes := lambdaworks.FeltFromBeBytes(&bytes)

	if !feltFromBytes.Equal(lambdaworks.FeltOne()) {
		t.Errorf("TestFromBeBytes failed. Expected 1, Got: %v", feltFromBytes)
	}
}

func TestFeltSub(t *testing.T) {
	fOne := lambdaworks.FeltOne()
	expected := lambdaworks.FeltZero()

	result := fOne.Sub(fOne)
	if !result.Equal(expected) {
		t.Errorf("TestFeltSub failed. Expected: %v, Got: %v", expected, result)
	}
}

func TestFeltAdd(t *testing.T) {
	fZero := lambdaworks.FeltZero()
	fOne := lambdaworks.FeltOne()
	expected := lambdaworks.FeltOne()

	result := fZero.Add(fOne)
	if !result.Equal(expected) {
		t.Errorf("TestFeltAdd failed. Expected: %v, Got: %v", expected, result)
	}
}

func TestFeltMul9(t *testing.T) {
	fThree := lambdaworks.FeltFromUint64(3)
	expected := lambdaworks.FeltFromUint64(9)

	result := fThree.Mul(fThree)
	if !result.Equal(expected) {
		t.Errorf("TestFeltMul9 failed. Expected: %v, Got: %v", expected, result)
	}
}

func TestFeltDiv4(t *testing.T) {
	fFour := lambdaworks.FeltFromUint64(4)
	fTwo := lambdaworks.FeltFromUint64(2)
	expected := lambdaworks.FeltFromUint64(2)

	result := fFour.Div(fTwo)
	if !result.Equal(expected) {
		t.Errorf("TestFeltDiv4 failed. Expected: %v, Got: %v", expected, result)
	}
}

func TestNegIsZeroMinusSelf(t *testing.T) {
	f := lambdaworks.FeltFromUint64(17)
	zero := lambdaworks.FeltZero()

	if !f.Add(f.Neg()).Equal(zero) {
		t.Errorf("f + (-f) should be zero, got %v", f.Add(f.Neg()))
	}
}

func TestBitsOfSmallValue(t *testing.T) {
	f := lambdaworks.FeltFromUint64(255)
	if f.Bits() != 8 {
		t.Errorf("expected 8 bits, got %d", f.Bits())
	}
}
