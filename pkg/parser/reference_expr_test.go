package parser_test

import (
	"testing"

	"github.com/cairovm-core/cairovm/pkg/hints"
	"github.com/cairovm-core/cairovm/pkg/parser"
)

func TestParseReferenceExpressionSimpleDeref(t *testing.T) {
	ref, err := parser.ParseReferenceExpression("[cast(fp + (-3), felt*)]")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !ref.Dereference {
		t.Errorf("expected outer dereference")
	}
	reg, off, ok := ref.Offset1.AsReference()
	if !ok {
		t.Fatalf("expected reference offset1")
	}
	if reg != hints.RegisterFP || off != -3 {
		t.Errorf("expected fp-3, got register=%v offset=%d", reg, off)
	}
	if ref.Offset2 != nil {
		t.Errorf("expected no offset2")
	}
	if ref.CairoType != "felt*" {
		t.Errorf("expected cairo type felt*, got %q", ref.CairoType)
	}
}

func TestParseReferenceExpressionInnerDerefPlusImmediate(t *testing.T) {
	ref, err := parser.ParseReferenceExpression("cast([fp + (-3)] + 2, felt)")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if ref.Dereference {
		t.Errorf("expected no outer dereference")
	}
	reg, off, ok := ref.Offset1.AsReference()
	if !ok {
		t.Fatalf("expected offset1 to be a reference")
	}
	if reg != hints.RegisterFP || off != -3 {
		t.Errorf("expected fp-3, got register=%v offset=%d", reg, off)
	}
	if ref.Offset2 == nil {
		t.Fatalf("expected offset2")
	}
	n, ok := ref.Offset2.AsValue()
	if !ok || n != 2 {
		t.Errorf("expected offset2 value 2, got %v ok=%v", n, ok)
	}
}

func TestParseReferenceExpressionBareAp(t *testing.T) {
	ref, err := parser.ParseReferenceExpression("cast(ap, felt)")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	reg, off, ok := ref.Offset1.AsReference()
	if !ok || reg != hints.RegisterAP || off != 0 {
		t.Errorf("expected bare ap reference, got register=%v offset=%d ok=%v", reg, off, ok)
	}
}

func TestParseReferenceExpressionMalformed(t *testing.T) {
	if _, err := parser.ParseReferenceExpression("not a valid expr"); err == nil {
		t.Errorf("expected malformed reference expression error")
	}
}
